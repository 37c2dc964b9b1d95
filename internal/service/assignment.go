package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/eta"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// maxReserveAttempts - первая попытка плюс один повтор после конфликта резервирования
const maxReserveAttempts = 2

// EngineDeps - зависимости движка назначений
type EngineDeps struct {
	Reports     ReportRepository
	Assignments AssignmentRepository
	Registry    ResponderService
	Tracker     *LifecycleTracker
	Calculator  *eta.Calculator
	Publisher   webhook.WebhookPublisher
	Metrics     *metrics.Metrics
	Logger      *logrus.Logger
}

// AssignmentEngine подбирает и резервирует спасателя для отчета.
// Единственный, кто пишет назначения и меняет доступность спасателей.
type AssignmentEngine struct {
	reports     ReportRepository
	assignments AssignmentRepository
	registry    ResponderService
	tracker     *LifecycleTracker
	calc        *eta.Calculator
	publisher   webhook.WebhookPublisher
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	now         func() time.Time
}

type candidate struct {
	responder *models.Responder
	eta       int
}

// NewAssignmentEngine создает движок и подписывает его на терминальные статусы отчетов
// и на смену координат спасателей.
func NewAssignmentEngine(deps EngineDeps) *AssignmentEngine {
	e := &AssignmentEngine{
		reports:     deps.Reports,
		assignments: deps.Assignments,
		registry:    deps.Registry,
		tracker:     deps.Tracker,
		calc:        deps.Calculator,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         time.Now,
	}
	e.tracker.onTerminal = append(e.tracker.onTerminal, e.finalize)
	e.registry.OnLocationChange(e.refreshETA)
	return e
}

// Assign атомарно выбирает доступного спасателя и создает назначение.
// Повторный вызов для отчета с активным назначением возвращает его же с Created=false.
func (e *AssignmentEngine) Assign(ctx context.Context, reportID int64) (*AssignResult, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service":   "assignment",
		"method":    "Assign",
		"report_id": reportID,
	})

	if _, err := e.reports.GetByID(ctx, reportID); err != nil {
		return nil, e.fail(log, fmt.Errorf("service: could not load report: %w", err))
	}
	if existing, err := e.existing(ctx, reportID); err != nil || existing != nil {
		if err != nil {
			return nil, e.fail(log, err)
		}
		e.metrics.AssignmentOutcome(metrics.OutcomeExisting)
		return existing, nil
	}

	unlock := e.tracker.lockReport(reportID)
	defer unlock()

	// Повторная проверка под блокировкой: параллельный вызов мог успеть создать назначение
	existing, err := e.existing(ctx, reportID)
	if err != nil {
		return nil, e.fail(log, err)
	}
	if existing != nil {
		e.metrics.AssignmentOutcome(metrics.OutcomeExisting)
		return existing, nil
	}

	report, err := e.reports.GetByIDFresh(ctx, reportID)
	if err != nil {
		return nil, e.fail(log, fmt.Errorf("service: could not load report: %w", err))
	}
	if report.Status != models.StatusReceived {
		return nil, e.fail(log, fmt.Errorf("service: report is %s: %w", report.Status, ErrInvalidTransition))
	}

	excluded := make(map[int64]bool)
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		chosen, err := e.selectResponder(ctx, report, excluded)
		if err != nil {
			return nil, e.fail(log, err)
		}

		if err := e.registry.Reserve(ctx, chosen.responder.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				e.metrics.ReservationConflict()
				log.WithField("responder_id", chosen.responder.ID).Warn("Responder reserved concurrently, retrying selection")
				excluded[chosen.responder.ID] = true
				continue
			}
			return nil, e.fail(log, fmt.Errorf("service: could not reserve responder: %w", err))
		}

		result, err := e.commit(ctx, report, chosen)
		if errors.Is(err, ErrAlreadyAssigned) {
			// Назначение создал другой экземпляр сервиса в обход блокировки процесса
			existing, lookupErr := e.existing(ctx, reportID)
			if lookupErr != nil {
				return nil, e.fail(log, lookupErr)
			}
			if existing != nil {
				e.metrics.AssignmentOutcome(metrics.OutcomeExisting)
				return existing, nil
			}
		}
		if err != nil {
			return nil, e.fail(log, err)
		}
		e.metrics.AssignmentOutcome(metrics.OutcomeCreated)
		e.metrics.ObserveETA(result.Assignment.ETAMinutes)
		log.WithFields(logrus.Fields{
			"assignment_id": result.Assignment.ID,
			"responder_id":  chosen.responder.ID,
			"eta_minutes":   chosen.eta,
		}).Info("Responder assigned")
		return result, nil
	}

	return nil, e.fail(log, fmt.Errorf("service: reservation conflicts exhausted retries: %w", ErrNoResponderAvailable))
}

// CreateAssignment - то же, что Assign; отдельная точка входа для действия «принять вызов»
func (e *AssignmentEngine) CreateAssignment(ctx context.Context, reportID int64) (*AssignResult, error) {
	return e.Assign(ctx, reportID)
}

// Release снимает назначение: отчет переходит в Cancelled, спасатель освобождается
func (e *AssignmentEngine) Release(ctx context.Context, assignmentID int64, reason string) (*models.Assignment, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service":       "assignment",
		"method":        "Release",
		"assignment_id": assignmentID,
	})
	log.Info("Attempting to release assignment")

	assignment, err := e.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load assignment: %w", err)
	}

	unlock := e.tracker.lockReport(assignment.ReportID)
	defer unlock()

	assignment, err = e.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load assignment: %w", err)
	}
	if !assignment.Active() {
		return nil, fmt.Errorf("service: assignment %d already terminated: %w", assignmentID, ErrInvalidTransition)
	}

	if reason == "" {
		reason = "released"
	}
	if _, err := e.tracker.transition(ctx, assignment.ReportID, models.StatusCancelled, reason); err != nil {
		log.WithError(err).Warn("Failed to cancel report for released assignment")
		return nil, err
	}

	released, err := e.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not reload assignment: %w", err)
	}
	log.Info("Assignment released")
	return released, nil
}

// existing возвращает активное назначение отчета или nil
func (e *AssignmentEngine) existing(ctx context.Context, reportID int64) (*AssignResult, error) {
	active, err := e.assignments.GetActiveByReport(ctx, reportID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: could not look up active assignment: %w", err)
	}
	responder, err := e.registry.GetResponder(ctx, active.ResponderID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load assigned responder: %w", err)
	}
	return &AssignResult{Assignment: active, Responder: responder}, nil
}

// selectResponder выбирает кандидата с минимальным ETA, при равенстве - с меньшим id.
// Спасатели без координат исключаются; если подходящих по роли нет, берутся все доступные.
func (e *AssignmentEngine) selectResponder(ctx context.Context, report *models.EmergencyReport, excluded map[int64]bool) (candidate, error) {
	available, err := e.registry.ListAvailable(ctx, nil)
	if err != nil {
		return candidate{}, fmt.Errorf("service: could not list available responders: %w", err)
	}

	located := make([]candidate, 0, len(available))
	for _, r := range available {
		if excluded[r.ID] {
			continue
		}
		minutes, err := e.calc.Estimate(r.Location, report.Location)
		if err != nil {
			// eta.ErrLocationUnavailable: спасатель не участвует в подборе
			continue
		}
		located = append(located, candidate{responder: r, eta: minutes})
	}

	pool := preferredCandidates(located, report.Type.PreferredRoles())
	if len(pool) == 0 {
		pool = located
	}
	if len(pool) == 0 {
		return candidate{}, fmt.Errorf("service: report %d: %w", report.ID, ErrNoResponderAvailable)
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].eta == pool[j].eta {
			return pool[i].responder.ID < pool[j].responder.ID
		}
		return pool[i].eta < pool[j].eta
	})
	return pool[0], nil
}

func preferredCandidates(all []candidate, roles []models.Role) []candidate {
	out := make([]candidate, 0, len(all))
	for _, c := range all {
		for _, role := range roles {
			if c.responder.Role == role {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// commit создает назначение для уже зарезервированного спасателя и переводит отчет в Assigned.
// При ошибке резерв и назначение откатываются.
func (e *AssignmentEngine) commit(ctx context.Context, report *models.EmergencyReport, chosen candidate) (*AssignResult, error) {
	assignment := &models.Assignment{
		ReportID:    report.ID,
		ResponderID: chosen.responder.ID,
		ETAMinutes:  chosen.eta,
		CreatedAt:   e.now().UTC(),
		SyncStatus:  models.SyncPending,
	}
	if err := e.assignments.Create(ctx, assignment); err != nil {
		e.compensateReserve(ctx, chosen.responder.ID)
		return nil, fmt.Errorf("service: could not create assignment: %w", err)
	}

	if _, err := e.tracker.transition(ctx, report.ID, models.StatusAssigned, ""); err != nil {
		if terr := e.assignments.Terminate(ctx, assignment.ID, "rollback", e.now().UTC()); terr != nil {
			e.logger.WithError(terr).WithField("assignment_id", assignment.ID).Error("Failed to roll back assignment")
		}
		e.compensateReserve(ctx, chosen.responder.ID)
		return nil, err
	}

	event := webhook.NewEvent(webhook.EventAssignmentCreated, report.ID)
	event.AssignmentID = assignment.ID
	event.ResponderID = chosen.responder.ID
	event.ETAMinutes = assignment.ETAMinutes
	e.publish(ctx, event)

	responder := chosen.responder.Clone()
	responder.Availability = false
	return &AssignResult{Assignment: assignment, Responder: responder, Created: true}, nil
}

func (e *AssignmentEngine) compensateReserve(ctx context.Context, responderID int64) {
	if err := e.registry.Release(ctx, responderID); err != nil {
		e.logger.WithError(err).WithField("responder_id", responderID).Error("Failed to release responder after failed assignment")
	}
}

// finalize закрывает активное назначение отчета, ставшего терминальным. Вызывается под блокировкой отчета.
func (e *AssignmentEngine) finalize(ctx context.Context, reportID int64, status models.Status, reason string) error {
	active, err := e.assignments.GetActiveByReport(ctx, reportID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service: could not look up active assignment: %w", err)
	}

	if reason == "" {
		reason = status.String()
	}
	if err := e.assignments.Terminate(ctx, active.ID, reason, e.now().UTC()); err != nil {
		return fmt.Errorf("service: could not terminate assignment: %w", err)
	}
	if err := e.registry.Release(ctx, active.ResponderID); err != nil {
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("service: could not release responder %d: %w", active.ResponderID, err)
		}
		// Спасатель уже свободен, освобождать нечего
		e.logger.WithField("responder_id", active.ResponderID).Warn("Responder of terminated assignment was already available")
	}

	event := webhook.NewEvent(webhook.EventAssignmentReleased, reportID)
	event.AssignmentID = active.ID
	event.ResponderID = active.ResponderID
	event.Status = status.String()
	event.Reason = reason
	e.publish(ctx, event)
	return nil
}

// refreshETA пересчитывает ETA активного назначения после перемещения спасателя
func (e *AssignmentEngine) refreshETA(ctx context.Context, moved *models.Responder) {
	log := e.logger.WithFields(logrus.Fields{
		"service":      "assignment",
		"method":       "refreshETA",
		"responder_id": moved.ID,
	})

	active, err := e.assignments.GetActiveByResponder(ctx, moved.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Error("Failed to look up responder assignment")
		}
		return
	}

	unlock := e.tracker.lockReport(active.ReportID)
	defer unlock()

	current, err := e.assignments.GetByID(ctx, active.ID)
	if err != nil || !current.Active() || current.ResponderID != moved.ID {
		return
	}
	// Координаты перечитываются под блокировкой, чтобы поздний слушатель не записал устаревший ETA
	responder, err := e.registry.GetResponder(ctx, moved.ID)
	if err != nil {
		log.WithError(err).Error("Failed to reload responder")
		return
	}
	report, err := e.reports.GetByID(ctx, current.ReportID)
	if err != nil {
		log.WithError(err).Error("Failed to load assigned report")
		return
	}
	minutes, err := e.calc.Estimate(responder.Location, report.Location)
	if err != nil || minutes == current.ETAMinutes {
		return
	}
	if err := e.assignments.UpdateETA(ctx, current.ID, minutes); err != nil {
		log.WithError(err).Error("Failed to update assignment ETA")
		return
	}
	log.WithFields(logrus.Fields{
		"assignment_id": current.ID,
		"eta_minutes":   minutes,
	}).Debug("Assignment ETA refreshed")
}

func (e *AssignmentEngine) publish(ctx context.Context, event webhook.WebhookEvent) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.EventFailed()
		e.logger.WithError(err).WithField("event_type", event.Type).Error("Failed to publish dispatch event")
	}
}

func (e *AssignmentEngine) fail(log *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, ErrNoResponderAvailable):
		e.metrics.AssignmentOutcome(metrics.OutcomeNoResponder)
		log.WithError(err).Warn("No responder available")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
		log.WithError(err).Warn("Assignment rejected")
	default:
		e.metrics.AssignmentOutcome(metrics.OutcomeError)
		log.WithError(err).Error("Assignment failed")
	}
	return err
}
