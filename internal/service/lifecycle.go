package service

import (
	"context"
	"fmt"

	"github.com/shenikar/emergency_dispatch_system/internal/locker"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// terminalHook вызывается под блокировкой отчета после перехода в терминальный статус
type terminalHook func(ctx context.Context, reportID int64, status models.Status, reason string) error

// LifecycleTracker - единственный, кто меняет статус отчета после Received.
// Все переходы одного отчета сериализуются блокировкой по id отчета.
type LifecycleTracker struct {
	reports   ReportRepository
	locks     *locker.KeyedMutex
	publisher webhook.WebhookPublisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	onTerminal []terminalHook
}

// NewLifecycleTracker создает трекер статусов
func NewLifecycleTracker(reports ReportRepository, publisher webhook.WebhookPublisher, m *metrics.Metrics, logger *logrus.Logger) *LifecycleTracker {
	return &LifecycleTracker{
		reports:   reports,
		locks:     locker.New(),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Advance переводит отчет в target, если переход разрешен таблицей
func (t *LifecycleTracker) Advance(ctx context.Context, reportID int64, target models.Status) (*models.EmergencyReport, error) {
	unlock := t.lockReport(reportID)
	defer unlock()

	return t.transition(ctx, reportID, target, "")
}

func (t *LifecycleTracker) lockReport(reportID int64) func() {
	return t.locks.LockID(reportID)
}

// transition требует удерживаемой блокировки отчета
func (t *LifecycleTracker) transition(ctx context.Context, reportID int64, target models.Status, reason string) (*models.EmergencyReport, error) {
	log := t.logger.WithFields(logrus.Fields{
		"service":   "lifecycle",
		"method":    "Advance",
		"report_id": reportID,
		"target":    target.String(),
	})

	report, err := t.reports.GetByIDFresh(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load report: %w", err)
	}

	if !models.CanTransition(report.Status, target) {
		log.WithField("current", report.Status.String()).Warn("Rejected status transition")
		return nil, fmt.Errorf("service: %s -> %s: %w", report.Status, target, ErrInvalidTransition)
	}

	if err := t.reports.UpdateStatus(ctx, reportID, report.Status, target); err != nil {
		log.WithError(err).Error("Failed to persist report status")
		return nil, fmt.Errorf("service: could not update report status: %w", err)
	}
	previous := report.Status
	report.Status = target

	if target.Terminal() {
		for _, hook := range t.onTerminal {
			if err := hook(ctx, reportID, target, reason); err != nil {
				log.WithError(err).Error("Failed to finalize assignment for terminal report")
				t.rollback(ctx, log, reportID, target, previous)
				return nil, fmt.Errorf("service: could not finalize report: %w", err)
			}
		}
	}

	t.metrics.StatusTransition(target.String())
	event := webhook.NewEvent(webhook.EventStatusChanged, reportID)
	event.Status = target.String()
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.metrics.EventFailed()
		log.WithError(err).Error("Failed to publish status change event")
	}

	log.WithField("from", previous.String()).Info("Report status advanced")
	return report, nil
}

// rollback возвращает отчету статус from, если терминальные хуки не отработали,
// чтобы терминальный статус не пережил активное назначение. Переход можно повторить.
func (t *LifecycleTracker) rollback(ctx context.Context, log *logrus.Entry, reportID int64, target, from models.Status) {
	if err := t.reports.UpdateStatus(ctx, reportID, target, from); err != nil {
		log.WithError(err).WithField("restore", from.String()).Error("Failed to roll back report status")
	}
}
