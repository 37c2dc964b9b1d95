package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const maxDescriptionLength = 2000

type reportService struct {
	repo   ReportRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewReportService создает сервис приема отчетов
func NewReportService(repo ReportRepository, logger *logrus.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateReport проверяет отчет, выставляет статус Received и время создания, сохраняет его
func (s *reportService) CreateReport(ctx context.Context, report *models.EmergencyReport) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "report",
		"method":      "CreateReport",
		"reporter_id": report.ReporterID,
	})
	log.Info("Attempting to create a new emergency report")

	if err := validateReport(report); err != nil {
		log.WithError(err).Warn("Report validation failed")
		return err
	}

	report.Status = models.StatusReceived
	report.Timestamp = s.now().UTC()
	if err := s.repo.Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create report in repository")
		return fmt.Errorf("service: could not create report: %w", err)
	}

	log.WithField("report_id", report.ID).Info("Report created successfully")
	return nil
}

// GetReport получает отчет по ID
func (s *reportService) GetReport(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get report %d: %w", id, err)
	}
	return report, nil
}

// ListByReporter возвращает отчеты заявителя в порядке поступления
func (s *reportService) ListByReporter(ctx context.Context, reporterID string) ([]*models.EmergencyReport, error) {
	reports, err := s.repo.ListByReporter(ctx, strings.TrimSpace(reporterID))
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListByReporter").Error("Failed to list reports")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}
	return reports, nil
}

func validateReport(report *models.EmergencyReport) error {
	typ, ok := models.ParseEmergencyType(string(report.Type))
	if !ok {
		return fmt.Errorf("service: unknown emergency type %q: %w", report.Type, ErrValidation)
	}
	report.Type = typ

	report.ReporterID = strings.TrimSpace(report.ReporterID)
	if report.ReporterID == "" {
		return fmt.Errorf("service: invalid reporterId: %w", ErrValidation)
	}

	report.Description = strings.TrimSpace(report.Description)
	if utf8.RuneCountInString(report.Description) > maxDescriptionLength {
		return fmt.Errorf("service: description longer than %d characters: %w", maxDescriptionLength, ErrValidation)
	}

	if !report.Location.Valid() {
		return fmt.Errorf("service: report location: %w", ErrInvalidCoordinates)
	}
	return nil
}
