package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

// Services - сервисы, которые обслуживает HTTP-слой
type Services struct {
	Responders service.ResponderService
	Reports    service.ReportService
	Dispatcher service.AssignmentService
	Lifecycle  service.StatusTracker
	Query      service.QueryService
}

type Handler struct {
	services Services
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewHandler(services Services, logger *logrus.Logger) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		validate: validator.New(),
	}
}

// @Summary List responders
// @Description Get all registered responders
// @Tags Responders
// @Produce json
// @Success 200 {array} ResponderResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /responders [get]
func (h *Handler) listResponders(c *gin.Context) {
	log := h.logger.WithField("method", "listResponders")

	responders, err := h.services.Query.GetAllResponders(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToResponderResponses(responders))
}

// @Summary Get responder by ID
// @Description Get a single responder with its last known location
// @Tags Responders
// @Produce json
// @Param id path int true "Responder ID"
// @Success 200 {object} ResponderDetailResponse
// @Failure 400 {object} map[string]string "Invalid responder ID"
// @Failure 404 {object} map[string]string "Responder not found"
// @Router /responders/{id} [get]
func (h *Handler) getResponder(c *gin.Context) {
	id, ok := parseID(c, "responder")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getResponder").WithField("id", id)

	responder, err := h.services.Query.GetResponder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResponderDetail(responder))
}

// @Summary Update responder location
// @Description Overwrite the responder's location; the ETA of its active assignment is recomputed
// @Tags Responders
// @Produce json
// @Param id path int true "Responder ID"
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} ResponderDetailResponse
// @Failure 400 {object} map[string]string "Invalid ID or coordinates"
// @Failure 404 {object} map[string]string "Responder not found"
// @Router /responders/{id}/location [patch]
func (h *Handler) updateLocation(c *gin.Context) {
	id, ok := parseID(c, "responder")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateLocation").WithField("id", id)

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		log.Warn("Missing or malformed coordinates")
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters must be numbers"})
		return
	}

	responder, err := h.services.Responders.UpdateLocation(c.Request.Context(), id, lat, lng)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToResponderDetail(responder))
}

// @Summary Create an emergency report
// @Description Submit a new emergency report; it starts in status Received
// @Tags Alerts
// @Accept json
// @Produce json
// @Param report body CreateEmergencyReportRequest true "Emergency report"
// @Success 201 {object} EmergencyReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [post]
func (h *Handler) createReport(c *gin.Context) {
	var input CreateEmergencyReportRequest
	log := h.logger.WithField("method", "createReport")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToReportModel(input)
	if err := h.services.Reports.CreateReport(c.Request.Context(), model); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToReportResponse(model))
}

// @Summary Get reports by reporter
// @Description Get all reports submitted by one reporter, oldest first
// @Tags Alerts
// @Produce json
// @Param reporterId path string true "Reporter ID"
// @Success 200 {array} EmergencyReportResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/reporter/{reporterId} [get]
func (h *Handler) listReportsByReporter(c *gin.Context) {
	reporterID := c.Param("reporterId")
	log := h.logger.WithField("method", "listReportsByReporter").WithField("reporter_id", reporterID)

	reports, err := h.services.Query.GetReportsByReporter(c.Request.Context(), reporterID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Tags Alerts
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} EmergencyReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /alerts/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id, ok := parseID(c, "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.services.Query.GetReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Auto-assign a responder to a report
// @Description Reserve the nearest suitable responder. Repeated calls return the existing assignment.
// @Tags Alerts
// @Produce json
// @Param id path int true "Report ID"
// @Success 201 {object} EmergencyResponse "Assignment created"
// @Success 200 {object} EmergencyResponse "Existing assignment"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "No responder available or report past Received"
// @Router /alerts/{id}/assign [post]
func (h *Handler) assignReport(c *gin.Context) {
	id, ok := parseID(c, "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "assignReport").WithField("id", id)

	result, err := h.services.Dispatcher.Assign(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(createdOrOK(result), ToEmergencyResponse(result.Assignment, result.Responder))
}

// @Summary Update report status
// @Description Advance the report along Received→Assigned→EnRoute→Arrived→Completed, or cancel it
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} EmergencyReportResponse
// @Failure 400 {object} map[string]string "Unknown status"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /alerts/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := parseID(c, "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, ok := models.ParseStatus(input.Status)
	if !ok {
		log.WithField("status", input.Status).Warn("Unknown status")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(input.Status)})
		return
	}

	report, err := h.services.Lifecycle.Advance(c.Request.Context(), id, target)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Create or accept an assignment
// @Description Same operation as auto-assign, projected as an assignment record
// @Tags Assignments
// @Produce json
// @Param emergencyId query int true "Report ID"
// @Success 201 {object} AssignmentResponse "Assignment created"
// @Success 200 {object} AssignmentResponse "Existing assignment"
// @Failure 400 {object} map[string]string "Invalid emergencyId"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "No responder available or report past Received"
// @Router /assign [post]
func (h *Handler) createAssignment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("emergencyId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid emergencyId"})
		return
	}
	log := h.logger.WithField("method", "createAssignment").WithField("report_id", id)

	result, err := h.services.Dispatcher.CreateAssignment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(createdOrOK(result), ModelToAssignmentResponse(result.Assignment))
}

// @Summary Get assignment by report
// @Description Active assignment of the report, or the most recent finished one
// @Tags Assignments
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} AssignmentResponse
// @Failure 404 {object} map[string]string "No assignment for the report"
// @Router /assign/emergency/{id} [get]
func (h *Handler) getAssignmentByEmergency(c *gin.Context) {
	id, ok := parseID(c, "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getAssignmentByEmergency").WithField("report_id", id)

	assignment, err := h.services.Query.GetAssignmentByEmergency(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAssignmentResponse(assignment))
}

// @Summary Get assignment by ID
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Failure 404 {object} map[string]string "Assignment not found"
// @Router /assign/{id} [get]
func (h *Handler) getAssignment(c *gin.Context) {
	id, ok := parseID(c, "assignment")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getAssignment").WithField("id", id)

	assignment, err := h.services.Query.GetAssignment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAssignmentResponse(assignment))
}

// @Summary Release an assignment
// @Description Cancel the report and return the responder to the available pool
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param release body ReleaseRequest false "Release reason"
// @Success 200 {object} AssignmentResponse
// @Failure 404 {object} map[string]string "Assignment not found"
// @Failure 409 {object} map[string]string "Assignment already finished"
// @Router /assign/{id}/release [post]
func (h *Handler) releaseAssignment(c *gin.Context) {
	id, ok := parseID(c, "assignment")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "releaseAssignment").WithField("id", id)

	var input ReleaseRequest
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.services.Dispatcher.Release(c.Request.Context(), id, input.Reason)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAssignmentResponse(assignment))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " ID"})
		return 0, false
	}
	return id, true
}

func createdOrOK(result *service.AssignResult) int {
	if result.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}
