package v1

import "github.com/shenikar/emergency_dispatch_system/internal/models"

// DTOToReportModel преобразует DTO создания в доменную модель
func DTOToReportModel(dto CreateEmergencyReportRequest) *models.EmergencyReport {
	report := &models.EmergencyReport{
		Type:        models.EmergencyType(dto.Type),
		Description: dto.Description,
		ReporterID:  dto.ReporterID,
	}
	if dto.LocationLat != nil {
		report.Location.Latitude = *dto.LocationLat
	}
	if dto.LocationLng != nil {
		report.Location.Longitude = *dto.LocationLng
	}
	return report
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.EmergencyReport) *EmergencyReportResponse {
	return &EmergencyReportResponse{
		ID:          model.ID,
		Type:        string(model.Type),
		Description: model.Description,
		LocationLat: model.Location.Latitude,
		LocationLng: model.Location.Longitude,
		ReporterID:  model.ReporterID,
		Timestamp:   model.Timestamp,
		Status:      model.Status.String(),
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(models []*models.EmergencyReport) []*EmergencyReportResponse {
	responses := make([]*EmergencyReportResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToReportResponse(model)
	}
	return responses
}

func ModelToResponderResponse(model *models.Responder) *ResponderResponse {
	return &ResponderResponse{
		ID:           model.ID,
		Name:         model.Name,
		Role:         string(model.Role),
		Availability: model.Availability,
	}
}

func ModelsToResponderResponses(models []*models.Responder) []*ResponderResponse {
	responses := make([]*ResponderResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToResponderResponse(model)
	}
	return responses
}

func ModelToResponderDetail(model *models.Responder) *ResponderDetailResponse {
	detail := &ResponderDetailResponse{
		ID:           model.ID,
		Name:         model.Name,
		Role:         string(model.Role),
		Availability: model.Availability,
	}
	if model.Location != nil {
		lat, lng := model.Location.Latitude, model.Location.Longitude
		detail.LocationLat = &lat
		detail.LocationLng = &lng
	}
	return detail
}

func ModelToAssignmentResponse(model *models.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:                model.ID,
		ResponderID:       model.ResponderID,
		EmergencyID:       model.ReportID,
		ETAMinutes:        model.ETAMinutes,
		CreatedAt:         model.CreatedAt,
		Active:            model.Active(),
		SyncStatus:        string(model.SyncStatus),
		TerminatedAt:      model.TerminatedAt,
		TerminationReason: model.TerminationReason,
	}
}

// ToEmergencyResponse - проекция назначения для пути «вызов принят автоматически»
func ToEmergencyResponse(assignment *models.Assignment, responder *models.Responder) *EmergencyResponse {
	return &EmergencyResponse{
		ReportID:      assignment.ReportID,
		ResponderName: responder.Name,
		ResponderRole: string(responder.Role),
		ETAMinutes:    assignment.ETAMinutes,
	}
}
