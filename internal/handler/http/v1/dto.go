package v1

import "time"

// ResponderResponse DTO элемента списка спасателей
// @Description DTO элемента списка спасателей
type ResponderResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Availability bool   `json:"availability"`
}

// ResponderDetailResponse DTO спасателя с координатами. Координаты null до первого обновления.
// @Description DTO спасателя с координатами
type ResponderDetailResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Availability bool     `json:"availability"`
	LocationLat  *float64 `json:"locationLat"`
	LocationLng  *float64 `json:"locationLng"`
}

// CreateEmergencyReportRequest DTO для создания отчета о происшествии
// @Description DTO для создания отчета о происшествии
type CreateEmergencyReportRequest struct {
	Type        string   `json:"type" validate:"required"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	LocationLat *float64 `json:"locationLat" validate:"required"`
	LocationLng *float64 `json:"locationLng" validate:"required"`
	ReporterID  string   `json:"reporterId" validate:"required"`
}

// EmergencyReportResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type EmergencyReportResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	LocationLat float64   `json:"locationLat"`
	LocationLng float64   `json:"locationLng"`
	ReporterID  string    `json:"reporterId"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// UpdateStatusRequest DTO для смены статуса отчета
// @Description DTO для смены статуса отчета
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// EmergencyResponse DTO результата автоматического назначения
// @Description DTO результата автоматического назначения
type EmergencyResponse struct {
	ReportID      int64  `json:"reportId"`
	ResponderName string `json:"responderName"`
	ResponderRole string `json:"responderRole"`
	ETAMinutes    int    `json:"etaMinutes"`
}

// AssignmentResponse DTO назначения
// @Description DTO назначения
type AssignmentResponse struct {
	ID                int64      `json:"id"`
	ResponderID       int64      `json:"responderId"`
	EmergencyID       int64      `json:"emergencyId"`
	ETAMinutes        int        `json:"etaMinutes"`
	CreatedAt         time.Time  `json:"createdAt"`
	Active            bool       `json:"active"`
	SyncStatus        string     `json:"syncStatus"`
	TerminatedAt      *time.Time `json:"terminatedAt,omitempty"`
	TerminationReason string     `json:"terminationReason,omitempty"`
}

// ReleaseRequest DTO для снятия назначения
// @Description DTO для снятия назначения
type ReleaseRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=255"`
}
