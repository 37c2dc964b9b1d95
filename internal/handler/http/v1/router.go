package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API. Клиенты обращаются к ним без префикса версии.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	responders := api.Group("/responders")
	{
		responders.GET("", h.listResponders)
		responders.GET("/:id", h.getResponder)
		responders.PATCH("/:id/location", h.updateLocation)
	}

	alerts := api.Group("/alerts")
	{
		alerts.POST("", h.createReport)
		alerts.GET("/reporter/:reporterId", h.listReportsByReporter)
		alerts.GET("/:id", h.getReport)
		alerts.POST("/:id/assign", h.assignReport)
		alerts.PATCH("/:id/status", h.updateStatus)
	}

	assign := api.Group("/assign")
	{
		assign.POST("", h.createAssignment)
		assign.GET("/emergency/:id", h.getAssignmentByEmergency)
		assign.GET("/:id", h.getAssignment)
		assign.POST("/:id/release", h.releaseAssignment)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
