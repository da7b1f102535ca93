package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1.
// Чтение открыто, записи требуют токен.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := AuthMiddleware(h.identity, h.logger)

	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/count", h.countIncidents)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("", auth, h.createIncident)
		incidents.POST("/:id/verify", auth, h.verifyIncident)
	}

	api.GET("/reporters/:reporter/incidents", h.listReporterIncidents)
	api.GET("/balances/:actor", h.getBalance)

	funds := api.Group("/fund-requests")
	{
		funds.GET("/count", h.countFundRequests)
		funds.GET("/:id", h.getFundRequest)
		funds.POST("", auth, h.createFundRequest)
		funds.POST("/:id/approve", auth, h.approveFundRequest)
		funds.POST("/:id/disburse", auth, h.disburseFundRequest)
	}

	api.GET("/fund-pool", h.getFundPool)
	api.POST("/fund-pool/deposits", auth, h.depositFunds)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
