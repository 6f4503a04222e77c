package main

import (
	"database/sql"
	"net/http"
	"time"

	"gavalink/internal/httpapi"
	"gavalink/internal/rbac"
	"gavalink/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Document stamp verification is public: the serial is printed on paper
	// and anyone holding the document may check it.
	r.GET("/verify/documents/:id", h.VerifyDocument)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", h.Login)
	}

	protected := v1.Group("")
	protected.Use(authMW)
	{
		// Citizen surfaces.
		citizen := protected.Group("")
		citizen.Use(rbac.RequireTaxpayer())
		{
			citizen.POST("/returns", h.FileReturn)
			citizen.GET("/returns", h.ListReturns)

			citizen.POST("/payments", h.InitiatePayment)
			citizen.GET("/payments", h.ListPayments)

			citizen.POST("/documents", h.UploadDocument)
			citizen.GET("/documents", h.ListDocuments)

			citizen.POST("/applications", h.SubmitApplication)
			citizen.GET("/applications", h.ListApplications)

			citizen.POST("/support/tickets", h.CreateTicket)
			citizen.GET("/support/tickets", h.ListTickets)
		}

		// The voice assistant submits on behalf of any signed-in user.
		protected.POST("/voice-requests", h.CreateVoiceRequest)

		// Settlement callbacks; in production these are the payment
		// provider's webhooks, signature-checked. Simulated here.
		protected.POST("/payments/:id/confirm", h.ConfirmPayment)
		protected.POST("/payments/:id/fail", h.FailPayment)

		// Officer surfaces.
		officer := protected.Group("/officer")
		officer.Use(rbac.RequireAnyRole(rbac.RoleOfficer, rbac.RoleSupervisor))
		{
			officer.GET("/voice-requests", h.ListVoiceRequests)
			officer.POST("/voice-requests/:id/decide", h.DecideVoiceRequest)

			officer.POST("/returns/:id/advance", h.AdvanceReturn)

			officer.GET("/documents/pending", h.ListPendingDocuments)
			officer.POST("/documents/:id/stamp", h.StampDocument)
			officer.POST("/documents/stamp-all", h.StampAllDocuments)

			officer.POST("/applications/:id/transition", h.TransitionApplication)

			officer.GET("/support/tickets", h.ListOpenTickets)
			officer.POST("/support/tickets/:id/status", h.UpdateTicketStatus)

			officer.GET("/analytics/overview", h.AnalyticsOverview)
			officer.POST("/pins/verify", h.BulkVerifyPINs)
		}

		// Broadcasts reach every citizen; supervisors only.
		supervisor := protected.Group("/supervisor")
		supervisor.Use(rbac.RequireAnyRole(rbac.RoleSupervisor))
		{
			supervisor.POST("/broadcasts", h.SendBroadcast)
		}
	}
}
