package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/config"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/mawaid-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/session"
	ucAppointment "github.com/BruksfildServices01/mawaid-scheduler/internal/usecase/appointment"
	ucNotification "github.com/BruksfildServices01/mawaid-scheduler/internal/usecase/notification"
)

// Runtime is the long-lived state built in main and shared by handlers.
type Runtime struct {
	Log          *zap.Logger
	Feed         session.Feed
	Appointments *reconcile.Appointments
	Suggestions  *reconcile.Suggestions
	Audit        *audit.Dispatcher
	Limiter      *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, rt Runtime) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// INFRA
	// ======================================================
	repo := infraRepo.NewAppointmentGormRepository(db)

	// ======================================================
	// USE CASES
	// ======================================================
	checkUC := ucAppointment.NewCheckConflicts(repo, rt.Log)
	createUC := ucAppointment.NewCreateAppointment(repo, rt.Audit, rt.Log)
	reviewUC := ucAppointment.NewReviewAppointment(repo, rt.Audit, rt.Log)
	cancelUC := ucAppointment.NewCancelAppointment(repo, rt.Audit)
	suggestUC := ucAppointment.NewSuggestAlternative(repo, rt.Audit, rt.Log)
	resolveUC := ucAppointment.NewResolveSuggestion(repo, rt.Audit, rt.Log)
	listUC := ucAppointment.NewListAppointments(repo)
	getUC := ucAppointment.NewGetAppointment(repo)
	listSuggUC := ucAppointment.NewListSuggestions(repo, rt.Suggestions)

	listNotifUC := ucNotification.NewListNotifications(repo)
	readNotifUC := ucNotification.NewMarkNotificationRead(repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(
		checkUC,
		createUC,
		reviewUC,
		cancelUC,
		suggestUC,
		listUC,
		getUC,
		listSuggUC,
		cfg.Timezone,
	)
	suggestionHandler := handlers.NewSuggestionHandler(resolveUC)
	notificationHandler := handlers.NewNotificationHandler(listNotifUC, readNotifUC)
	meHandler := handlers.NewMeHandler(repo, rt.Log)
	dashboardHandler := handlers.NewDashboardHandler(rt.Appointments, repo, cfg.Timezone)
	eventsHandler := handlers.NewEventsHandler(repo, rt.Feed, rt.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(db), cfg.Timezone, rt.Log)

	managerOnly := middleware.RequireRole(domain.RoleManager)
	coordinatorOnly := middleware.RequireRole(domain.RoleCoordinator)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg, repo, rt.Log))
	api.Use(middleware.RateLimit(rt.Limiter))
	{
		api.GET("/me", meHandler.GetMe)
		api.PUT("/me/push-token", meHandler.PutPushToken)
		api.DELETE("/me/push-token", meHandler.DeletePushToken)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		api.POST("/appointments/conflicts", appointmentHandler.CheckConflicts)
		api.GET("/appointments", appointmentHandler.List)
		api.POST("/appointments", coordinatorOnly, appointmentHandler.Create)
		api.GET("/appointments/:id", appointmentHandler.Get)
		api.PATCH("/appointments/:id/confirm", managerOnly, appointmentHandler.Confirm)
		api.PATCH("/appointments/:id/reject", managerOnly, appointmentHandler.Reject)
		api.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)

		// ------------------------------
		// SUGGESTIONS
		// ------------------------------
		api.GET("/appointments/:id/suggestions", appointmentHandler.ListSuggestions)
		api.POST("/appointments/:id/suggestions", managerOnly, appointmentHandler.Suggest)
		api.PATCH("/suggestions/:id/accept", coordinatorOnly, suggestionHandler.Accept)
		api.PATCH("/suggestions/:id/reject", coordinatorOnly, suggestionHandler.Reject)

		// ------------------------------
		// NOTIFICATIONS / LIVE
		// ------------------------------
		api.GET("/notifications", notificationHandler.List)
		api.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		api.GET("/dashboard", dashboardHandler.Get)
		api.GET("/events", eventsHandler.Stream)

		api.GET("/audit-logs", managerOnly, auditLogsHandler.List)
	}
}
