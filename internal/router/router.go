// file: internal/router/router.go
package router

import (
	"net/http"

	"merithub/internal/handlers/api/v1/achievements"
	"merithub/internal/handlers/api/v1/notifications"
	"merithub/internal/handlers/api/v1/system"
	"merithub/internal/middleware"
	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	achievementController := achievements.NewAchievementController(serviceCollection, logger, responseBuilder)
	notificationController := notifications.NewNotificationController(serviceCollection, logger, responseBuilder)
	systemController := system.NewSystemController(serviceCollection, logger, responseBuilder)

	// ===============================
	// PUBLIC ENDPOINTS
	// ===============================

	r.HandleFunc("/health", systemController.Health).Methods(http.MethodGet)
	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Shareable profiles need no auth: the point is sharing them.
	api.HandleFunc("/profiles/{id:[0-9]+}/badges", achievementController.GetShareableProfile).Methods(http.MethodGet)
	api.HandleFunc("/achievements/leaderboard", achievementController.GetLeaderboard).Methods(http.MethodGet)

	// ===============================
	// AUTHENTICATED ENDPOINTS
	// ===============================

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware.RequireAuth)

	authed.HandleFunc("/achievements/milestones", achievementController.GetMilestones).Methods(http.MethodGet)
	authed.HandleFunc("/achievements/milestones/acknowledge", achievementController.AcknowledgeMilestone).Methods(http.MethodPost)

	authed.HandleFunc("/notifications", notificationController.ListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/unread-count", notificationController.GetUnreadCount).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/read-all", notificationController.MarkAllRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}/read", notificationController.MarkRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/preferences", notificationController.GetPreferences).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/preferences", notificationController.UpdatePreferences).Methods(http.MethodPut)

	authed.HandleFunc("/devices/tokens", notificationController.RegisterDeviceToken).Methods(http.MethodPost)
	authed.HandleFunc("/devices/tokens", notificationController.RemoveDeviceToken).Methods(http.MethodDelete)

	// Realtime notification stream
	authed.HandleFunc("/ws/notifications", func(w http.ResponseWriter, r *http.Request) {
		authCtx := middleware.GetAuthContext(r.Context())
		if authCtx == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		serviceCollection.Hub.ServeWS(w, r, authCtx.UserID)
	})

	// ===============================
	// INTERNAL ENDPOINTS
	// ===============================

	// Trigger hooks for marketplace services and the cron runner. These
	// sit behind service-role tokens.
	internal := api.PathPrefix("/internal").Subrouter()
	internal.Use(authMiddleware.RequireRole("service"))
	internal.HandleFunc("/awards/check", systemController.CheckAndAward).Methods(http.MethodPost)
	internal.HandleFunc("/sweep", systemController.RunSweep).Methods(http.MethodPost)

	// ===============================
	// MIDDLEWARE CHAIN
	// ===============================

	var handler http.Handler = r
	handler = middleware.Logging()(handler)
	handler = middleware.Recovery(responseBuilder)(handler)
	handler = middleware.CORS(serviceCollection.Config.Server.CORSOrigin)(handler)
	handler = middleware.RequestID(logger)(handler)

	return handler
}
