// file: internal/handlers/api/v1/achievements/achievements_controller.go
package achievements

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"merithub/internal/middleware"
	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/gorilla/mux"
)

// AchievementController handles milestone and shareable profile endpoints
type AchievementController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewAchievementController creates a new achievement API controller
func NewAchievementController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AchievementController {
	return &AchievementController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// GetMilestones returns the caller's achieved and pending milestones
// @Summary Get my milestones
// @Tags achievements
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /achievements/milestones [get]
func (c *AchievementController) GetMilestones(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r.Context())
	if authCtx == nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("authentication required", nil))
		return
	}

	summary, err := c.serviceCollection.Milestone.GetMilestones(r.Context(), authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, summary)
}

// AcknowledgeMilestone marks one milestone celebration as seen
// @Summary Acknowledge a milestone
// @Tags achievements
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /achievements/milestones/acknowledge [post]
func (c *AchievementController) AcknowledgeMilestone(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r.Context())
	if authCtx == nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("authentication required", nil))
		return
	}

	var req services.AcknowledgeMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.serviceCollection.Milestone.Acknowledge(r.Context(), authCtx.UserID, req.MilestoneID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// GetShareableProfile returns the public badge profile for any user
// @Summary Get a user's public badge profile
// @Tags achievements
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /profiles/{id}/badges [get]
func (c *AchievementController) GetShareableProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || userID <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	profile, err := c.serviceCollection.Profile.GetShareableProfile(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, profile)
}

// GetLeaderboard returns the top badge earners by points
// @Summary Get the badge leaderboard
// @Tags achievements
// @Produce json
// @Param limit query int false "Max entries" default(10)
// @Success 200 {object} response.APIResponse
// @Router /achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid limit", err))
			return
		}
		limit = parsed
	}

	entries, err := c.serviceCollection.Profile.GetLeaderboard(r.Context(), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, entries)
}
