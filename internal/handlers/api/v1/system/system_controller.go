// file: internal/handlers/api/v1/system/system_controller.go
package system

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"merithub/internal/response"
	"merithub/internal/services"
	"merithub/internal/validation"
)

// SystemController handles internal trigger hooks and health endpoints.
// The award and sweep routes are for trusted callers only: marketplace
// services firing activity triggers and the cron runner.
type SystemController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
	sweepBatchSize    int
}

// NewSystemController creates a new system API controller
func NewSystemController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *SystemController {
	return &SystemController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
		sweepBatchSize:    serviceCollection.Config.Sweep.DefaultBatchSize,
	}
}

// CheckAndAward runs one badge evaluation pass for a user
// @Summary Evaluate and award badges for a user
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /internal/awards/check [post]
func (c *SystemController) CheckAndAward(w http.ResponseWriter, r *http.Request) {
	var req services.CheckAndAwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	awarded, err := c.serviceCollection.Award.CheckAndAward(r.Context(), req.UserID, req.Trigger)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"awarded": awarded,
		"count":   len(awarded),
	})
}

// RunSweep runs one bounded tenure sweep batch
// @Summary Run a tenure sweep batch
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /internal/sweep [post]
func (c *SystemController) RunSweep(w http.ResponseWriter, r *http.Request) {
	req := services.RunSweepRequest{BatchSize: c.sweepBatchSize}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
			return
		}
	}
	if req.BatchSize <= 0 {
		req.BatchSize = c.sweepBatchSize
	}
	if max := c.serviceCollection.Config.Sweep.MaxBatchSize; req.BatchSize > max {
		req.BatchSize = max
	}

	result, err := c.serviceCollection.Sweep.RunSweep(r.Context(), req.BatchSize)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// Health reports the health of the engine's dependencies
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /health [get]
func (c *SystemController) Health(w http.ResponseWriter, r *http.Request) {
	status := c.serviceCollection.Health(r.Context())

	healthy := true
	for _, v := range status {
		if v == "unhealthy" {
			healthy = false
			break
		}
	}

	resp := c.responseBuilder.Success(r.Context(), status)
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.responseBuilder.WriteJSON(w, r, resp, code)
}
