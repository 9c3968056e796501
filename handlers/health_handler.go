package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/types"
)

const welcomeMessage = "Welcome to the Raseed receipt assistant API"

type HealthHandler struct {
	healthService HealthServiceInterface
	version       string
}

func NewHealthHandler(healthService HealthServiceInterface, version string) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		version:       version,
	}
}

// Welcome godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} types.WelcomeResponse
// @Router / [get]
func (h *HealthHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, types.WelcomeResponse{Message: welcomeMessage, Version: h.version})
}

// LivenessCheck handles kubernetes liveness probe
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /health/liveness [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck handles kubernetes readiness probe
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Failure 503 {object} types.HealthCheck
// @Router /health/readiness [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth provides detailed health information
// @Summary Dependency health
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}
