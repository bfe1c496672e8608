package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kareem2099/FreeID/pkg/utils"
	"github.com/kareem2099/FreeID/usecase"
)

type HealthHandler struct {
	Service *usecase.HealthService
}

func InitRestHealth(app fiber.Router, service *usecase.HealthService) HealthHandler {
	handler := HealthHandler{Service: service}

	app.Get("/health", handler.GetHealth)

	return handler
}

// GetHealth returns system health including store reachability.
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	systemHealth := h.Service.GetSystemHealth(c.UserContext())

	status := fiber.StatusOK
	if systemHealth.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    "SUCCESS",
		Message: "System health retrieved",
		Results: systemHealth,
	})
}
