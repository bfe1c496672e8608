package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kareem2099/FreeID/pkg/utils"
	"github.com/kareem2099/FreeID/usecase"
)

type StatsHandler struct {
	Service *usecase.AnalyticsService
}

func InitRestStats(app fiber.Router, service *usecase.AnalyticsService) StatsHandler {
	handler := StatsHandler{Service: service}

	app.Get("/api/stats", handler.GetStats)
	app.Get("/api/top-users", handler.GetTopUsers)

	return handler
}

// GetStats returns the aggregate bot usage statistics.
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats := h.Service.GetStats(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Bot stats retrieved",
		Results: stats,
	})
}

// GetTopUsers returns the ranked top users by interaction count.
func (h *StatsHandler) GetTopUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", usecase.DefaultTopUsersLimit)
	if limit <= 0 || limit > 100 {
		limit = usecase.DefaultTopUsersLimit
	}

	top := h.Service.GetTopUsers(c.UserContext(), int64(limit))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Top users retrieved",
		Results: top,
	})
}
