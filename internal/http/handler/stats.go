package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"medregistry/internal/service"
)

// DashboardStats returns the scoped usage snapshot.
func DashboardStats(svc service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Dashboard(c.UserContext(), c.Query("userId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}

// StorageTrends returns the daily upload series for a 7 or 30 day
// window.
func StorageTrends(svc service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period, err := strconv.Atoi(c.Query("period", "7"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "period must be an integer")
		}

		points, err := svc.Trends(c.UserContext(), c.Query("userId"), period)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"trends": points})
	}
}
