package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/order"
)

// RegisterOrderRoutes wires top-up orders and the payment settlement callback.
func RegisterOrderRoutes(router fiber.Router, h *order.Handler) {
	group := router.Group("/orders")
	group.Post("/", h.Create)
	group.Post("/notify", h.Notify)
}
