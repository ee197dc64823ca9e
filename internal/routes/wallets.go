package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/wallet"
)

// RegisterWalletRoutes wires balance lookups.
func RegisterWalletRoutes(router fiber.Router, h *wallet.Handler) {
	group := router.Group("/wallets")
	group.Get("/:userId", h.Balance)
}
