package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/user"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns both balance columns for a user.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}

	balance, err := h.service.Balance(c.UserContext(), int64(userID))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":   balance.UserID,
		"available": balance.Available,
		"frozen":    balance.Frozen,
		"timestamp": balance.AsOf,
	})
}
