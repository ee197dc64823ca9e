package order

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/user"
)

// Handler exposes HTTP endpoints for top-up orders and the settlement callback.
type Handler struct {
	service *Service
}

// NewHandler constructs an order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest is the top-up initiation payload.
type CreateRequest struct {
	UserID int64 `json:"user_id"`
	Amount int64 `json:"amount"`
	Points int64 `json:"points"`
}

// NotifyRequest is the settlement callback payload.
type NotifyRequest struct {
	Code      string `json:"code"`
	PayMethod string `json:"pay_method"`
}

// Create opens a new unpaid order.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	o, err := h.service.Create(c.UserContext(), CreateInput{UserID: req.UserID, Amount: req.Amount, Points: req.Points})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     o.ID,
		"code":   o.Code,
		"status": o.Status,
		"amount": o.Amount,
		"points": o.Points,
	})
}

// Notify is the payment gateway callback.
func (h *Handler) Notify(c *fiber.Ctx) error {
	var req NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Notify(c.UserContext(), req.Code, req.PayMethod)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrGatewayRejected):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrOrderUpdateFailed), errors.Is(err, ErrWalletUpdateFailed):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	message := "order settled"
	if result.AlreadyPaid {
		message = "order already settled"
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      message,
		"already_paid": result.AlreadyPaid,
		"points":       result.Points,
	})
}
