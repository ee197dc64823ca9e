package cash

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/user"
)

// Handler exposes HTTP endpoints for the withdrawal lifecycle.
type Handler struct {
	service *Service
}

// NewHandler constructs a cash handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RequestPayload is the withdrawal request body.
type RequestPayload struct {
	UserID      int64  `json:"user_id"`
	Amount      int64  `json:"amount"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	Payee       string `json:"payee"`
}

// AuditPayload selects the requests to audit.
type AuditPayload struct {
	IDs []int64 `json:"ids"`
}

// Request opens a withdrawal, freezing the required points.
func (h *Handler) Request(c *fiber.Ctx) error {
	var req RequestPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Request(c.UserContext(), RequestInput{
		UserID:      req.UserID,
		Amount:      req.Amount,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		Payee:       req.Payee,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBelowMinimum):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrWithdrawalsDisabled):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, user.ErrInsufficientBalance):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     created.ID,
		"status": created.Status,
		"amount": created.Amount,
		"points": created.Points,
	})
}

// Audit settles a batch of pending requests, reporting per-item outcomes.
func (h *Handler) Audit(c *fiber.Ctx) error {
	var req AuditPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.IDs) == 0 {
		return fiber.NewError(http.StatusBadRequest, "ids are required")
	}

	results := h.service.Audit(c.UserContext(), req.IDs)
	out := make([]fiber.Map, 0, len(results))
	for _, result := range results {
		item := fiber.Map{"request_id": result.RequestID, "ok": result.Err == nil}
		if result.Err != nil {
			item["error"] = result.Err.Error()
		}
		out = append(out, item)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"results": out})
}

// Delete removes a request, restoring frozen points when it was still pending.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid request id")
	}
	if err := h.service.Delete(c.UserContext(), int64(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// List returns requests, optionally filtered by a status query parameter.
func (h *Handler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && status != StatusPending && status != StatusAudited {
		return fiber.NewError(http.StatusBadRequest, "invalid status filter")
	}

	requests, err := h.service.List(c.UserContext(), status)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]fiber.Map, 0, len(requests))
	for _, req := range requests {
		item := fiber.Map{
			"id":           req.ID,
			"user_id":      req.UserID,
			"status":       req.Status,
			"amount":       req.Amount,
			"points":       req.Points,
			"bank_name":    req.BankName,
			"bank_account": req.BankAccount,
			"payee":        req.Payee,
			"created_at":   req.CreatedAt,
		}
		if req.Status == StatusAudited {
			item["audited_at"] = req.AuditedAt
		}
		out = append(out, item)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"requests": out})
}
