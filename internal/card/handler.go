package card

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes HTTP endpoints for card redemption and administration.
type Handler struct {
	service *Service
}

// NewHandler constructs a card handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RedeemRequest is the redemption payload.
type RedeemRequest struct {
	Number   string `json:"number"`
	Password string `json:"password"`
	UserID   int64  `json:"user_id"`
}

// GenerateRequest is the batch generation payload.
type GenerateRequest struct {
	Count     int   `json:"count"`
	FaceValue int64 `json:"face_value"`
	Points    int64 `json:"points"`
}

// Redeem converts a prepaid card into a wallet credit.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Redeem(c.UserContext(), RedeemInput{
		Number:   req.Number,
		Password: req.Password,
		UserID:   req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCardNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrBalanceUpdateFailed), errors.Is(err, ErrCardStateUpdateFailed):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"granted_points": result.Points,
		"message":        "card redeemed",
	})
}

// Generate creates a card batch and returns the plaintext credentials once.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.service.Generate(c.UserContext(), GenerateInput{
		Count:     req.Count,
		FaceValue: req.FaceValue,
		Points:    req.Points,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidBatch) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]fiber.Map, 0, len(issued))
	for _, card := range issued {
		out = append(out, fiber.Map{
			"number":     card.Number,
			"password":   card.Password,
			"face_value": card.FaceValue,
			"points":     card.Points,
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"cards": out})
}

// List returns all cards for auditing.
func (h *Handler) List(c *fiber.Ctx) error {
	cards, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]fiber.Map, 0, len(cards))
	for _, card := range cards {
		entry := fiber.Map{
			"id":          card.ID,
			"number":      card.Number,
			"face_value":  card.FaceValue,
			"points":      card.Points,
			"sale_status": card.SaleStatus,
			"use_status":  card.UseStatus,
			"created_at":  card.CreatedAt,
		}
		if card.UseStatus == UseStatusUsed {
			entry["used_by"] = card.UsedBy
			entry["used_at"] = card.UsedAt
		}
		out = append(out, entry)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"cards": out})
}

// Delete removes a card in any state.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid card id")
	}
	if err := h.service.Delete(c.UserContext(), int64(id)); err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
