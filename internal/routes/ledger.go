package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/ledger"
)

// RegisterLedgerRoutes wires point log auditing. Entry deletion is an audit
// cleanup action; it never rolls the wallet back.
func RegisterLedgerRoutes(router fiber.Router, log ledger.Log) {
	group := router.Group("/ledger")

	group.Get("/:userId", func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("userId")
		if err != nil || userID <= 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid user id")
		}
		entries, err := log.ListByUser(c.UserContext(), int64(userID))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(entries))
		for _, e := range entries {
			out = append(out, fiber.Map{
				"id":              e.ID,
				"user_id":         e.UserID,
				"related_user_id": e.RelatedUserID,
				"type":            string(e.Type),
				"points":          e.Points,
				"remark":          e.Remark,
				"created_at":      e.CreatedAt,
			})
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"entries": out})
	})

	group.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid entry id")
		}
		if err := log.Delete(c.UserContext(), int64(id)); err != nil {
			if errors.Is(err, ledger.ErrEntryNotFound) {
				return fiber.NewError(http.StatusNotFound, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})
}
