// handlers/support.go
package handlers

import (
	"game-platform/middleware"
	"game-platform/models"

	"github.com/gofiber/fiber/v2"
)

// POST /tickets
func (h *PlatformHandler) SubmitTicket(c *fiber.Ctx) error {
	var req struct {
		Category    models.TicketCategory `json:"category"` // optional, classified from the description
		Description string                `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.Platform.SubmitTicket(middleware.CallerFrom(c).UserID, req.Category, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// GET /tickets
func (h *PlatformHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.Platform.Tickets(middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tickets": tickets})
}

// POST /tickets/:id/handle
func (h *PlatformHandler) HandleTicket(c *fiber.Ctx) error {
	t, err := h.Platform.HandleTicket(middleware.CallerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}
