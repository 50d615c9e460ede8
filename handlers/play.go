// handlers/play.go
package handlers

import (
	"game-platform/middleware"

	"github.com/gofiber/fiber/v2"
)

// POST /games/:id/queue
func (h *PlatformHandler) JoinQueue(c *fiber.Ctx) error {
	userID := middleware.CallerFrom(c).UserID
	m, err := h.Platform.Enqueue(userID, c.Params("id"), h.Platform.GroupSize())
	if err != nil {
		return respondError(c, err)
	}
	if m == nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "waiting"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "matched", "match": m})
}

// DELETE /games/:id/queue
func (h *PlatformHandler) LeaveQueue(c *fiber.Ctx) error {
	if err := h.Platform.LeaveQueue(middleware.CallerFrom(c).UserID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /games/:id/update
func (h *PlatformHandler) ApplyUpdate(c *fiber.Ctx) error {
	res, err := h.Platform.ApplyUpdate(middleware.CallerFrom(c).UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// GET /games/:id/achievements
func (h *PlatformHandler) MyAchievements(c *fiber.Ctx) error {
	list, err := h.Platform.UserAchievements(middleware.CallerFrom(c).UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"achievements": list})
}
