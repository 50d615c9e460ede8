// handlers/catalog.go
package handlers

import (
	"game-platform/models"
	"game-platform/utils"

	"github.com/gofiber/fiber/v2"
)

type gameResponse struct {
	models.Game
	PriceLabel   string `json:"price_label"`
	PatchCount   int    `json:"patch_count"`
	Achievements int    `json:"achievements"`
}

func toGameResponse(g models.Game) gameResponse {
	return gameResponse{
		Game:         g,
		PriceLabel:   utils.FormatCoins(g.Price),
		PatchCount:   len(g.Patches),
		Achievements: len(g.Achievements),
	}
}

// GET /games
func (h *PlatformHandler) ListGames(c *fiber.Ctx) error {
	games := h.Platform.Registry().Games()
	out := make([]gameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, toGameResponse(g))
	}
	return c.JSON(fiber.Map{"games": out})
}

// GET /games/:id
func (h *PlatformHandler) GetGame(c *fiber.Ctx) error {
	g, ok := h.Platform.Registry().FindGame(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}
	return c.JSON(toGameResponse(g))
}

// GET /games/:id/items
func (h *PlatformHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.Platform.Wallet().StoreItems(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// GET /games/:id/patches
func (h *PlatformHandler) ListPatches(c *fiber.Ctx) error {
	patches, err := h.Platform.ListPatches(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"patches": patches, "count": len(patches)})
}

// GET /games/:id/ranking
func (h *PlatformHandler) Ranking(c *fiber.Ctx) error {
	ranking, err := h.Platform.Ranking(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ranking": ranking})
}
