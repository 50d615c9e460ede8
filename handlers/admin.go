// handlers/admin.go
package handlers

import (
	"game-platform/middleware"
	"game-platform/models"
	"game-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// POST /admin/games
func (h *PlatformHandler) CreateGame(c *fiber.Ctx) error {
	var req struct {
		Name        string            `json:"name"`
		Kind        models.GameKind   `json:"kind"`
		Price       decimal.Decimal   `json:"price"`
		Platforms   []models.Platform `json:"platforms"`
		BonusFactor float64           `json:"bonus_factor"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	g, err := h.Platform.CreateGame(middleware.CallerFrom(c), services.GameSpec{
		Name:        req.Name,
		Kind:        req.Kind,
		Price:       req.Price,
		Platforms:   req.Platforms,
		BonusFactor: req.BonusFactor,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toGameResponse(g))
}

// POST /admin/games/:id/items
func (h *PlatformHandler) AddItem(c *fiber.Ctx) error {
	var req struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.Platform.AddStoreItem(middleware.CallerFrom(c), c.Params("id"), req.Name, req.Price); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": req.Name, "price": req.Price})
}

// POST /admin/games/:id/achievements
func (h *PlatformHandler) DefineAchievement(c *fiber.Ctx) error {
	var a models.Achievement
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "invalid request body")
	}
	stored, err := h.Platform.DefineAchievement(middleware.CallerFrom(c), c.Params("id"), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stored)
}

// POST /admin/games/:id/patches
func (h *PlatformHandler) PublishPatch(c *fiber.Ctx) error {
	var req struct {
		Version string `json:"version"`
		Notes   string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	n, err := h.Platform.PublishPatch(middleware.CallerFrom(c), c.Params("id"), req.Version, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"version": req.Version, "patch_count": n})
}

// POST /admin/games/:id/patches/export
func (h *PlatformHandler) ExportPatches(c *fiber.Ctx) error {
	url, err := h.Platform.ExportPatches(c.UserContext(), middleware.CallerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// POST /admin/games/:id/scores
func (h *PlatformHandler) RecordScore(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"` // ID, name or email
		Points int64  `json:"points"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, ok := h.Platform.Registry().FindUser(req.UserID)
	if !ok {
		return badRequest(c, "unknown user")
	}
	total, unlocked, err := h.Platform.RecordScore(middleware.CallerFrom(c), u.ID, c.Params("id"), req.Points)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": total, "unlocked": unlocked})
}

// POST /admin/games/:id/evaluate
func (h *PlatformHandler) EvaluateScore(c *fiber.Ctx) error {
	var req struct {
		UserID   string  `json:"user_id"`
		Score    int64   `json:"score"`
		Strategy string  `json:"strategy"` // "", "passthrough", "bonus"
		Factor   float64 `json:"factor"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, ok := h.Platform.Registry().FindUser(req.UserID)
	if !ok {
		return badRequest(c, "unknown user")
	}
	var strategy services.ScoringStrategy
	if req.Strategy != "" {
		s, err := services.StrategyByName(req.Strategy, req.Factor)
		if err != nil {
			return respondError(c, err)
		}
		strategy = s
	}
	unlocked, err := h.Platform.EvaluateScore(u.ID, c.Params("id"), req.Score, strategy)
	if err != nil {
		return respondError(c, err)
	}
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	return c.JSON(fiber.Map{"unlocked": unlocked})
}

// GET /admin/users
func (h *PlatformHandler) ListUsers(c *fiber.Ctx) error {
	users := h.Platform.Registry().Users()
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(fiber.Map{"users": out})
}

// POST /admin/tickets/:id/close
func (h *PlatformHandler) CloseTicket(c *fiber.Ctx) error {
	t, err := h.Platform.CloseTicket(middleware.CallerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

// GET /admin/history?kind=match_formed&limit=20
func (h *PlatformHandler) RecentHistory(c *fiber.Ctx) error {
	if h.History == nil {
		return c.JSON(fiber.Map{"records": []models.HistoryRecord{}})
	}
	records, err := h.History.Recent(c.UserContext(), models.HistoryKind(c.Query("kind")), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"records": records})
}
