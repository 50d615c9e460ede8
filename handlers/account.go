// handlers/account.go
package handlers

import (
	"game-platform/middleware"
	"game-platform/models"
	"game-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type userResponse struct {
	models.User
	BalanceLabel string `json:"balance_label"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{User: u, BalanceLabel: utils.FormatCoins(u.Balance)}
}

// POST /users
func (h *PlatformHandler) RegisterUser(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Age           int    `json:"age"`
		GuardianEmail string `json:"guardian_email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, err := h.Platform.RegisterUser(req.Name, req.Email, req.Age, req.GuardianEmail)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(u))
}

// GET /me
func (h *PlatformHandler) Me(c *fiber.Ctx) error {
	u, err := h.Platform.Registry().User(middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(u))
}

// POST /me/balance
func (h *PlatformHandler) AddBalance(c *fiber.Ctx) error {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	bal, err := h.Platform.Wallet().AddBalance(middleware.CallerFrom(c).UserID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"balance": bal, "balance_label": utils.FormatCoins(bal)})
}

// PUT /me/platform
func (h *PlatformHandler) SetPlatform(c *fiber.Ctx) error {
	var req struct {
		Platform models.Platform `json:"platform"` // "" clears the preference
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.Platform.Wallet().SetPreferredPlatform(middleware.CallerFrom(c).UserID, req.Platform); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"preferred_platform": req.Platform})
}

// PUT /me/preferences
func (h *PlatformHandler) SetPreferences(c *fiber.Ctx) error {
	var req struct {
		Preferences string `json:"preferences"` // "RPG, Adventure"
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	prefs, err := h.Platform.Wallet().SetPreferences(middleware.CallerFrom(c).UserID, req.Preferences)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"preferences": prefs})
}

// GET /me/inbox
func (h *PlatformHandler) Inbox(c *fiber.Ctx) error {
	msgs, err := h.Platform.Inbox(middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// POST /games/:id/purchase
func (h *PlatformHandler) PurchaseGame(c *fiber.Ctx) error {
	owned, err := h.Platform.PurchaseGame(middleware.CallerFrom(c).UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(owned)
}

// POST /games/:id/items/:item/purchase
func (h *PlatformHandler) PurchaseItem(c *fiber.Ctx) error {
	bal, err := h.Platform.Wallet().PurchaseItem(middleware.CallerFrom(c).UserID, c.Params("id"), c.Params("item"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"item": c.Params("item"), "balance": bal, "balance_label": utils.FormatCoins(bal)})
}
