// handlers/routes.go
package handlers

import (
	"context"

	"game-platform/middleware"
	"game-platform/models"
	"game-platform/services"

	"github.com/gofiber/fiber/v2"
)

// HistoryReader serves the admin audit trail.
type HistoryReader interface {
	Recent(ctx context.Context, kind models.HistoryKind, limit int) ([]models.HistoryRecord, error)
}

// PlatformHandler exposes the platform facade over HTTP.
type PlatformHandler struct {
	Platform *services.Platform
	History  HistoryReader // nil → /admin/history returns an empty list
}

func NewPlatformHandler(p *services.Platform, history HistoryReader) *PlatformHandler {
	return &PlatformHandler{Platform: p, History: history}
}

func SetupPlatformRoutes(app *fiber.App, h *PlatformHandler) {
	// 🔓 Public catalog
	app.Get("/games", h.ListGames)
	app.Get("/games/:id", h.GetGame)
	app.Get("/games/:id/items", h.ListItems)
	app.Get("/games/:id/patches", h.ListPatches)
	app.Get("/games/:id/ranking", h.Ranking)
	app.Post("/users", h.RegisterUser)

	// 🔐 Authenticated routes. The user context is attached per route so
	// unmatched paths still fall through to 404.
	userCtx := middleware.UserContextMiddleware(h.Platform)

	app.Get("/me", userCtx, h.Me)
	app.Post("/me/balance", userCtx, h.AddBalance)
	app.Put("/me/platform", userCtx, h.SetPlatform)
	app.Put("/me/preferences", userCtx, h.SetPreferences)
	app.Get("/me/inbox", userCtx, h.Inbox)

	app.Post("/games/:id/purchase", userCtx, h.PurchaseGame)
	app.Post("/games/:id/items/:item/purchase", userCtx, h.PurchaseItem)
	app.Post("/games/:id/queue", userCtx, h.JoinQueue)
	app.Delete("/games/:id/queue", userCtx, h.LeaveQueue)
	app.Post("/games/:id/update", userCtx, h.ApplyUpdate)
	app.Get("/games/:id/achievements", userCtx, h.MyAchievements)

	app.Post("/tickets", userCtx, h.SubmitTicket)
	app.Get("/tickets", userCtx, h.ListTickets)
	app.Post("/tickets/:id/handle", userCtx, h.HandleTicket)

	// 🛡️ Admin only
	admin := app.Group("/admin", userCtx, middleware.RequireAdmin())

	admin.Post("/games", h.CreateGame)
	admin.Post("/games/:id/items", h.AddItem)
	admin.Post("/games/:id/achievements", h.DefineAchievement)
	admin.Post("/games/:id/patches", h.PublishPatch)
	admin.Post("/games/:id/patches/export", h.ExportPatches)
	admin.Post("/games/:id/scores", h.RecordScore)
	admin.Post("/games/:id/evaluate", h.EvaluateScore)
	admin.Get("/users", h.ListUsers)
	admin.Post("/tickets/:id/close", h.CloseTicket)
	admin.Get("/history", h.RecentHistory)
}
