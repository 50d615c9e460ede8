// services/seed.go
package services

import (
	"fmt"
	"log"

	"game-platform/models"

	"github.com/shopspring/decimal"
)

// SeedDemo fills an empty platform with the demo catalog and accounts.
// The admin caller owns the catalog actions.
func SeedDemo(p *Platform, admin Caller) error {
	arena, err := p.CreateGame(admin, GameSpec{
		Name:      "Aventuras_em_POO",
		Kind:      models.GameKindOnline,
		Price:     decimal.NewFromInt(100),
		Platforms: []models.Platform{models.PlatformPC, models.PlatformConsole},
	})
	if err != nil {
		return fmt.Errorf("seed game: %w", err)
	}
	if _, err := p.CreateGame(admin, GameSpec{
		Name:      "Semestre_Rush",
		Kind:      models.GameKindOffline,
		Price:     decimal.NewFromInt(50),
		Platforms: []models.Platform{models.PlatformPC},
	}); err != nil {
		return fmt.Errorf("seed game: %w", err)
	}
	if err := p.AddStoreItem(admin, arena.ID, "Ponto_Extra", decimal.NewFromInt(10)); err != nil {
		return fmt.Errorf("seed item: %w", err)
	}
	for _, a := range []models.Achievement{
		{Code: "P100", Title: "Primeiros Passos", Description: "Score at least 100 points.", Threshold: 100},
		{Code: "P1000", Title: "Veterano", Description: "Score at least 1000 points.", Threshold: 1000},
	} {
		if _, err := p.DefineAchievement(admin, arena.ID, a); err != nil {
			return fmt.Errorf("seed achievement: %w", err)
		}
	}

	luu, err := p.RegisterUser("luu", "luu@ic.com", 30, "")
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	rafael, err := p.RegisterUser("rafael", "rafael@email.com", 12, luu.Email)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if _, err := p.RegisterUser("maria", "maria@email.com", 10, luu.Email); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	if _, err := p.wallet.AddBalance(luu.ID, decimal.NewFromInt(250)); err != nil {
		return fmt.Errorf("seed balance: %w", err)
	}
	if _, err := p.wallet.AddBalance(rafael.ID, decimal.NewFromInt(75)); err != nil {
		return fmt.Errorf("seed balance: %w", err)
	}

	// Historical scores predate ownership, so they skip RecordScore's checks.
	for _, s := range []struct {
		userID string
		points int64
	}{{luu.ID, 2100}, {rafael.ID, 1250}} {
		total, err := p.achievements.AddPoints(s.userID, arena.ID, s.points)
		if err != nil {
			return fmt.Errorf("seed score: %w", err)
		}
		if _, err := p.achievements.Evaluate(s.userID, arena.ID, total, nil); err != nil {
			return fmt.Errorf("seed score: %w", err)
		}
	}

	if _, err := p.wallet.PurchaseGame(luu.ID, arena.ID); err != nil {
		return fmt.Errorf("seed purchase: %w", err)
	}
	log.Printf("🌱 Demo data seeded: %d games, %d users", len(p.registry.Games()), len(p.registry.Users()))
	return nil
}
