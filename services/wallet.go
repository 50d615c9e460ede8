// services/wallet.go
package services

import (
	"log"
	"strings"
	"time"

	"game-platform/models"

	"github.com/shopspring/decimal"
)

// WalletService is the balance/store collaborator: top-ups, simple debits
// and purchases. Prices and balances are decimals, never floats.
type WalletService struct {
	registry *Registry
}

func NewWalletService(registry *Registry) *WalletService {
	return &WalletService{registry: registry}
}

func (s *WalletService) Balance(userID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.registry.ViewUser(userID, func(u *models.User) { bal = u.Balance })
	return bal, err
}

func (s *WalletService) AddBalance(userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	const op = "add balance"
	if !amount.IsPositive() {
		return decimal.Zero, invalid(op, "amount must be positive")
	}
	var bal decimal.Decimal
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		u.Balance = u.Balance.Add(amount)
		bal = u.Balance
		return nil
	})
	return bal, err
}

// Debit removes amount from the balance. The balance never goes negative.
func (s *WalletService) Debit(userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		if err := checkDebit("debit", u, amount); err != nil {
			return err
		}
		u.Balance = u.Balance.Sub(amount)
		bal = u.Balance
		return nil
	})
	return bal, err
}

func checkDebit(op string, u *models.User, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return invalid(op, "amount cannot be negative")
	}
	if u.Balance.LessThan(amount) {
		return invalid(op, "insufficient balance")
	}
	return nil
}

// PurchaseGame debits the price and adds the game to the user's library at
// the game's current version.
func (s *WalletService) PurchaseGame(userID, gameID string) (models.OwnedGame, error) {
	const op = "purchase game"
	var game models.Game
	if err := s.registry.ViewGame(gameID, func(g *models.Game) { game = g.Clone() }); err != nil {
		return models.OwnedGame{}, err
	}

	var owned models.OwnedGame
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		if u.Owns(game.ID) {
			return invalid(op, "you already own %q", game.Name)
		}
		if u.PreferredPlatform != "" && !game.Supports(u.PreferredPlatform) {
			return invalid(op, "%q is not available on %s", game.Name, u.PreferredPlatform)
		}
		if err := checkDebit(op, u, game.Price); err != nil {
			return err
		}
		u.Balance = u.Balance.Sub(game.Price)
		rec := &models.OwnedGame{
			GameID:           game.ID,
			InstalledVersion: game.CurrentVersion,
			AcquiredAt:       time.Now(),
		}
		u.Library[game.ID] = rec
		owned = *rec
		return nil
	})
	if err != nil {
		return models.OwnedGame{}, err
	}
	log.Printf("[WALLET] %s bought %s for %s", userID, game.ID, game.Price.StringFixed(2))
	return owned, nil
}

func (s *WalletService) AddStoreItem(gameID, item string, price decimal.Decimal) error {
	const op = "add store item"
	item = strings.TrimSpace(item)
	if item == "" {
		return invalid(op, "item name is required")
	}
	if price.IsNegative() {
		return invalid(op, "price cannot be negative")
	}
	return s.registry.UpdateGame(gameID, func(g *models.Game) error {
		g.SetItemPrice(item, price)
		return nil
	})
}

// StoreItems returns a copy of the game's store.
func (s *WalletService) StoreItems(gameID string) (map[string]decimal.Decimal, error) {
	var items map[string]decimal.Decimal
	err := s.registry.ViewGame(gameID, func(g *models.Game) { items = g.Items() })
	return items, err
}

func (s *WalletService) PurchaseItem(userID, gameID, item string) (decimal.Decimal, error) {
	const op = "purchase item"
	var (
		id    string
		price decimal.Decimal
		found bool
	)
	if err := s.registry.ViewGame(gameID, func(g *models.Game) {
		id = g.ID
		price, found = g.ItemPrice(item)
	}); err != nil {
		return decimal.Zero, err
	}

	var bal decimal.Decimal
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		if !u.Owns(id) {
			return invalid(op, "you must own %q to buy items in it", id)
		}
		if !found {
			return invalid(op, "item %q not found", item)
		}
		if err := checkDebit(op, u, price); err != nil {
			return err
		}
		u.Balance = u.Balance.Sub(price)
		bal = u.Balance
		return nil
	})
	return bal, err
}

func (s *WalletService) SetPreferredPlatform(userID string, p models.Platform) error {
	if p != "" && !p.Valid() {
		return invalid("set platform", "unknown platform %q", p)
	}
	return s.registry.UpdateUser(userID, func(u *models.User) error {
		u.PreferredPlatform = p
		return nil
	})
}

// SetPreferences replaces the user's genre tags from a comma separated list.
func (s *WalletService) SetPreferences(userID, raw string) ([]string, error) {
	var prefs []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		u.Preferences = prefs
		return nil
	})
	return append([]string(nil), prefs...), err
}
