// models/game.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameKind string

const (
	GameKindOnline  GameKind = "online"
	GameKindOffline GameKind = "offline"
)

type Platform string

const (
	PlatformPC      Platform = "PC"
	PlatformMobile  Platform = "Mobile"
	PlatformConsole Platform = "Console"
)

// AllowedPlatforms is the fixed platform enum.
var AllowedPlatforms = []Platform{PlatformConsole, PlatformMobile, PlatformPC}

func (p Platform) Valid() bool {
	for _, a := range AllowedPlatforms {
		if p == a {
			return true
		}
	}
	return false
}

// InitialVersion is the version every game starts at before any patch.
const InitialVersion = "1.0.0"

type Game struct {
	ID        string          `json:"id"` // slug of Name
	Name      string          `json:"name"`
	Kind      GameKind        `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Platforms []Platform      `json:"platforms"` // sorted, unique

	// 🎛️ Versioning
	CurrentVersion string      `json:"current_version"`
	Patches        []PatchNote `json:"-"` // append-only; read through services.PatchService

	// 🏆 Defined achievements, keyed by code
	Achievements map[string]Achievement `json:"-"`

	// BonusFactor > 1 selects the bonus-multiplier scoring strategy by default.
	BonusFactor float64 `json:"bonus_factor,omitempty"`

	// Scores accumulates ranking points per user ID.
	Scores map[string]int64 `json:"-"`

	store map[string]decimal.Decimal // item name → price, private

	CreatedAt time.Time `json:"created_at"`
}

// Achievement is defined once on a game and never mutated.
type Achievement struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int64  `json:"threshold"` // effective score needed to unlock
}

// PatchNote is an immutable ledger entry. Sequence is the logical
// timestamp, strictly increasing per game.
type PatchNote struct {
	Version     string    `json:"version"`
	Notes       string    `json:"notes"`
	Sequence    int       `json:"sequence"`
	PublishedAt time.Time `json:"published_at"`
}

func NewGame(id, name string, kind GameKind, price decimal.Decimal, platforms []Platform) *Game {
	return &Game{
		ID:             id,
		Name:           name,
		Kind:           kind,
		Price:          price,
		Platforms:      platforms,
		CurrentVersion: InitialVersion,
		Achievements:   make(map[string]Achievement),
		Scores:         make(map[string]int64),
		store:          make(map[string]decimal.Decimal),
		CreatedAt:      time.Now(),
	}
}

func (g *Game) Supports(p Platform) bool {
	for _, gp := range g.Platforms {
		if gp == p {
			return true
		}
	}
	return false
}

func (g *Game) SetItemPrice(item string, price decimal.Decimal) {
	if g.store == nil {
		g.store = make(map[string]decimal.Decimal)
	}
	g.store[item] = price
}

func (g *Game) ItemPrice(item string) (decimal.Decimal, bool) {
	p, ok := g.store[item]
	return p, ok
}

// Items returns a copy of the store; callers cannot reach the private map.
func (g *Game) Items() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(g.store))
	for k, v := range g.store {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy safe to hand out of a lock.
func (g *Game) Clone() Game {
	c := *g
	c.Platforms = append([]Platform(nil), g.Platforms...)
	c.Patches = append([]PatchNote(nil), g.Patches...)
	c.Achievements = make(map[string]Achievement, len(g.Achievements))
	for k, v := range g.Achievements {
		c.Achievements[k] = v
	}
	c.Scores = make(map[string]int64, len(g.Scores))
	for k, v := range g.Scores {
		c.Scores[k] = v
	}
	c.store = g.Items()
	return c
}
