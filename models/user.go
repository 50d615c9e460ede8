// models/user.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdult Role = "adult"
	RoleMinor Role = "minor"
	RoleAdmin Role = "admin"
)

// User is a platform account. Balance, library, unlocks and tickets are
// only mutated through services.Registry closures.
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Age           int             `json:"age"`
	Role          Role            `json:"role"`
	GuardianEmail string          `json:"guardian_email,omitempty"` // minors only
	Balance       decimal.Decimal `json:"balance"`

	PreferredPlatform Platform `json:"preferred_platform,omitempty"` // "" = no preference
	Preferences       []string `json:"preferences"`                  // genre tags, e.g. "RPG"

	// 🎮 Library: game ID → ownership record
	Library map[string]*OwnedGame `json:"library"`

	// 🏆 Unlocks: game ID → achievement code → unlock time
	Unlocked map[string]map[string]time.Time `json:"unlocked"`

	TicketIDs []string `json:"ticket_ids"` // back-references into services.SupportService
	Inbox     []string `json:"inbox"`

	CreatedAt time.Time `json:"created_at"`
}

// OwnedGame is the per-user metadata for a purchased game.
type OwnedGame struct {
	GameID           string    `json:"game_id"`
	InstalledVersion string    `json:"installed_version"`
	AcquiredAt       time.Time `json:"acquired_at"`
}

func NewUser(id, name, email string, age int, role Role) *User {
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Age:       age,
		Role:      role,
		Balance:   decimal.Zero,
		Library:   make(map[string]*OwnedGame),
		Unlocked:  make(map[string]map[string]time.Time),
		CreatedAt: time.Now(),
	}
}

func (u *User) Owns(gameID string) bool {
	_, ok := u.Library[gameID]
	return ok
}

func (u *User) HasUnlocked(gameID, code string) bool {
	_, ok := u.Unlocked[gameID][code]
	return ok
}

// Clone returns a deep copy safe to hand out of a lock.
func (u *User) Clone() User {
	c := *u
	c.Preferences = append([]string(nil), u.Preferences...)
	c.TicketIDs = append([]string(nil), u.TicketIDs...)
	c.Inbox = append([]string(nil), u.Inbox...)
	c.Library = make(map[string]*OwnedGame, len(u.Library))
	for id, og := range u.Library {
		cp := *og
		c.Library[id] = &cp
	}
	c.Unlocked = make(map[string]map[string]time.Time, len(u.Unlocked))
	for gameID, codes := range u.Unlocked {
		m := make(map[string]time.Time, len(codes))
		for code, at := range codes {
			m[code] = at
		}
		c.Unlocked[gameID] = m
	}
	return c
}
