// models/history.go
package models

import "time"

type HistoryKind string

const (
	HistoryMatchFormed    HistoryKind = "match_formed"
	HistoryPatchPublished HistoryKind = "patch_published"
	HistoryAchievement    HistoryKind = "achievement_unlocked"
	HistoryTicketHandled  HistoryKind = "ticket_handled"
	HistoryTicketClosed   HistoryKind = "ticket_closed"
	HistoryGamePurchased  HistoryKind = "game_purchased"
	HistoryGameUpdated    HistoryKind = "game_updated"
)

// HistoryRecord is the audit trail of committed transitions. It is the only
// model written to the database.
type HistoryRecord struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Kind       HistoryKind `gorm:"type:varchar(32);index;not null" json:"kind"`
	GameID     string      `gorm:"index" json:"game_id,omitempty"`
	UserID     string      `gorm:"index" json:"user_id,omitempty"`
	Subject    string      `json:"subject"`                 // match ID, version, ticket ID, achievement code
	Detail     string      `gorm:"type:text" json:"detail"` // JSON, e.g. {"players":["a","b"]}
	OccurredAt time.Time   `gorm:"index;not null" json:"occurred_at"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
