// models/match.go
package models

import "time"

// Match is formed when a per-game queue fills a group. Terminal; never mutated.
type Match struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerIDs []string  `json:"player_ids"` // arrival order
	FormedAt  time.Time `json:"formed_at"`
}
