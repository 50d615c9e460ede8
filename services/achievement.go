// services/achievement.go
package services

import (
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"game-platform/models"
)

// ScoringStrategy turns a raw score into the score compared against
// achievement thresholds.
type ScoringStrategy interface {
	EffectiveScore(raw int64) int64
}

// Passthrough uses the raw score as is.
type Passthrough struct{}

func (Passthrough) EffectiveScore(raw int64) int64 { return raw }

// BonusMultiplier scales the raw score by Factor, rounding down.
type BonusMultiplier struct {
	Factor float64
}

// EffectiveScore saturates at the int64 range instead of wrapping.
func (b BonusMultiplier) EffectiveScore(raw int64) int64 {
	f := math.Floor(float64(raw) * b.Factor)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// StrategyByName resolves "passthrough" or "bonus" (with factor) to a strategy.
func StrategyByName(name string, factor float64) (ScoringStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "passthrough":
		return Passthrough{}, nil
	case "bonus", "multiplier":
		if math.IsNaN(factor) || math.IsInf(factor, 0) {
			return nil, invalid("scoring strategy", "bonus factor must be finite, got %v", factor)
		}
		if factor <= 0 {
			return nil, invalid("scoring strategy", "bonus factor must be positive, got %v", factor)
		}
		return BonusMultiplier{Factor: factor}, nil
	}
	return nil, invalid("scoring strategy", "unknown strategy %q", name)
}

// DefaultStrategy is the game's configured strategy: a bonus multiplier
// when BonusFactor > 1, otherwise pass-through.
func DefaultStrategy(g models.Game) ScoringStrategy {
	if g.BonusFactor > 1 {
		return BonusMultiplier{Factor: g.BonusFactor}
	}
	return Passthrough{}
}

// AchievementService defines achievements on games and evaluates score
// events against them.
type AchievementService struct {
	registry *Registry
}

func NewAchievementService(registry *Registry) *AchievementService {
	return &AchievementService{registry: registry}
}

// Define adds an achievement to a game and returns it as stored. Codes are
// unique per game and a defined achievement is never replaced.
func (s *AchievementService) Define(gameID string, a models.Achievement) (models.Achievement, error) {
	const op = "define achievement"
	a.Code = strings.TrimSpace(a.Code)
	if a.Code == "" {
		return models.Achievement{}, invalid(op, "code is required")
	}
	if a.Threshold < 0 {
		return models.Achievement{}, invalid(op, "threshold cannot be negative")
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		a.Title = a.Code
	}
	err := s.registry.UpdateGame(gameID, func(g *models.Game) error {
		if _, exists := g.Achievements[a.Code]; exists {
			return invalid(op, "achievement %q already defined on %q", a.Code, g.Name)
		}
		g.Achievements[a.Code] = a
		return nil
	})
	if err != nil {
		return models.Achievement{}, err
	}
	return a, nil
}

// Achievements lists a game's achievements by ascending threshold, then code.
func (s *AchievementService) Achievements(gameID string) ([]models.Achievement, error) {
	var defined []models.Achievement
	err := s.registry.ViewGame(gameID, func(g *models.Game) {
		defined = make([]models.Achievement, 0, len(g.Achievements))
		for _, a := range g.Achievements {
			defined = append(defined, a)
		}
	})
	sortByThreshold(defined)
	return defined, err
}

func sortByThreshold(as []models.Achievement) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Threshold != as[j].Threshold {
			return as[i].Threshold < as[j].Threshold
		}
		return as[i].Code < as[j].Code
	})
}

// Evaluate unlocks every achievement of the game whose threshold the
// effective score reaches and the user does not hold yet. It returns only
// the newly unlocked ones; repeated or lower scores return nothing new.
// A nil strategy uses the game's default.
func (s *AchievementService) Evaluate(userID, gameID string, rawScore int64, strategy ScoringStrategy) ([]models.Achievement, error) {
	const op = "evaluate score"
	if rawScore < 0 {
		return nil, invalid(op, "score cannot be negative, got %d", rawScore)
	}
	var game models.Game
	if err := s.registry.ViewGame(gameID, func(g *models.Game) { game = g.Clone() }); err != nil {
		return nil, err
	}
	if strategy == nil {
		strategy = DefaultStrategy(game)
	}
	if len(game.Achievements) == 0 {
		return nil, s.registry.ViewUser(userID, func(*models.User) {})
	}

	candidates := make([]models.Achievement, 0, len(game.Achievements))
	for _, a := range game.Achievements {
		candidates = append(candidates, a)
	}
	sortByThreshold(candidates)
	effective := strategy.EffectiveScore(rawScore)

	var unlocked []models.Achievement
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		now := time.Now()
		for _, a := range candidates {
			if effective < a.Threshold || u.HasUnlocked(game.ID, a.Code) {
				continue
			}
			if u.Unlocked[game.ID] == nil {
				u.Unlocked[game.ID] = make(map[string]time.Time)
			}
			u.Unlocked[game.ID][a.Code] = now
			unlocked = append(unlocked, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, a := range unlocked {
		log.Printf("[ACHIEVEMENT] %s unlocked %s/%s (effective score %d)", userID, game.ID, a.Code, effective)
	}
	return unlocked, nil
}

// AchievementStatus is one row of a user's achievement list for a game.
type AchievementStatus struct {
	models.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

func (s *AchievementService) UserAchievements(userID, gameID string) ([]AchievementStatus, error) {
	defined, err := s.Achievements(gameID)
	if err != nil {
		return nil, err
	}
	id, err := s.registry.GameID(gameID)
	if err != nil {
		return nil, err
	}
	out := make([]AchievementStatus, 0, len(defined))
	err = s.registry.ViewUser(userID, func(u *models.User) {
		for _, a := range defined {
			st := AchievementStatus{Achievement: a}
			if at, ok := u.Unlocked[id][a.Code]; ok {
				st.Unlocked, st.UnlockedAt = true, &at
			}
			out = append(out, st)
		}
	})
	return out, err
}

// RankingEntry is one line of a game's leaderboard.
type RankingEntry struct {
	Position int    `json:"position"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Points   int64  `json:"points"`
}

// AddPoints accumulates ranking points for the user and returns the new total.
func (s *AchievementService) AddPoints(userID, gameID string, points int64) (int64, error) {
	const op = "add points"
	if points < 0 {
		return 0, invalid(op, "points cannot be negative, got %d", points)
	}
	var total int64
	err := s.registry.UpdateGame(gameID, func(g *models.Game) error {
		if g.Scores[userID] > math.MaxInt64-points {
			return invalid(op, "score overflow")
		}
		g.Scores[userID] += points
		total = g.Scores[userID]
		return nil
	})
	return total, err
}

// Ranking orders a game's players by points, highest first, then by name.
func (s *AchievementService) Ranking(gameID string) ([]RankingEntry, error) {
	var scores map[string]int64
	if err := s.registry.ViewGame(gameID, func(g *models.Game) { scores = g.Clone().Scores }); err != nil {
		return nil, err
	}
	out := make([]RankingEntry, 0, len(scores))
	for id, pts := range scores {
		name := id
		if u, err := s.registry.User(id); err == nil {
			name = u.Name
		}
		out = append(out, RankingEntry{UserID: id, Name: name, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}
