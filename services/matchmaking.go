// services/matchmaking.go
package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"game-platform/models"

	"github.com/google/uuid"
)

// CompatibilityChecker answers "can this user play this game on their
// platform" and resolves a game ID or display name to its canonical ID.
type CompatibilityChecker interface {
	IsPlatformCompatible(userID, gameID string) (bool, error)
	GameID(idOrName string) (string, error)
}

// MatchmakingService keeps one FIFO queue per game and forms a match the
// moment a queue holds a full group.
type MatchmakingService struct {
	compat CompatibilityChecker

	mu     sync.Mutex
	queues map[string]*gameQueue
}

type gameQueue struct {
	mu      sync.Mutex
	waiting []string // user IDs in arrival order
}

func NewMatchmakingService(compat CompatibilityChecker) *MatchmakingService {
	return &MatchmakingService{
		compat: compat,
		queues: make(map[string]*gameQueue),
	}
}

func (s *MatchmakingService) queue(gameID string) *gameQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[gameID]
	if !ok {
		q = &gameQueue{}
		s.queues[gameID] = q
	}
	return q
}

// existing returns the queue for a known game without creating one.
func (s *MatchmakingService) existing(idOrName string) (*gameQueue, string, bool) {
	gameID, err := s.compat.GameID(idOrName)
	if err != nil {
		return nil, "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[gameID]
	return q, gameID, ok
}

func (q *gameQueue) index(userID string) int {
	for i, id := range q.waiting {
		if id == userID {
			return i
		}
	}
	return -1
}

// Enqueue appends the user to the game's queue. When the queue reaches
// groupSize the oldest groupSize users are removed together and returned as
// a Match; otherwise the returned match is nil.
func (s *MatchmakingService) Enqueue(userID, idOrName string, groupSize int) (*models.Match, error) {
	const op = "enqueue"
	if groupSize <= 0 {
		return nil, invalid(op, "group size must be positive, got %d", groupSize)
	}
	gameID, err := s.compat.GameID(idOrName)
	if err != nil {
		return nil, err
	}
	ok, err := s.compat.IsPlatformCompatible(userID, gameID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid(op, "game %q is not compatible with your platform", gameID)
	}

	q := s.queue(gameID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index(userID) >= 0 {
		return nil, invalid(op, "already waiting in the %q queue", gameID)
	}
	q.waiting = append(q.waiting, userID)
	log.Printf("[MATCHMAKING] %s joined %s queue (%d/%d)", userID, gameID, len(q.waiting), groupSize)

	if len(q.waiting) < groupSize {
		return nil, nil
	}

	players := make([]string, groupSize)
	copy(players, q.waiting[:groupSize])
	q.waiting = append([]string(nil), q.waiting[groupSize:]...)

	if len(players) != groupSize {
		panic(fmt.Sprintf("matchmaking: formed match of %d players, want %d", len(players), groupSize))
	}
	match := &models.Match{
		ID:        uuid.NewString(),
		GameID:    gameID,
		PlayerIDs: players,
		FormedAt:  time.Now(),
	}
	log.Printf("[MATCHMAKING] match %s formed in %s: %v", match.ID, gameID, players)
	return match, nil
}

// Leave removes a waiting user. Unknown users are a no-op.
func (s *MatchmakingService) Leave(userID, idOrName string) {
	q, gameID, ok := s.existing(idOrName)
	if !ok {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if i := q.index(userID); i >= 0 {
		q.waiting = append(q.waiting[:i:i], q.waiting[i+1:]...)
		log.Printf("[MATCHMAKING] %s left %s queue", userID, gameID)
	}
}

// Waiting returns a copy of the game's queue in arrival order.
func (s *MatchmakingService) Waiting(idOrName string) []string {
	q, _, ok := s.existing(idOrName)
	if !ok {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.waiting...)
}

// IsWaiting reports whether the user is currently queued for the game.
func (s *MatchmakingService) IsWaiting(userID, idOrName string) bool {
	q, _, ok := s.existing(idOrName)
	if !ok {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index(userID) >= 0
}
