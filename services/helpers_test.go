package services

import (
	"fmt"
	"sync"
	"testing"

	"game-platform/models"

	"github.com/shopspring/decimal"
)

// memRecorder keeps history records in memory.
type memRecorder struct {
	mu      sync.Mutex
	records []models.HistoryRecord
}

func (m *memRecorder) Record(rec models.HistoryRecord) {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
}

func (m *memRecorder) kinds() []models.HistoryKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HistoryKind, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Kind)
	}
	return out
}

func (m *memRecorder) count(kind models.HistoryKind) int {
	n := 0
	for _, k := range m.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func newTestPlatform(t *testing.T) (*Platform, Caller, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	p := NewPlatform(Options{GroupSize: 2, Recorder: rec})
	admin, err := p.Registry().RegisterAdmin("admin", "admin@example.com")
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	return p, Caller{UserID: admin.ID, Admin: true}, rec
}

func mustAdult(t *testing.T, r *Registry, name string) models.User {
	t.Helper()
	u, err := r.RegisterUser(name, name+"@example.com", 30, "")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func mustGame(t *testing.T, r *Registry, name string, platforms ...models.Platform) models.Game {
	t.Helper()
	g, err := r.CreateGame(GameSpec{
		Name:      name,
		Kind:      models.GameKindOnline,
		Price:     decimal.NewFromInt(10),
		Platforms: platforms,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return g
}

// mustOwn funds the user and buys the game.
func mustOwn(t *testing.T, p *Platform, userID, gameID string) {
	t.Helper()
	if _, err := p.Wallet().AddBalance(userID, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("add balance: %v", err)
	}
	if _, err := p.PurchaseGame(userID, gameID); err != nil {
		t.Fatalf("purchase %s: %v", gameID, err)
	}
}

func requireValidation(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("player%02d", i)
	}
	return out
}
