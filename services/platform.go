// services/platform.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"game-platform/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryRecorder receives every committed transition. Implementations must
// not block; workers.HistoryWorker buffers and flushes in the background.
type HistoryRecorder interface {
	Record(rec models.HistoryRecord)
}

type nopRecorder struct{}

func (nopRecorder) Record(models.HistoryRecord) {}

// LedgerUploader stores an exported patch ledger and returns its public URL.
type LedgerUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ErrExportUnavailable is returned by ExportPatches when no uploader is configured.
var ErrExportUnavailable = errors.New("ledger export is not configured")

// Caller is an already authenticated user. Admin is resolved once by
// Platform.Caller; the facade trusts it.
type Caller struct {
	UserID string
	Admin  bool
}

// Options configure a Platform.
type Options struct {
	GroupSize int             // players per match, default 2
	Recorder  HistoryRecorder // default discards
	Chain     *SupportChain   // default basic → advanced → fallback
	Uploader  LedgerUploader  // nil disables ExportPatches
}

// Platform is the single entry point over the core. Build it once with
// NewPlatform at program start and pass it to whoever needs it.
type Platform struct {
	registry     *Registry
	wallet       *WalletService
	matchmaking  *MatchmakingService
	achievements *AchievementService
	patches      *PatchService
	support      *SupportService

	recorder  HistoryRecorder
	uploader  LedgerUploader
	groupSize int
}

func NewPlatform(opts Options) *Platform {
	if opts.GroupSize <= 0 {
		opts.GroupSize = 2
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	registry := NewRegistry()
	return &Platform{
		registry:     registry,
		wallet:       NewWalletService(registry),
		matchmaking:  NewMatchmakingService(registry),
		achievements: NewAchievementService(registry),
		patches:      NewPatchService(registry),
		support:      NewSupportService(registry, opts.Chain),
		recorder:     opts.Recorder,
		uploader:     opts.Uploader,
		groupSize:    opts.GroupSize,
	}
}

func (p *Platform) Registry() *Registry { return p.registry }
func (p *Platform) Wallet() *WalletService { return p.wallet }
func (p *Platform) Matchmaking() *MatchmakingService { return p.matchmaking }
func (p *Platform) Achievements() *AchievementService { return p.achievements }
func (p *Platform) Patches() *PatchService { return p.patches }
func (p *Platform) Support() *SupportService { return p.support }
func (p *Platform) GroupSize() int { return p.groupSize }
func (p *Platform) ExportEnabled() bool { return p.uploader != nil }

// Caller resolves a user ID into a Caller.
func (p *Platform) Caller(userID string) (Caller, error) {
	u, err := p.registry.User(userID)
	if err != nil {
		return Caller{}, err
	}
	return Caller{UserID: u.ID, Admin: u.Role == models.RoleAdmin}, nil
}

func requireAdmin(op string, c Caller) error {
	if !c.Admin {
		return invalid(op, "administrator access required")
	}
	return nil
}

func (p *Platform) record(kind models.HistoryKind, gameID, userID, subject string, detail any) {
	rec := models.HistoryRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		GameID:     gameID,
		UserID:     userID,
		Subject:    subject,
		OccurredAt: time.Now(),
	}
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			log.Printf("[HISTORY] ⚠️ could not encode %s detail: %v", kind, err)
		} else {
			rec.Detail = string(b)
		}
	}
	p.recorder.Record(rec)
}

// --- Accounts and catalog ---

func (p *Platform) RegisterUser(name, email string, age int, guardianEmail string) (models.User, error) {
	u, err := p.registry.RegisterUser(name, email, age, guardianEmail)
	if err != nil {
		return models.User{}, err
	}
	if u.Role == models.RoleMinor {
		if g, ok := p.registry.FindUser(guardianEmail); ok {
			p.registry.Notify(g.ID, fmt.Sprintf("System: %s (%d) registered as your dependent.", u.Name, u.Age))
		}
	}
	return u, nil
}

func (p *Platform) CreateGame(c Caller, in GameSpec) (models.Game, error) {
	if err := requireAdmin("create game", c); err != nil {
		return models.Game{}, err
	}
	return p.registry.CreateGame(in)
}

func (p *Platform) AddStoreItem(c Caller, gameID, item string, price decimal.Decimal) error {
	if err := requireAdmin("add store item", c); err != nil {
		return err
	}
	return p.wallet.AddStoreItem(gameID, item, price)
}

func (p *Platform) DefineAchievement(c Caller, gameID string, a models.Achievement) (models.Achievement, error) {
	if err := requireAdmin("define achievement", c); err != nil {
		return models.Achievement{}, err
	}
	return p.achievements.Define(gameID, a)
}

func (p *Platform) PurchaseGame(userID, gameID string) (models.OwnedGame, error) {
	owned, err := p.wallet.PurchaseGame(userID, gameID)
	if err != nil {
		return models.OwnedGame{}, err
	}
	p.record(models.HistoryGamePurchased, owned.GameID, userID, owned.InstalledVersion, nil)
	return owned, nil
}

// Inbox returns a copy of the user's messages, oldest first.
func (p *Platform) Inbox(userID string) ([]string, error) {
	u, err := p.registry.User(userID)
	return u.Inbox, err
}

// --- Matchmaking ---

// Enqueue puts the user in the game's queue. The user must own the game and
// the game must support the user's platform. A full group is returned as a
// Match and every player is notified.
func (p *Platform) Enqueue(userID, gameID string, groupSize int) (*models.Match, error) {
	id, err := p.registry.GameID(gameID)
	if err != nil {
		return nil, err
	}
	var owns bool
	if err := p.registry.ViewUser(userID, func(u *models.User) { owns = u.Owns(id) }); err != nil {
		return nil, err
	}
	if !owns {
		return nil, invalid("enqueue", "you must own %q to join its queue", id)
	}
	m, err := p.matchmaking.Enqueue(userID, id, groupSize)
	if err != nil || m == nil {
		return nil, err
	}
	for _, player := range m.PlayerIDs {
		p.registry.Notify(player, fmt.Sprintf("System: match %s started in %s.", m.ID, id))
	}
	p.record(models.HistoryMatchFormed, id, "", m.ID, map[string]any{"players": m.PlayerIDs})
	return m, nil
}

// LeaveQueue removes the user from the game's queue if still waiting.
func (p *Platform) LeaveQueue(userID, gameID string) error {
	id, err := p.registry.GameID(gameID)
	if err != nil {
		return err
	}
	p.matchmaking.Leave(userID, id)
	return nil
}

// --- Achievements and scores ---

// EvaluateScore evaluates one score event. A nil strategy uses the game's default.
func (p *Platform) EvaluateScore(userID, gameID string, rawScore int64, strategy ScoringStrategy) ([]models.Achievement, error) {
	unlocked, err := p.achievements.Evaluate(userID, gameID, rawScore, strategy)
	if err != nil {
		return nil, err
	}
	p.announceUnlocks(userID, gameID, unlocked)
	return unlocked, nil
}

func (p *Platform) announceUnlocks(userID, gameID string, unlocked []models.Achievement) {
	if len(unlocked) == 0 {
		return
	}
	id, _ := p.registry.GameID(gameID)
	for _, a := range unlocked {
		p.registry.Notify(userID, fmt.Sprintf("Achievement unlocked in %s: %s", id, a.Title))
		p.record(models.HistoryAchievement, id, userID, a.Code, map[string]any{"threshold": a.Threshold})
	}
}

// RecordScore adds points to the user's ranking total and evaluates the new
// total with the game's default strategy.
func (p *Platform) RecordScore(c Caller, userID, gameID string, points int64) (int64, []models.Achievement, error) {
	const op = "record score"
	if err := requireAdmin(op, c); err != nil {
		return 0, nil, err
	}
	if points < 0 {
		return 0, nil, invalid(op, "points cannot be negative, got %d", points)
	}
	id, err := p.registry.GameID(gameID)
	if err != nil {
		return 0, nil, err
	}
	var owns bool
	if err := p.registry.ViewUser(userID, func(u *models.User) { owns = u.Owns(id) }); err != nil {
		return 0, nil, err
	}
	if !owns {
		return 0, nil, invalid(op, "user does not own %q", id)
	}
	total, err := p.achievements.AddPoints(userID, id, points)
	if err != nil {
		return 0, nil, err
	}
	unlocked, err := p.EvaluateScore(userID, id, total, nil)
	return total, unlocked, err
}

func (p *Platform) Ranking(gameID string) ([]RankingEntry, error) {
	return p.achievements.Ranking(gameID)
}

func (p *Platform) UserAchievements(userID, gameID string) ([]AchievementStatus, error) {
	return p.achievements.UserAchievements(userID, gameID)
}

// --- Patches ---

// PublishPatch appends to the game's ledger and returns its new length.
func (p *Platform) PublishPatch(c Caller, gameID, version, notes string) (int, error) {
	if err := requireAdmin("publish patch", c); err != nil {
		return 0, err
	}
	n, note, err := p.patches.Publish(gameID, version, notes)
	if err != nil {
		return 0, err
	}
	id, _ := p.registry.GameID(gameID)
	p.record(models.HistoryPatchPublished, id, c.UserID, note.Version, map[string]any{"sequence": note.Sequence, "notes": note.Notes})
	return n, nil
}

func (p *Platform) ListPatches(gameID string) ([]models.PatchNote, error) {
	return p.patches.List(gameID)
}

func (p *Platform) ApplyUpdate(userID, gameID string) (UpdateResult, error) {
	res, err := p.patches.ApplyUpdate(userID, gameID)
	if err != nil {
		return UpdateResult{}, err
	}
	if res.Updated {
		p.record(models.HistoryGameUpdated, res.GameID, userID, res.To, map[string]string{"from": res.From})
	}
	return res, nil
}

// ledgerExport is the document written by ExportPatches.
type ledgerExport struct {
	GameID         string             `json:"game_id"`
	Name           string             `json:"name"`
	CurrentVersion string             `json:"current_version"`
	Patches        []models.PatchNote `json:"patches"`
	ExportedAt     time.Time          `json:"exported_at"`
}

// ExportPatches uploads the game's ledger as JSON and returns its URL.
func (p *Platform) ExportPatches(ctx context.Context, c Caller, gameID string) (string, error) {
	if err := requireAdmin("export patches", c); err != nil {
		return "", err
	}
	if p.uploader == nil {
		return "", ErrExportUnavailable
	}
	g, err := p.registry.Game(gameID)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(ledgerExport{
		GameID:         g.ID,
		Name:           g.Name,
		CurrentVersion: g.CurrentVersion,
		Patches:        g.Patches,
		ExportedAt:     time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode ledger: %w", err)
	}
	key := fmt.Sprintf("patches/%s/%s.json", g.ID, g.CurrentVersion)
	url, err := p.uploader.Upload(ctx, key, body, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload ledger: %w", err)
	}
	log.Printf("[PATCH] exported %s ledger to %s", g.ID, url)
	return url, nil
}

// --- Support ---

func (p *Platform) SubmitTicket(userID string, category models.TicketCategory, description string) (models.SupportTicket, error) {
	return p.support.Submit(userID, category, description)
}

// HandleTicket runs the ticket through the escalation chain. Only its owner
// or an administrator may trigger it.
func (p *Platform) HandleTicket(c Caller, ticketID string) (models.SupportTicket, error) {
	t, err := p.support.Ticket(ticketID)
	if err != nil {
		return models.SupportTicket{}, err
	}
	if t.UserID != c.UserID && !c.Admin {
		return models.SupportTicket{}, invalid("handle ticket", "ticket %s is not yours", ticketID)
	}
	t, changed, err := p.support.Handle(ticketID)
	if err != nil || !changed {
		return t, err
	}
	p.registry.Notify(t.UserID, fmt.Sprintf("Support: ticket %s is %s.", t.ID, t.Status))
	p.record(models.HistoryTicketHandled, "", t.UserID, t.ID, map[string]string{
		"status":   string(t.Status),
		"stage":    t.HandledBy,
		"category": string(t.Category),
	})
	return t, nil
}

// CloseTicket closes a ticket without resolution.
func (p *Platform) CloseTicket(c Caller, ticketID string) (models.SupportTicket, error) {
	if err := requireAdmin("close ticket", c); err != nil {
		return models.SupportTicket{}, err
	}
	t, changed, err := p.support.CloseUnresolved(ticketID)
	if err != nil || !changed {
		return t, err
	}
	p.registry.Notify(t.UserID, fmt.Sprintf("Support: ticket %s was closed without resolution.", t.ID))
	p.record(models.HistoryTicketClosed, "", t.UserID, t.ID, nil)
	return t, nil
}

func (p *Platform) Tickets(userID string) ([]models.SupportTicket, error) {
	return p.support.Tickets(userID)
}
