// services/registry.go
package services

import (
	"math"
	"sort"
	"strings"
	"sync"

	"game-platform/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"github.com/shopspring/decimal"
)

// Registry owns the long-lived User and Game aggregates. Each aggregate has
// its own lock; mutations go through UpdateUser/UpdateGame closures, which
// must validate before they write.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]*userEntry
	games    map[string]*gameEntry
	userKeys map[string]string // normalized name or email → user ID
}

type userEntry struct {
	mu   sync.Mutex
	user *models.User
}

type gameEntry struct {
	mu   sync.RWMutex
	game *models.Game
}

func NewRegistry() *Registry {
	return &Registry{
		users:    make(map[string]*userEntry),
		games:    make(map[string]*gameEntry),
		userKeys: make(map[string]string),
	}
}

// normalizeKey folds case and accents so "João" and "joao" collide.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// --- Users ---

// RegisterUser creates an adult or, under 18, a minor account. Minors must
// name an existing adult as guardian.
func (r *Registry) RegisterUser(name, email string, age int, guardianEmail string) (models.User, error) {
	const op = "register user"
	if age <= 0 {
		return models.User{}, invalid(op, "invalid age %d", age)
	}
	role := models.RoleAdult
	if age < 18 {
		role = models.RoleMinor
		guardian, ok := r.FindUser(guardianEmail)
		if !ok || guardian.Role != models.RoleAdult {
			return models.User{}, invalid(op, "guardian %q is not a registered adult", guardianEmail)
		}
	} else {
		guardianEmail = ""
	}
	return r.register(op, name, email, age, role, guardianEmail)
}

func (r *Registry) RegisterAdmin(name, email string) (models.User, error) {
	return r.register("register admin", name, email, 0, models.RoleAdmin, "")
}

func (r *Registry) register(op, name, email string, age int, role models.Role, guardianEmail string) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.User{}, invalid(op, "name and email are required")
	}
	nameKey, emailKey := normalizeKey(name), normalizeKey(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.userKeys[nameKey]; taken {
		return models.User{}, invalid(op, "name %q already exists", name)
	}
	if _, taken := r.userKeys[emailKey]; taken {
		return models.User{}, invalid(op, "email %q already registered", email)
	}

	u := models.NewUser(uuid.NewString(), name, email, age, role)
	u.GuardianEmail = guardianEmail
	r.users[u.ID] = &userEntry{user: u}
	r.userKeys[nameKey] = u.ID
	r.userKeys[emailKey] = u.ID
	return u.Clone(), nil
}

// FindUser looks a user up by ID, name or email.
func (r *Registry) FindUser(key string) (models.User, bool) {
	r.mu.RLock()
	e, ok := r.users[key]
	if !ok {
		if id, found := r.userKeys[normalizeKey(key)]; found {
			e, ok = r.users[id]
		}
	}
	r.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user.Clone(), true
}

func (r *Registry) lookupUser(id string) (*userEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[id]
	return e, ok
}

// User returns a snapshot of the user with the given ID.
func (r *Registry) User(id string) (models.User, error) {
	var out models.User
	err := r.ViewUser(id, func(u *models.User) { out = u.Clone() })
	return out, err
}

// Users returns snapshots of all accounts ordered by name.
func (r *Registry) Users() []models.User {
	r.mu.RLock()
	entries := make([]*userEntry, 0, len(r.users))
	for _, e := range r.users {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]models.User, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.user.Clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateUser runs fn with the user's lock held. fn must not touch state
// before it has finished validating.
func (r *Registry) UpdateUser(id string, fn func(*models.User) error) error {
	e, ok := r.lookupUser(id)
	if !ok {
		return invalid("user", "unknown user %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.user)
}

func (r *Registry) ViewUser(id string, fn func(*models.User)) error {
	return r.UpdateUser(id, func(u *models.User) error {
		fn(u)
		return nil
	})
}

func (r *Registry) IsAdmin(userID string) bool {
	u, err := r.User(userID)
	return err == nil && u.Role == models.RoleAdmin
}

// Notify appends a system message to a user's inbox. Unknown users are ignored.
func (r *Registry) Notify(userID, msg string) {
	_ = r.UpdateUser(userID, func(u *models.User) error {
		u.Inbox = append(u.Inbox, msg)
		return nil
	})
}

// --- Games ---

// GameSpec describes a game to add to the catalog.
type GameSpec struct {
	Name        string
	Kind        models.GameKind
	Price       decimal.Decimal
	Platforms   []models.Platform
	BonusFactor float64
}

func (r *Registry) CreateGame(in GameSpec) (models.Game, error) {
	const op = "create game"
	name := strings.TrimSpace(in.Name)
	id := slug.Make(name)
	if id == "" {
		return models.Game{}, invalid(op, "game name is required")
	}
	if in.Kind != models.GameKindOnline && in.Kind != models.GameKindOffline {
		return models.Game{}, invalid(op, "kind must be %q or %q", models.GameKindOnline, models.GameKindOffline)
	}
	if in.Price.IsNegative() {
		return models.Game{}, invalid(op, "price cannot be negative")
	}
	if in.BonusFactor < 0 || math.IsNaN(in.BonusFactor) || math.IsInf(in.BonusFactor, 0) {
		return models.Game{}, invalid(op, "bonus factor must be a finite non-negative number")
	}
	platforms, err := normalizePlatforms(op, in.Platforms)
	if err != nil {
		return models.Game{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[id]; exists {
		return models.Game{}, invalid(op, "game %q already exists", name)
	}
	g := models.NewGame(id, name, in.Kind, in.Price, platforms)
	g.BonusFactor = in.BonusFactor
	r.games[id] = &gameEntry{game: g}
	return g.Clone(), nil
}

func normalizePlatforms(op string, in []models.Platform) ([]models.Platform, error) {
	if len(in) == 0 {
		return []models.Platform{models.PlatformPC}, nil
	}
	seen := make(map[models.Platform]bool, len(in))
	out := make([]models.Platform, 0, len(in))
	for _, p := range in {
		if !p.Valid() {
			return nil, invalid(op, "unknown platform %q", p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *Registry) lookupGame(idOrName string) (*gameEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.games[idOrName]; ok {
		return e, true
	}
	e, ok := r.games[slug.Make(idOrName)]
	return e, ok
}

// GameID resolves a game ID or display name to the canonical ID.
func (r *Registry) GameID(idOrName string) (string, error) {
	e, ok := r.lookupGame(idOrName)
	if !ok {
		return "", invalid("game", "unknown game %q", idOrName)
	}
	return e.game.ID, nil // ID is immutable after creation
}

// FindGame looks a game up by ID or display name.
func (r *Registry) FindGame(idOrName string) (models.Game, bool) {
	g, err := r.Game(idOrName)
	return g, err == nil
}

func (r *Registry) Game(idOrName string) (models.Game, error) {
	var out models.Game
	err := r.ViewGame(idOrName, func(g *models.Game) { out = g.Clone() })
	return out, err
}

func (r *Registry) Games() []models.Game {
	r.mu.RLock()
	entries := make([]*gameEntry, 0, len(r.games))
	for _, e := range r.games {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]models.Game, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.game.Clone())
		e.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateGame runs fn with the game's write lock held.
func (r *Registry) UpdateGame(idOrName string, fn func(*models.Game) error) error {
	e, ok := r.lookupGame(idOrName)
	if !ok {
		return invalid("game", "unknown game %q", idOrName)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}

func (r *Registry) ViewGame(idOrName string, fn func(*models.Game)) error {
	e, ok := r.lookupGame(idOrName)
	if !ok {
		return invalid("game", "unknown game %q", idOrName)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.game)
	return nil
}

// IsPlatformCompatible is true when the user has no preferred platform or
// the game supports it.
func (r *Registry) IsPlatformCompatible(userID, gameID string) (bool, error) {
	var pref models.Platform
	if err := r.ViewUser(userID, func(u *models.User) { pref = u.PreferredPlatform }); err != nil {
		return false, err
	}
	var ok bool
	err := r.ViewGame(gameID, func(g *models.Game) { ok = pref == "" || g.Supports(pref) })
	return ok, err
}
