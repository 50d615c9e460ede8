// services/patch.go
package services

import (
	"log"
	"strings"
	"time"

	"game-platform/models"

	"golang.org/x/mod/semver"
)

// canonicalVersion maps "1.2.0" and "v1.2.0" to the semver form "v1.2.0".
// Anything that is not semantic versioning is rejected.
func canonicalVersion(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}

// CompareVersions orders two version strings by semantic versioning and
// returns -1, 0 or +1. Invalid versions sort before every valid one.
func CompareVersions(a, b string) int {
	ca, _ := canonicalVersion(a)
	cb, _ := canonicalVersion(b)
	return semver.Compare(ca, cb)
}

// UpdateResult describes what ApplyUpdate did.
type UpdateResult struct {
	GameID  string `json:"game_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Updated bool   `json:"updated"`
}

// PatchService keeps each game's append-only patch ledger and brings
// users' installs up to the published version.
type PatchService struct {
	registry *Registry
}

func NewPatchService(registry *Registry) *PatchService {
	return &PatchService{registry: registry}
}

// Publish appends a patch note. version must be strictly greater than the
// game's current version; the caller is already authorized. Returns the
// ledger length after the append.
func (s *PatchService) Publish(gameID, version, notes string) (int, models.PatchNote, error) {
	const op = "publish patch"
	version = strings.TrimSpace(version)
	if _, ok := canonicalVersion(version); !ok {
		return 0, models.PatchNote{}, invalid(op, "%q is not a semantic version (e.g. 1.1.0)", version)
	}

	var (
		count int
		note  models.PatchNote
	)
	err := s.registry.UpdateGame(gameID, func(g *models.Game) error {
		if CompareVersions(version, g.CurrentVersion) <= 0 {
			return invalid(op, "version %s is not greater than current %s", version, g.CurrentVersion)
		}
		note = models.PatchNote{
			Version:     strings.TrimPrefix(version, "v"),
			Notes:       strings.TrimSpace(notes),
			Sequence:    len(g.Patches) + 1,
			PublishedAt: time.Now(),
		}
		g.Patches = append(g.Patches, note)
		g.CurrentVersion = note.Version
		count = len(g.Patches)
		return nil
	})
	if err != nil {
		return 0, models.PatchNote{}, err
	}
	log.Printf("[PATCH] %s published v%s (%d patches)", gameID, note.Version, count)
	return count, note, nil
}

// List returns a copy of the ledger, oldest first.
func (s *PatchService) List(gameID string) ([]models.PatchNote, error) {
	var out []models.PatchNote
	err := s.registry.ViewGame(gameID, func(g *models.Game) {
		out = make([]models.PatchNote, len(g.Patches))
		copy(out, g.Patches)
	})
	return out, err
}

// ApplyUpdate sets the user's installed version to the game's current one.
// Already current is a no-op; not owning the game is a ValidationError.
func (s *PatchService) ApplyUpdate(userID, gameID string) (UpdateResult, error) {
	const op = "apply update"
	var id, current string
	if err := s.registry.ViewGame(gameID, func(g *models.Game) {
		id, current = g.ID, g.CurrentVersion
	}); err != nil {
		return UpdateResult{}, err
	}

	res := UpdateResult{GameID: id, To: current}
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		owned, ok := u.Library[id]
		if !ok {
			return invalid(op, "you do not own %q", id)
		}
		res.From = owned.InstalledVersion
		if owned.InstalledVersion == current {
			return nil
		}
		owned.InstalledVersion = current
		res.Updated = true
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}
	if res.Updated {
		log.Printf("[PATCH] %s updated %s from v%s to v%s", userID, id, res.From, res.To)
	}
	return res, nil
}
