// services/support.go
package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"game-platform/models"

	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
)

// SupportHandler is one stage of the escalation chain. Handle either moves
// the ticket to a terminal state and returns true, or leaves it untouched and
// returns false so the chain moves on.
type SupportHandler interface {
	Name() string
	Handle(t *models.SupportTicket) bool
}

// stageCounter counts the tickets a stage has taken.
type stageCounter struct {
	mu      sync.Mutex
	handled int
}

func (c *stageCounter) inc() {
	c.mu.Lock()
	c.handled++
	c.mu.Unlock()
}

// Handled is the number of tickets this stage brought to a terminal state.
func (c *stageCounter) Handled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handled
}

// competentStage resolves tickets whose category is in its set.
type competentStage struct {
	stageCounter
	name       string
	categories map[models.TicketCategory]bool
}

func (s *competentStage) Name() string { return s.name }

func (s *competentStage) Handle(t *models.SupportTicket) bool {
	if !s.categories[t.Category] {
		return false
	}
	t.Status = models.TicketStatusResolved
	s.inc()
	return true
}

// BasicSupport resolves credential problems.
type BasicSupport struct{ competentStage }

func NewBasicSupport() *BasicSupport {
	return &BasicSupport{competentStage{
		name:       "basic",
		categories: map[models.TicketCategory]bool{models.TicketCategoryCredential: true},
	}}
}

// AdvancedSupport resolves payment and installation problems.
type AdvancedSupport struct{ competentStage }

func NewAdvancedSupport() *AdvancedSupport {
	return &AdvancedSupport{competentStage{
		name: "advanced",
		categories: map[models.TicketCategory]bool{
			models.TicketCategoryPayment:      true,
			models.TicketCategoryInstallation: true,
		},
	}}
}

// FallbackSupport escalates whatever reaches it.
type FallbackSupport struct{ stageCounter }

func NewFallbackSupport() *FallbackSupport { return &FallbackSupport{} }

func (*FallbackSupport) Name() string { return "fallback" }

func (f *FallbackSupport) Handle(t *models.SupportTicket) bool {
	t.Status = models.TicketStatusEscalated
	f.inc()
	return true
}

// SupportChain walks its stages in order; the first stage that takes the
// ticket wins.
type SupportChain struct {
	stages []SupportHandler
}

// NewSupportChain fixes the stage order once. A FallbackSupport is appended
// when the last stage is not one, so every ticket ends in a terminal state.
func NewSupportChain(stages ...SupportHandler) *SupportChain {
	out := append([]SupportHandler(nil), stages...)
	if len(out) == 0 {
		out = append(out, NewFallbackSupport())
	} else if _, ok := out[len(out)-1].(*FallbackSupport); !ok {
		out = append(out, NewFallbackSupport())
	}
	return &SupportChain{stages: out}
}

// DefaultSupportChain is basic → advanced → fallback.
func DefaultSupportChain() *SupportChain {
	return NewSupportChain(NewBasicSupport(), NewAdvancedSupport(), NewFallbackSupport())
}

// Stages returns the stage order.
func (c *SupportChain) Stages() []SupportHandler {
	return append([]SupportHandler(nil), c.stages...)
}

// Process runs an open ticket through the chain and returns the name of the
// stage that took it.
func (c *SupportChain) Process(t *models.SupportTicket) string {
	for _, stage := range c.stages {
		if stage.Handle(t) {
			if !t.Status.Terminal() {
				panic(fmt.Sprintf("support: stage %s left ticket %s in %s", stage.Name(), t.ID, t.Status))
			}
			return stage.Name()
		}
	}
	panic(fmt.Sprintf("support: no stage took ticket %s", t.ID))
}

// ticketKeywords drives category detection when a user does not pick one.
// Checked in order; the first match wins.
var ticketKeywords = []struct {
	category models.TicketCategory
	words    []string
}{
	{models.TicketCategoryCredential, []string{"password", "senha", "login", "credential", "account locked"}},
	{models.TicketCategoryPayment, []string{"payment", "pagamento", "refund", "reembolso", "charge", "coin"}},
	{models.TicketCategoryInstallation, []string{"install", "instal", "download", "update", "crash"}},
}

// ClassifyTicket guesses a category from free text.
func ClassifyTicket(description string) models.TicketCategory {
	text := strings.ToLower(unidecode.Unidecode(description))
	for _, k := range ticketKeywords {
		for _, w := range k.words {
			if strings.Contains(text, w) {
				return k.category
			}
		}
	}
	return models.TicketCategoryOther
}

// SupportService owns tickets and routes them through a fixed chain.
type SupportService struct {
	registry *Registry
	chain    *SupportChain

	mu      sync.RWMutex
	tickets map[string]*models.SupportTicket
}

func NewSupportService(registry *Registry, chain *SupportChain) *SupportService {
	if chain == nil {
		chain = DefaultSupportChain()
	}
	return &SupportService{
		registry: registry,
		chain:    chain,
		tickets:  make(map[string]*models.SupportTicket),
	}
}

// Submit opens a ticket for the user. An empty category is classified from
// the description.
func (s *SupportService) Submit(userID string, category models.TicketCategory, description string) (models.SupportTicket, error) {
	const op = "submit ticket"
	description = strings.TrimSpace(description)
	if description == "" {
		return models.SupportTicket{}, invalid(op, "description is required")
	}
	if category == "" {
		category = ClassifyTicket(description)
	} else if !category.Valid() {
		return models.SupportTicket{}, invalid(op, "unknown category %q", category)
	}

	now := time.Now()
	t := &models.SupportTicket{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    category,
		Description: description,
		Status:      models.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.registry.UpdateUser(userID, func(u *models.User) error {
		u.TicketIDs = append(u.TicketIDs, t.ID)
		return nil
	})
	if err != nil {
		return models.SupportTicket{}, err
	}

	s.mu.Lock()
	s.tickets[t.ID] = t
	s.mu.Unlock()
	log.Printf("[SUPPORT] ticket %s opened by %s (%s)", t.ID, userID, category)
	return *t, nil
}

func (s *SupportService) lookup(ticketID string) (*models.SupportTicket, error) {
	s.mu.RLock()
	t, ok := s.tickets[ticketID]
	s.mu.RUnlock()
	if !ok {
		return nil, invalid("ticket", "unknown ticket %q", ticketID)
	}
	return t, nil
}

// Handle runs the ticket through the chain. Tickets already resolved or
// escalated are returned unchanged. changed reports whether this call moved
// the ticket.
func (s *SupportService) Handle(ticketID string) (ticket models.SupportTicket, changed bool, err error) {
	t, err := s.lookup(ticketID)
	if err != nil {
		return models.SupportTicket{}, false, err
	}
	// Tickets are part of the owner's ticket set; the owner's lock serializes them.
	err = s.registry.UpdateUser(t.UserID, func(*models.User) error {
		if t.Status != models.TicketStatusOpen {
			ticket = *t
			return nil
		}
		t.HandledBy = s.chain.Process(t)
		t.UpdatedAt = time.Now()
		ticket, changed = *t, true
		return nil
	})
	if err != nil {
		return models.SupportTicket{}, false, err
	}
	if changed {
		log.Printf("[SUPPORT] ticket %s %s by %s stage", ticket.ID, ticket.Status, ticket.HandledBy)
	}
	return ticket, changed, nil
}

// CloseUnresolved closes an open or escalated ticket without a resolution.
// Resolved tickets cannot be closed this way; closing twice is a no-op.
func (s *SupportService) CloseUnresolved(ticketID string) (ticket models.SupportTicket, changed bool, err error) {
	const op = "close ticket"
	t, err := s.lookup(ticketID)
	if err != nil {
		return models.SupportTicket{}, false, err
	}
	err = s.registry.UpdateUser(t.UserID, func(*models.User) error {
		switch t.Status {
		case models.TicketStatusResolved:
			return invalid(op, "ticket %s is already resolved", t.ID)
		case models.TicketStatusUnresolved:
			ticket = *t
			return nil
		}
		t.Status = models.TicketStatusUnresolved
		t.UpdatedAt = time.Now()
		ticket, changed = *t, true
		return nil
	})
	if err != nil {
		return models.SupportTicket{}, false, err
	}
	if changed {
		log.Printf("[SUPPORT] ticket %s closed unresolved", ticket.ID)
	}
	return ticket, changed, nil
}

func (s *SupportService) Ticket(ticketID string) (models.SupportTicket, error) {
	t, err := s.lookup(ticketID)
	if err != nil {
		return models.SupportTicket{}, err
	}
	var out models.SupportTicket
	err = s.registry.ViewUser(t.UserID, func(*models.User) { out = *t })
	return out, err
}

// Tickets lists the user's tickets in submission order.
func (s *SupportService) Tickets(userID string) ([]models.SupportTicket, error) {
	u, err := s.registry.User(userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SupportTicket, 0, len(u.TicketIDs))
	for _, id := range u.TicketIDs {
		t, err := s.Ticket(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
