// models/ticket.go
package models

import "time"

type TicketCategory string

const (
	TicketCategoryCredential   TicketCategory = "credential"
	TicketCategoryPayment      TicketCategory = "payment"
	TicketCategoryInstallation TicketCategory = "installation"
	TicketCategoryOther        TicketCategory = "other"
)

func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryCredential, TicketCategoryPayment, TicketCategoryInstallation, TicketCategoryOther:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"       // before handling
	TicketStatusResolved   TicketStatus = "resolved"   // terminal
	TicketStatusEscalated  TicketStatus = "escalated"  // terminal
	TicketStatusUnresolved TicketStatus = "unresolved" // explicit close only
)

// Terminal reports whether the escalation chain is done with the ticket.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusEscalated
}

type SupportTicket struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Category    TicketCategory `json:"category"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	HandledBy   string         `json:"handled_by,omitempty"` // stage that reached the terminal state
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
