package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadEventType string

const (
	EventLeadCreated       LeadEventType = "lead.created"
	EventLeadStatusChanged LeadEventType = "lead.status_changed"
)

// LeadEvent is published after a lead row has been committed.
type LeadEvent struct {
	ID         string        `json:"id"`
	Type       LeadEventType `json:"type"`
	LeadID     int64         `json:"lead_id"`
	Username   string        `json:"username"`
	Source     string        `json:"source,omitempty"`
	FromStatus LeadStatus    `json:"from_status,omitempty"`
	ToStatus   LeadStatus    `json:"to_status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewLeadCreatedEvent(lead *Lead, source string) LeadEvent {
	return LeadEvent{
		ID:         uuid.NewString(),
		Type:       EventLeadCreated,
		LeadID:     lead.ID,
		Username:   lead.Username,
		Source:     source,
		ToStatus:   lead.Status,
		OccurredAt: lead.DateAdded,
	}
}

func NewStatusChangedEvent(lead *Lead, from LeadStatus) LeadEvent {
	return LeadEvent{
		ID:         uuid.NewString(),
		Type:       EventLeadStatusChanged,
		LeadID:     lead.ID,
		Username:   lead.Username,
		FromStatus: from,
		ToStatus:   lead.Status,
		OccurredAt: lead.LastUpdated,
	}
}
