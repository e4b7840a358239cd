package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

var (
	ErrLeadNotFound      = eris.New("lead not found")
	ErrInvalidTransition = eris.New("invalid status transition")
)

// TransitionError matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	LeadID int64
	From   LeadStatus
	To     LeadStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lead %d cannot move from %s to %s", e.LeadID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type LeadStatus string

const (
	StatusWarmLead    LeadStatus = "warm_lead"
	StatusMessageSent LeadStatus = "message_sent"
	StatusSaleClosed  LeadStatus = "sale_closed"
)

// allowedTransitions lists, per target status, the statuses a lead may move from.
// Forward steps plus a single step back for operator corrections.
var allowedTransitions = map[LeadStatus][]LeadStatus{
	StatusWarmLead:    {StatusMessageSent},
	StatusMessageSent: {StatusWarmLead, StatusSaleClosed},
	StatusSaleClosed:  {StatusMessageSent},
}

func AllStatuses() []LeadStatus {
	return []LeadStatus{StatusWarmLead, StatusMessageSent, StatusSaleClosed}
}

func ParseLeadStatus(s string) (LeadStatus, bool) {
	switch LeadStatus(s) {
	case StatusWarmLead, StatusMessageSent, StatusSaleClosed:
		return LeadStatus(s), true
	}
	return "", false
}

func (s LeadStatus) String() string {
	return string(s)
}

// AllowedSources returns the statuses from which a lead may move to s.
func AllowedSources(to LeadStatus) []LeadStatus {
	src := allowedTransitions[to]
	out := make([]LeadStatus, len(src))
	copy(out, src)
	return out
}

func CanTransition(from, to LeadStatus) bool {
	for _, s := range allowedTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// CountsAsMessage reports whether moving into s records an outreach message.
func (s LeadStatus) CountsAsMessage() bool {
	return s == StatusMessageSent
}

type Lead struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	InstagramID   string     `json:"instagramId,omitempty"`
	FullName      string     `json:"fullName,omitempty"`
	ProfileURL    string     `json:"profileUrl,omitempty"`
	ProfilePicURL string     `json:"profilePicUrl,omitempty"`
	IsVerified    bool       `json:"isVerified"`
	Bio           string     `json:"bio,omitempty"`
	Followers     int        `json:"followersCount"`
	Following     int        `json:"followingCount"`
	Status        LeadStatus `json:"status"`
	DateAdded     time.Time  `json:"dateAdded"`
	LastUpdated   time.Time  `json:"lastUpdated"`
	Notes         *string    `json:"notes"`
	Tags          []string   `json:"tags"`
	MessagesSent  int        `json:"messagesSent"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

type LeadCounts struct {
	WarmLead     int `json:"warmLeadCount"`
	MessageSent  int `json:"messageSentCount"`
	SaleClosed   int `json:"saleClosedCount"`
	Total        int `json:"totalCount"`
	MessagesSent int `json:"messagesSentCount"`
}

type SortOrder string

const (
	SortNewestFirst SortOrder = "desc"
	SortOldestFirst SortOrder = "asc"
)

type LeadFilter struct {
	Status *LeadStatus
	Limit  int // 0 means no cap
	Order  SortOrder
}

type LeadRepositoryInterface interface {
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	FindByID(ctx context.Context, id int64) (*Lead, error)
	NextWarm(ctx context.Context) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
	CreateBatch(ctx context.Context, leads []*Lead) error
	UpdateStatus(ctx context.Context, id int64, to LeadStatus, notes *string) (*Lead, LeadStatus, error)
	UpdateNotes(ctx context.Context, id int64, notes string) (*Lead, error)
	CountsByStatus(ctx context.Context) (*LeadCounts, error)
	CountMessagedSince(ctx context.Context, since time.Time) (int, error)
	Delete(ctx context.Context, id int64) error
}

// ParseTags splits the stored comma-joined tag column.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}
