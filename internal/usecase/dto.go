package usecase

import (
	"strings"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

// IngestLeadInput is the canonical shape every webhook adapter maps into.
type IngestLeadInput struct {
	Username      string   `json:"username" validate:"required,max=100,excludesall=/?# "`
	InstagramID   string   `json:"instagramId" validate:"max=64"`
	FullName      string   `json:"fullName" validate:"max=200"`
	ProfileURL    string   `json:"profileUrl" validate:"omitempty,url"`
	ProfilePicURL string   `json:"profilePicUrl" validate:"omitempty,url"`
	IsVerified    bool     `json:"isVerified"`
	Bio           string   `json:"bio" validate:"max=2200"`
	Followers     int      `json:"followersCount" validate:"gte=0,lte=2147483647"`
	Following     int      `json:"followingCount" validate:"gte=0,lte=2147483647"`
	Tags          []string `json:"tags"`
}

func (in *IngestLeadInput) normalize() {
	in.Username = strings.TrimPrefix(strings.TrimSpace(in.Username), "@")
	in.InstagramID = strings.TrimSpace(in.InstagramID)
	in.FullName = strings.TrimSpace(in.FullName)
	in.ProfileURL = strings.TrimSpace(in.ProfileURL)
	in.ProfilePicURL = strings.TrimSpace(in.ProfilePicURL)
	in.Bio = strings.TrimSpace(in.Bio)
}

// toLead never carries a status: the store always starts leads as warm_lead.
func (in IngestLeadInput) toLead() *entity.Lead {
	profileURL := in.ProfileURL
	if profileURL == "" {
		profileURL = "https://www.instagram.com/" + in.Username + "/"
	}
	return &entity.Lead{
		Username:      in.Username,
		InstagramID:   in.InstagramID,
		FullName:      in.FullName,
		ProfileURL:    profileURL,
		ProfilePicURL: in.ProfilePicURL,
		IsVerified:    in.IsVerified,
		Bio:           in.Bio,
		Followers:     in.Followers,
		Following:     in.Following,
		Tags:          in.Tags,
	}
}

type IngestLeadsOutput struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Leads   []*entity.Lead `json:"leads"`
}

type UpdateLeadStatusInput struct {
	ID     int64
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type UpdateLeadNotesInput struct {
	ID    int64
	Notes *string `json:"notes"`
}

// ListLeadsInput carries raw query-string values; parsing happens in the use case.
type ListLeadsInput struct {
	Status string
	Limit  string
	Order  string
}

type QuotaOutput struct {
	SentToday       int     `json:"sentToday"`
	DailyQuota      int     `json:"dailyQuota"`
	Remaining       int     `json:"remaining"`
	ProgressPercent float64 `json:"progressPercent"`
}
