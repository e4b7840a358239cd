package makecom

import (
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/payload"
	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

// MapLead maps one Make.com scenario record, or any generic scraper record,
// onto the canonical ingest shape. Missing fields stay empty and are caught by
// validation.
func MapLead(r payload.Record) usecase.IngestLeadInput {
	return usecase.IngestLeadInput{
		Username:      r.String("username", "userName", "handle"),
		InstagramID:   r.String("id", "pk", "instagramId", "userId"),
		FullName:      r.String("fullName", "full_name", "name"),
		ProfileURL:    r.String("url", "profileUrl", "profile_url"),
		ProfilePicURL: r.String("profilePicUrl", "profilePicUrlHD", "profile_pic_url"),
		IsVerified:    r.Bool("isVerified", "verified", "is_verified"),
		Bio:           r.String("biography", "bio", "description"),
		Followers:     r.Int("followers", "followerCount", "followersCount"),
		Following:     r.Int("following", "followingCount", "followsCount"),
		Tags:          r.Strings("tags"),
	}
}

func MapLeads(records []payload.Record) []usecase.IngestLeadInput {
	out := make([]usecase.IngestLeadInput, 0, len(records))
	for _, r := range records {
		out = append(out, MapLead(r))
	}
	return out
}
