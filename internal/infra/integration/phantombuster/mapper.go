// Package phantombuster maps PhantomBuster "Instagram Profile Scraper" results
// into canonical leads.
package phantombuster

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/payload"
	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

// webhookEnvelope is what PhantomBuster posts when an agent run finishes. The
// scraped rows arrive as a JSON string in resultObject.
type webhookEnvelope struct {
	AgentName    string  `json:"agentName"`
	ExitCode     *int    `json:"exitCode"`
	ResultObject *string `json:"resultObject"`
}

// Records unwraps the webhook envelope when present; otherwise the body is
// taken to be the result rows themselves.
func Records(body []byte) ([]payload.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env webhookEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.ResultObject != nil {
			if env.ExitCode != nil && *env.ExitCode != 0 {
				return nil, eris.Errorf("phantombuster: agent %s exited with code %d", env.AgentName, *env.ExitCode)
			}
			return payload.Decode([]byte(*env.ResultObject))
		}
	}
	return payload.Decode(trimmed)
}

func MapLead(r payload.Record) usecase.IngestLeadInput {
	in := usecase.IngestLeadInput{
		Username:      r.String("username", "instagramUsername"),
		InstagramID:   r.String("instagramID", "instagramId", "id"),
		FullName:      r.String("fullName", "name"),
		ProfileURL:    r.String("profileUrl", "instagramUrl"),
		ProfilePicURL: r.String("imgUrl", "profilePicUrl", "profilePictureUrl"),
		IsVerified:    r.Bool("isVerified", "verified"),
		Bio:           r.String("bio", "biography"),
		Followers:     r.Int("followersCount", "followerCount"),
		Following:     r.Int("followingCount"),
		Tags:          r.Strings("tags"),
	}
	// the search that surfaced the profile is the most useful grouping we get
	if q := r.String("query"); q != "" {
		in.Tags = append(in.Tags, q)
	}
	return in
}

func MapLeads(records []payload.Record) []usecase.IngestLeadInput {
	out := make([]usecase.IngestLeadInput, 0, len(records))
	for _, r := range records {
		out = append(out, MapLead(r))
	}
	return out
}
