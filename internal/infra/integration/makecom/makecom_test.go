package makecom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/payload"
)

func TestMapLead_FieldFallbacks(t *testing.T) {
	recs, err := payload.Decode([]byte(`{
		"username": "fit.with.maya",
		"pk": 4815162342,
		"full_name": "Maya Torres",
		"biography": "coach",
		"followerCount": "18,400",
		"followsCount": 620,
		"profile_pic_url": "https://cdn.example.com/p.jpg",
		"verified": "true",
		"tags": "fitness, coach"
	}`))
	require.NoError(t, err)

	in := MapLead(recs[0])

	assert.Equal(t, "fit.with.maya", in.Username)
	assert.Equal(t, "4815162342", in.InstagramID)
	assert.Equal(t, "Maya Torres", in.FullName)
	assert.Equal(t, "coach", in.Bio)
	assert.Equal(t, 18400, in.Followers)
	assert.Equal(t, 620, in.Following)
	assert.Equal(t, "https://cdn.example.com/p.jpg", in.ProfilePicURL)
	assert.True(t, in.IsVerified)
	assert.Equal(t, []string{"fitness", "coach"}, in.Tags)
	assert.Empty(t, in.ProfileURL)
}

func TestMapLeads_KeepsOrder(t *testing.T) {
	recs, err := payload.Decode([]byte(`[{"username":"a"},{"followers":3}]`))
	require.NoError(t, err)

	out := MapLeads(recs)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Username)
	assert.Equal(t, "", out[1].Username)
	assert.Equal(t, 3, out[1].Followers)
}

func TestClient_TriggerScenario(t *testing.T) {
	var got TriggerPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-make-apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, zap.NewNop())
	err := c.TriggerScenario(context.Background(), TriggerPayload{
		Trigger:    "scheduled",
		Counts:     entity.LeadCounts{WarmLead: 4, Total: 9},
		DailyQuota: 50,
	})

	require.NoError(t, err)
	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, "scheduled", got.Trigger)
	assert.Equal(t, 4, got.Counts.WarmLead)
	assert.Equal(t, 50, got.DailyQuota)
}

func TestClient_TriggerScenarioRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Scenario is inactive", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, zap.NewNop())
	err := c.TriggerScenario(context.Background(), TriggerPayload{Trigger: "manual"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Scenario is inactive")
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("", "", 0, zap.NewNop())

	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.TriggerScenario(context.Background(), TriggerPayload{}), ErrNotConfigured)
}
