package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var sampleProfiles = []struct {
	username, fullName, bio string
	followers, following    int
	verified                bool
	tags                    []string
}{
	{"fit.with.maya", "Maya Torres", "Online fitness coach | 12-week programs", 18400, 620, false, []string{"fitness", "coach"}},
	{"chef.nico", "Nico Alvarez", "Private chef and meal prep", 9200, 410, false, []string{"food"}},
	{"thebudgetnomad", "Sam Reed", "Travel on $50/day", 56300, 980, true, []string{"travel", "creator"}},
	{"yoga.by.lina", "Lina Park", "Vinyasa teacher, retreats in Bali", 31200, 702, false, []string{"fitness", "wellness"}},
	{"studio.kettle", "Kettle Studio", "Boutique strength gym", 4100, 150, false, []string{"gym", "local"}},
	{"ari.designs", "Ari Cohen", "Brand identity for small businesses", 12800, 1300, false, []string{"design"}},
	{"mindful.money", "Jordan Blake", "Personal finance for creatives", 77500, 240, true, []string{"finance", "creator"}},
	{"petals.and.co", "Petals & Co", "Wedding florals", 6700, 530, false, []string{"weddings", "local"}},
}

type SeedLeadsUseCase struct {
	Ingest *IngestLeadsUseCase
	Log    *zap.Logger
}

func NewSeedLeadsUseCase(ingest *IngestLeadsUseCase, log *zap.Logger) *SeedLeadsUseCase {
	return &SeedLeadsUseCase{Ingest: ingest, Log: log}
}

// Execute inserts count sample leads through the regular ingest path, so they
// start as warm_lead like any other lead.
func (uc *SeedLeadsUseCase) Execute(ctx context.Context, count int) (*IngestLeadsOutput, error) {
	if count <= 0 {
		count = len(sampleProfiles)
	}

	inputs := make([]IngestLeadInput, 0, count)
	for i := 0; i < count; i++ {
		p := sampleProfiles[i%len(sampleProfiles)]
		username := p.username
		if i >= len(sampleProfiles) {
			username = fmt.Sprintf("%s.%d", p.username, i/len(sampleProfiles))
		}
		inputs = append(inputs, IngestLeadInput{
			Username:   username,
			FullName:   p.fullName,
			Bio:        p.bio,
			Followers:  p.followers,
			Following:  p.following,
			IsVerified: p.verified,
			Tags:       append([]string{"sample"}, p.tags...),
		})
	}

	out, err := uc.Ingest.Execute(ctx, "seed", inputs)
	if err != nil {
		return nil, err
	}
	uc.Log.Info("sample leads seeded", zap.Int("count", out.Count))
	return out, nil
}
