// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/genai"
	"github.com/siftlabs/leadsift/internal/provider"
)

type fakeRefiner struct {
	mu       sync.Mutex
	links    []string
	profiles []genai.EnrichedProfile
	err      error
}

func (r *fakeRefiner) EnrichProfiles(ctx context.Context, links []string) ([]genai.EnrichedProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append([]string(nil), links...)
	if r.err != nil {
		return nil, r.err
	}
	return r.profiles, nil
}

func intPtr(v int) *int { return &v }

func TestProcessPostRefinesLeads(t *testing.T) {
	post := pendingPost()
	store := newFakeStore(post)

	prov := &fakeProvider{
		postData: &provider.PostData{ID: "1", Platform: "linkedin"},
		engagements: []provider.EngagementData{
			comment("ada-urn", "Ada Lovelace", "first"),
			comment("grace-urn", "Grace Hopper", "second"),
		},
		profiles: map[string]*provider.ProfileData{
			"ada-urn": {
				URN:        "ada-urn",
				ProfileURL: "https://linkedin.com/in/ada-urn",
				Education:  []provider.Education{{Institution: "Stanford University"}},
			},
			"grace-urn": {
				URN:        "grace-urn",
				ProfileURL: "https://linkedin.com/in/grace-urn",
			},
		},
	}

	refiner := &fakeRefiner{
		profiles: []genai.EnrichedProfile{
			{
				// Trailing slash and www prefix must still match the lead.
				LinkedInURL: "https://www.linkedin.com/in/grace-urn/",
				Email:       "grace@navy.mil",
				Education:   "Yale University",
				Country:     "United States",
				Score:       intPtr(55),
			},
			{
				LinkedInURL: "https://www.linkedin.com/in/ada-urn",
				Email:       "ada@acme.com",
			},
		},
	}

	e := newTestEnricherWithRefiner(store, prov, refiner)
	require.NoError(t, e.ProcessPost(context.Background(), post.ID))

	assert.Equal(t, []string{
		"https://www.linkedin.com/in/ada-urn",
		"https://www.linkedin.com/in/grace-urn",
	}, refiner.links)

	// Ada's guessed email and education are already set, so her refinement
	// changes nothing; only grace's gaps get filled.
	require.Len(t, store.applied, 1)
	applied := store.applied[0]

	grace, ok := store.leadFor("grace-urn")
	require.True(t, ok)
	assert.Equal(t, grace.ID, applied.ID)
	assert.Equal(t, sql.NullString{String: "grace@navy.mil", Valid: true}, applied.GuessedEmail)
	assert.Equal(t, database.EducationList{{Institution: "Yale University"}}, applied.Education)
	assert.Equal(t, "United States", applied.Location.Country)
	assert.Equal(t, 55, applied.MatchScore)
}

func TestProcessPostRefinerFailureLeavesPostCompleted(t *testing.T) {
	post := pendingPost()
	store := newFakeStore(post)

	prov := &fakeProvider{
		postData: &provider.PostData{ID: "1", Platform: "linkedin"},
		engagements: []provider.EngagementData{
			comment("ada-urn", "Ada Lovelace", "hello"),
		},
	}
	refiner := &fakeRefiner{err: errors.New("enrich service down")}

	e := newTestEnricherWithRefiner(store, prov, refiner)
	require.NoError(t, e.ProcessPost(context.Background(), post.ID))

	assert.Equal(t, database.PostStatusCompleted, store.post(post.ID).Status)
	assert.Empty(t, store.applied)
}

func TestMergeRefinement(t *testing.T) {
	lead := database.Lead{
		ID:           uuid.New(),
		GuessedEmail: sql.NullString{String: "kept@ex.com", Valid: true},
		Location:     database.Location{Country: "Canada", City: "Toronto"},
		Education:    database.EducationList{{Institution: "MIT"}},
		MatchScore:   40,
	}

	t.Run("filled fields are never overwritten", func(t *testing.T) {
		_, changed := mergeRefinement(lead, genai.EnrichedProfile{
			Email:     "other@ex.com",
			Education: "Yale University",
			Country:   "France",
		})
		assert.False(t, changed)
	})

	t.Run("score replaces the heuristic one and is clamped", func(t *testing.T) {
		params, changed := mergeRefinement(lead, genai.EnrichedProfile{Score: intPtr(150)})
		require.True(t, changed)
		assert.Equal(t, 100, params.MatchScore)
		assert.Equal(t, lead.GuessedEmail, params.GuessedEmail)
	})

	t.Run("equal score is not a change", func(t *testing.T) {
		_, changed := mergeRefinement(lead, genai.EnrichedProfile{Score: intPtr(40)})
		assert.False(t, changed)
	})

	t.Run("negative score is ignored", func(t *testing.T) {
		_, changed := mergeRefinement(lead, genai.EnrichedProfile{Score: intPtr(-1)})
		assert.False(t, changed)
	})

	t.Run("city survives a country fill", func(t *testing.T) {
		bare := database.Lead{ID: uuid.New(), Location: database.Location{City: "Lyon"}}
		params, changed := mergeRefinement(bare, genai.EnrichedProfile{Country: "France"})
		require.True(t, changed)
		assert.Equal(t, database.Location{Country: "France", City: "Lyon"}, params.Location)
	})
}

func TestNormalizeProfileURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare linkedin profile", "linkedin.com/in/ada", "https://www.linkedin.com/in/ada"},
		{"www and trailing slash", "https://www.linkedin.com/in/ada/", "https://www.linkedin.com/in/ada"},
		{"http scheme", "http://linkedin.com/in/ada", "https://www.linkedin.com/in/ada"},
		{"non-profile linkedin path", "https://linkedin.com/feed/update/1", "https://linkedin.com/feed/update/1"},
		{"other host gets a scheme", "example.com/ada", "https://example.com/ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeProfileURL(tt.in))
		})
	}
}
