// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siftlabs/leadsift/internal/provider"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		profile provider.ProfileData
		want    int
	}{
		{
			name:    "engagement only scores the base",
			profile: provider.ProfileData{},
			want:    10,
		},
		{
			name:    "headline adds 15",
			profile: provider.ProfileData{Headline: "Software Engineer"},
			want:    25,
		},
		{
			name: "whitespace headline does not count",
			profile: provider.ProfileData{
				Headline: "   ",
			},
			want: 10,
		},
		{
			name: "education without degree or field",
			profile: provider.ProfileData{
				Education: []provider.Education{{Institution: "Stanford University"}},
			},
			want: 35,
		},
		{
			name: "education with degree and field",
			profile: provider.ProfileData{
				Education: []provider.Education{
					{Institution: "Stanford University", Degree: "BSc", FieldOfStudy: "CS"},
				},
			},
			want: 50,
		},
		{
			name: "degree and field bonuses count once across entries",
			profile: provider.ProfileData{
				Education: []provider.Education{
					{Institution: "Stanford University", Degree: "BSc", FieldOfStudy: "CS"},
					{Institution: "MIT", Degree: "MSc", FieldOfStudy: "EE"},
				},
			},
			want: 50,
		},
		{
			name: "single experience adds 20",
			profile: provider.ProfileData{
				Experience: []provider.Experience{{Company: "Acme", Title: "Engineer"}},
			},
			want: 30,
		},
		{
			name: "multiple experiences add 5 more",
			profile: provider.ProfileData{
				Experience: []provider.Experience{
					{Company: "Acme", Title: "Engineer"},
					{Company: "Globex", Title: "Senior Engineer"},
				},
			},
			want: 35,
		},
		{
			name: "location splits country and city",
			profile: provider.ProfileData{
				Location: provider.Location{Country: "Canada", City: "Toronto"},
			},
			want: 25,
		},
		{
			name: "contact info adds email, phone and website",
			profile: provider.ProfileData{
				Contact: provider.Contact{Email: "a@b.c", Phone: "555", Website: "https://a.b"},
			},
			want: 28,
		},
		{
			name: "complete profile caps at 100",
			profile: provider.ProfileData{
				Headline: "CTO",
				Education: []provider.Education{
					{Institution: "Stanford University", Degree: "PhD", FieldOfStudy: "AI"},
				},
				Experience: []provider.Experience{
					{Company: "Acme", Title: "CTO"},
					{Company: "Globex", Title: "VP Engineering"},
				},
				Location: provider.Location{Country: "US", City: "Palo Alto"},
				Contact:  provider.Contact{Email: "a@b.c", Phone: "555", Website: "https://a.b"},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(&tt.profile)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}
