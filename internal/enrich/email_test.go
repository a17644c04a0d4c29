// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siftlabs/leadsift/internal/provider"
)

func profileWithEducation(name, institution string) *provider.ProfileData {
	return &provider.ProfileData{
		Name:      name,
		Education: []provider.Education{{Institution: institution}},
	}
}

func TestEmailGuesser(t *testing.T) {
	guesser := NewEmailGuesser(DefaultUniversityDomains)

	tests := []struct {
		name    string
		profile *provider.ProfileData
		want    string
	}{
		{
			name:    "known institution uses its domain",
			profile: profileWithEducation("Ada Lovelace", "Stanford University"),
			want:    "ada.lovelace@stanford.edu",
		},
		{
			name:    "institution match is case insensitive substring",
			profile: profileWithEducation("Grace Hopper", "The MIT Media Lab"),
			want:    "grace.hopper@mit.edu",
		},
		{
			name:    "unknown institution synthesizes a pseudo-domain",
			profile: profileWithEducation("Ada Lovelace", "Random Polytechnic Academy"),
			want:    "ada.lovelace@randompolytechnicgmail.com",
		},
		{
			name:    "synthesis strips generic words and short words",
			profile: profileWithEducation("Jo Koy", "College of the Wood"),
			want:    "jo.koy@thewoodgmail.com",
		},
		{
			name:    "middle names drop out",
			profile: profileWithEducation("Ada B Lovelace", "Stanford University"),
			want:    "ada.lovelace@stanford.edu",
		},
		{
			name:    "no education means no guess",
			profile: &provider.ProfileData{Name: "Ada Lovelace"},
			want:    "",
		},
		{
			name:    "no name means no guess",
			profile: profileWithEducation("", "Stanford University"),
			want:    "",
		},
		{
			name:    "single-word name means no guess",
			profile: profileWithEducation("Ada", "Stanford University"),
			want:    "",
		},
		{
			name:    "empty institution means no guess",
			profile: profileWithEducation("Ada Lovelace", ""),
			want:    "",
		},
		{
			name:    "too-short synthesized stem means no guess",
			profile: profileWithEducation("Ada Lovelace", "A B University"),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guesser.Guess(tt.profile))
		})
	}
}

func TestEmailGuesserTableOrder(t *testing.T) {
	guesser := NewEmailGuesser(DefaultUniversityDomains)

	// Matches both "stanford university" and "university of california";
	// the earlier table entry wins.
	got := guesser.Guess(profileWithEducation("Ada Lovelace", "Stanford University of California"))
	assert.Equal(t, "ada.lovelace@stanford.edu", got)
}

func TestEmailGuesserOnlyFirstEducationCounts(t *testing.T) {
	guesser := NewEmailGuesser(DefaultUniversityDomains)

	profile := &provider.ProfileData{
		Name: "Ada Lovelace",
		Education: []provider.Education{
			{Institution: "Random Polytechnic Academy"},
			{Institution: "Stanford University"},
		},
	}
	assert.Equal(t, "ada.lovelace@randompolytechnicgmail.com", guesser.Guess(profile))
}
