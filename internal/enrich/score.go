// SPDX-License-Identifier: AGPL-3.0-only

// Package enrich turns the engagers of a post into scored, deduplicated
// leads: a deterministic match scorer, a heuristic email guesser, and the
// orchestrator driving a provider through the extraction pipeline.
package enrich

import (
	"strings"

	"github.com/siftlabs/leadsift/internal/provider"
)

// MatchScore maps profile completeness to [0, 100]. The weights are fixed:
// downstream scoring-compatibility tests depend on exact values.
func MatchScore(profile *provider.ProfileData) int {
	score := 10 // base score for having an engagement at all

	if strings.TrimSpace(profile.Headline) != "" {
		score += 15
	}

	if len(profile.Education) > 0 {
		score += 25
		for _, edu := range profile.Education {
			if strings.TrimSpace(edu.Degree) != "" {
				score += 10
				break
			}
		}
		for _, edu := range profile.Education {
			if strings.TrimSpace(edu.FieldOfStudy) != "" {
				score += 5
				break
			}
		}
	}

	if len(profile.Experience) > 0 {
		score += 20
		if len(profile.Experience) > 1 {
			score += 5
		}
	}

	if strings.TrimSpace(profile.Location.Country) != "" {
		score += 8
	}
	if strings.TrimSpace(profile.Location.City) != "" {
		score += 7
	}

	if strings.TrimSpace(profile.Contact.Email) != "" {
		score += 10
	}
	if strings.TrimSpace(profile.Contact.Phone) != "" {
		score += 5
	}
	if strings.TrimSpace(profile.Contact.Website) != "" {
		score += 3
	}

	if score > 100 {
		score = 100
	}
	return score
}
