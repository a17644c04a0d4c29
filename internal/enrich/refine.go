// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/genai"
	"github.com/siftlabs/leadsift/internal/provider"
)

// Refiner is the generative-AI enrichment collaborator. It is optional and
// best-effort: a completed post never flips back because refinement failed.
type Refiner interface {
	EnrichProfiles(ctx context.Context, links []string) ([]genai.EnrichedProfile, error)
}

// refineLeads sends the engagers' profile URLs to the refiner and folds the
// results back into the stored leads. All failures are logged and swallowed.
func (e *Enricher) refineLeads(ctx context.Context, post database.Post, engagements []provider.EngagementData) {
	links := collectProfileURLs(engagements)
	if len(links) == 0 {
		e.logger.Debugw("no profile URLs to refine", "post_id", post.ID)
		return
	}

	profiles, err := e.refiner.EnrichProfiles(ctx, links)
	if err != nil {
		e.logger.Warnw("lead refinement failed", "post_id", post.ID, "error", err)
		return
	}
	if len(profiles) == 0 {
		return
	}

	leads, err := e.store.ListLeadsForPost(ctx, database.ListLeadsForPostParams{
		PostID: post.ID,
		UserID: post.UserID,
	})
	if err != nil {
		e.logger.Warnw("failed to list leads for refinement", "post_id", post.ID, "error", err)
		return
	}

	leadByURL := make(map[string]database.Lead, len(leads))
	for _, lead := range leads {
		if lead.ProfileURL != "" {
			leadByURL[normalizeProfileURL(lead.ProfileURL)] = lead
		}
	}

	applied := 0
	for _, profile := range profiles {
		if profile.LinkedInURL == "" {
			continue
		}
		lead, ok := leadByURL[normalizeProfileURL(profile.LinkedInURL)]
		if !ok {
			continue
		}
		params, changed := mergeRefinement(lead, profile)
		if !changed {
			continue
		}
		if err := e.store.ApplyLeadEnrichment(ctx, params); err != nil {
			e.logger.Warnw("failed to apply refinement", "lead_id", lead.ID, "error", err)
			continue
		}
		applied++
	}

	if applied > 0 {
		e.logger.Infow("refined leads", "post_id", post.ID, "applied", applied)
	}
}

// mergeRefinement folds one refined profile into a lead. Refined data only
// fills gaps, except the score, which replaces the heuristic one outright.
func mergeRefinement(lead database.Lead, profile genai.EnrichedProfile) (database.ApplyLeadEnrichmentParams, bool) {
	params := database.ApplyLeadEnrichmentParams{
		ID:           lead.ID,
		GuessedEmail: lead.GuessedEmail,
		Location:     lead.Location,
		Education:    lead.Education,
		MatchScore:   lead.MatchScore,
	}
	changed := false

	if profile.Email != "" && !lead.GuessedEmail.Valid {
		params.GuessedEmail = sql.NullString{String: profile.Email, Valid: true}
		changed = true
	}
	if profile.Education != "" && len(lead.Education) == 0 {
		params.Education = database.EducationList{{Institution: profile.Education}}
		changed = true
	}
	if profile.Country != "" && lead.Location.Country == "" {
		params.Location.Country = profile.Country
		changed = true
	}
	if profile.Score != nil && *profile.Score >= 0 {
		score := *profile.Score
		if score > 100 {
			score = 100
		}
		if score != lead.MatchScore {
			params.MatchScore = score
			changed = true
		}
	}

	return params, changed
}

func collectProfileURLs(engagements []provider.EngagementData) []string {
	seen := make(map[string]bool)
	links := []string{}
	for _, engagement := range engagements {
		raw := strings.TrimSpace(engagement.User.ProfileURL)
		if raw == "" {
			continue
		}
		normalized := normalizeProfileURL(raw)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		links = append(links, normalized)
	}
	return links
}

// normalizeProfileURL canonicalizes linkedin.com/in/ URLs so the same person
// compares equal regardless of scheme, www prefix or trailing slash. Other
// URLs pass through with at most a scheme added.
func normalizeProfileURL(raw string) string {
	withScheme := raw
	if !strings.HasPrefix(raw, "http") {
		withScheme = "https://" + raw
	}
	parsed, err := url.Parse(withScheme)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if host == "linkedin.com" && strings.HasPrefix(parsed.Path, "/in/") {
		return "https://www.linkedin.com" + strings.TrimSuffix(parsed.Path, "/")
	}
	return withScheme
}
