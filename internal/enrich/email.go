// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"strings"

	"github.com/siftlabs/leadsift/internal/provider"
)

// DomainMapping pairs a known institution substring with its mail domain.
// Order matters: the first matching entry wins.
type DomainMapping struct {
	Institution string
	Domain      string
}

// DefaultUniversityDomains is the built-in institution table. Matching is
// case-insensitive substring containment against the lead's first listed
// institution.
var DefaultUniversityDomains = []DomainMapping{
	{"stanford university", "stanford.edu"},
	{"harvard university", "harvard.edu"},
	{"mit", "mit.edu"},
	{"university of california", "berkeley.edu"},
	{"carnegie mellon", "cmu.edu"},
	{"georgia tech", "gatech.edu"},
}

// EmailGuesser produces a best-effort institutional email for a profile.
// The domain table is injected at construction so the guesser stays pure
// and testable in isolation.
type EmailGuesser struct {
	domains []DomainMapping
}

func NewEmailGuesser(domains []DomainMapping) *EmailGuesser {
	return &EmailGuesser{domains: domains}
}

// Guess returns "first.last@domain" or "" when no guess is possible: no
// name, fewer than two name tokens, no education, or an institution too
// short to synthesize a domain from.
func (g *EmailGuesser) Guess(profile *provider.ProfileData) string {
	if profile.Name == "" || len(profile.Education) == 0 {
		return ""
	}

	tokens := strings.Fields(profile.Name)
	if len(tokens) < 2 {
		return ""
	}
	firstName := strings.ToLower(tokens[0])
	lastName := strings.ToLower(tokens[len(tokens)-1])

	institution := profile.Education[0].Institution
	if institution == "" {
		return ""
	}

	domain := g.knownDomain(institution)
	if domain == "" {
		domain = synthesizeDomain(institution)
	}
	if domain == "" {
		return ""
	}

	return firstName + "." + lastName + "@" + domain
}

func (g *EmailGuesser) knownDomain(institution string) string {
	lower := strings.ToLower(institution)
	for _, m := range g.domains {
		if strings.Contains(lower, m.Institution) {
			return m.Domain
		}
	}
	return ""
}

// synthesizeDomain builds a pseudo-domain from an unknown institution name:
// generic words removed, letters only, up to the first two words longer
// than two characters, concatenated onto the literal "gmail.com".
func synthesizeDomain(institution string) string {
	cleaned := strings.ToLower(institution)
	for _, word := range []string{"university", "college", "institute", "school"} {
		cleaned = strings.ReplaceAll(cleaned, word, "")
	}

	var letters strings.Builder
	for _, r := range cleaned {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			letters.WriteRune(r)
		}
	}

	var parts []string
	for _, word := range strings.Fields(letters.String()) {
		if len(word) > 2 {
			parts = append(parts, word)
		}
		if len(parts) == 2 {
			break
		}
	}

	stem := strings.Join(parts, "")
	if len(stem) < 3 {
		return ""
	}

	return stem + "gmail.com"
}
