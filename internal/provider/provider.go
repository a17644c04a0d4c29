// SPDX-License-Identifier: AGPL-3.0-only

// Package provider defines the capability contract for extracting posts,
// engagements and profiles from a social platform, plus the registry used
// to dispatch on a post's platform.
package provider

import (
	"context"
	"errors"
	"fmt"
)

type EngagementType string

const (
	EngagementLike     EngagementType = "like"
	EngagementComment  EngagementType = "comment"
	EngagementShare    EngagementType = "share"
	EngagementReaction EngagementType = "reaction"
)

// PostData is the result of scraping a single post.
type PostData struct {
	ID       string
	URL      string
	Platform string
	Content  string
	Author   Author
	Metrics  Metrics
}

type Author struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
	URN        string `json:"urn"`
}

type Metrics struct {
	Likes    int `json:"likesCount"`
	Comments int `json:"commentsCount"`
	Shares   int `json:"sharesCount"`
}

// EngagementData is one attributable interaction with a post.
type EngagementData struct {
	Type    EngagementType
	User    EngagedUser
	Content string
}

type EngagedUser struct {
	Name       string
	ProfileURL string
	URN        string
	Headline   string
}

// ProfileData is the enrichment result for one engaged user. Name and
// headline are left blank by providers; the orchestrator fills them from
// engagement context because profile endpoints do not carry them reliably.
type ProfileData struct {
	URN        string
	Name       string
	Headline   string
	ProfileURL string
	Location   Location
	Education  []Education
	Experience []Experience
	Contact    Contact
}

type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear,omitempty"`
	EndYear      int    `json:"endYear,omitempty"`
}

type Experience struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	StartYear int    `json:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty"`
	Current   bool   `json:"current"`
}

type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

var (
	// ErrInvalidURL means no URN pattern matched the post URL.
	ErrInvalidURL = errors.New("could not extract post URN from URL")

	// ErrUnsupportedPlatform means no provider is registered for the platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ExtractionError wraps a failed upstream fetch for required data.
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Provider extracts platform data. Engagement enumeration is cheap and bulk;
// profile enrichment is expensive and per-person, so callers can parallelize
// profiles and tolerate partial failures without losing the batch.
type Provider interface {
	Name() string

	// ExtractPostID parses the platform-specific post identifier out of a URL.
	ExtractPostID(url string) (string, error)

	ExtractPostData(ctx context.Context, url string) (*PostData, error)
	ExtractEngagements(ctx context.Context, postURN string) ([]EngagementData, error)
	ExtractProfile(ctx context.Context, profileURN string) (*ProfileData, error)
}

// Registry maps platform names to providers. Adding a platform means
// registering an implementation, not editing a switch.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(platform string, p Provider) {
	r.providers[platform] = p
}

func (r *Registry) Get(platform string) (Provider, error) {
	p, ok := r.providers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	return p, nil
}
