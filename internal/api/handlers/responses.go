// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/siftlabs/leadsift/internal/database"
)

type postResponse struct {
	ID                    uuid.UUID        `json:"id"`
	URL                   string           `json:"url"`
	Platform              string           `json:"platform"`
	PostID                string           `json:"postId"`
	UserID                uuid.UUID        `json:"userId"`
	Content               string           `json:"content,omitempty"`
	Author                database.Author  `json:"author"`
	Metrics               database.Metrics `json:"metrics"`
	Status                string           `json:"status"`
	ErrorMessage          string           `json:"errorMessage,omitempty"`
	StartedAt             *time.Time       `json:"startedAt,omitempty"`
	ProcessedAt           *time.Time       `json:"processedAt,omitempty"`
	TotalEngagements      int              `json:"totalEngagements"`
	ProcessedEngagements  int              `json:"processedEngagements"`
	ProcessingTimeSeconds *int             `json:"processingTimeSeconds,omitempty"`
	ExpiresAt             *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
}

func toPostResponse(post database.Post) postResponse {
	resp := postResponse{
		ID:                   post.ID,
		URL:                  post.URL,
		Platform:             post.Platform,
		PostID:               post.PostID,
		UserID:               post.UserID,
		Content:              post.Content.String,
		Author:               post.Author,
		Metrics:              post.Metrics,
		Status:               post.Status,
		ErrorMessage:         post.ErrorMessage.String,
		TotalEngagements:     post.TotalEngagements,
		ProcessedEngagements: post.ProcessedEngagements,
		CreatedAt:            post.CreatedAt,
	}
	if post.StartedAt.Valid {
		resp.StartedAt = &post.StartedAt.Time
	}
	if post.ProcessedAt.Valid {
		resp.ProcessedAt = &post.ProcessedAt.Time
	}
	if post.ProcessingTimeSeconds.Valid {
		seconds := int(post.ProcessingTimeSeconds.Int32)
		resp.ProcessingTimeSeconds = &seconds
	}
	if post.ExpiresAt.Valid {
		resp.ExpiresAt = &post.ExpiresAt.Time
	}
	return resp
}

func toPostResponses(posts []database.Post) []postResponse {
	out := make([]postResponse, len(posts))
	for i, post := range posts {
		out[i] = toPostResponse(post)
	}
	return out
}

type leadResponse struct {
	ID                uuid.UUID               `json:"id"`
	PostID            uuid.UUID               `json:"postId"`
	UserID            uuid.UUID               `json:"userId"`
	URN               string                  `json:"urn"`
	Name              string                  `json:"name"`
	Headline          string                  `json:"headline,omitempty"`
	ProfileURL        string                  `json:"profileUrl,omitempty"`
	Location          database.Location       `json:"location"`
	Education         database.EducationList  `json:"education"`
	Experience        database.ExperienceList `json:"experience"`
	EngagementType    string                  `json:"engagementType"`
	EngagementContent string                  `json:"engagementContent,omitempty"`
	MatchScore        int                     `json:"matchScore"`
	GuessedEmail      string                  `json:"guessedEmail,omitempty"`
	Tags              []string                `json:"tags"`
	Exported          bool                    `json:"exported"`
	ExpiresAt         *time.Time              `json:"expiresAt,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
}

func toLeadResponse(lead database.Lead) leadResponse {
	resp := leadResponse{
		ID:                lead.ID,
		PostID:            lead.PostID,
		UserID:            lead.UserID,
		URN:               lead.URN,
		Name:              lead.Name,
		Headline:          lead.Headline,
		ProfileURL:        lead.ProfileURL,
		Location:          lead.Location,
		Education:         lead.Education,
		Experience:        lead.Experience,
		EngagementType:    lead.EngagementType,
		EngagementContent: lead.EngagementContent,
		MatchScore:        lead.MatchScore,
		GuessedEmail:      lead.GuessedEmail.String,
		Tags:              lead.Tags,
		Exported:          lead.Exported,
		CreatedAt:         lead.CreatedAt,
	}
	if resp.Education == nil {
		resp.Education = database.EducationList{}
	}
	if resp.Experience == nil {
		resp.Experience = database.ExperienceList{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if lead.ExpiresAt.Valid {
		resp.ExpiresAt = &lead.ExpiresAt.Time
	}
	return resp
}

func toLeadResponses(leads []database.Lead) []leadResponse {
	out := make([]leadResponse, len(leads))
	for i, lead := range leads {
		out[i] = toLeadResponse(lead)
	}
	return out
}
