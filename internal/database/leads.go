// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrLeadNotFound is returned when a referenced lead does not exist.
var ErrLeadNotFound = errors.New("lead not found")

type CreateLeadParams struct {
	ID                uuid.UUID
	PostID            uuid.UUID
	UserID            uuid.UUID
	URN               string
	Name              string
	Headline          string
	ProfileURL        string
	Location          Location
	Education         EducationList
	Experience        ExperienceList
	EngagementType    string
	EngagementContent string
	MatchScore        int
	GuessedEmail      sql.NullString
	ExpiresAt         time.Time
}

// CreateLead inserts a lead, keeping at most one per (post_id, urn). The
// unique index makes concurrent inserts for the same engager collapse into
// one row; the bool reports whether this call created it.
func (q *Queries) CreateLead(ctx context.Context, arg CreateLeadParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO leads (id, created_at, post_id, user_id, urn, name, headline, profile_url,
		                   location, education, experience, engagement_type, engagement_content,
		                   match_score, guessed_email, tags, exported, expires_at)
		VALUES ($1, now(), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, '{}', false, $15)
		ON CONFLICT (post_id, urn) DO NOTHING`,
		arg.ID, arg.PostID, arg.UserID, arg.URN, arg.Name, arg.Headline, arg.ProfileURL,
		arg.Location, arg.Education, arg.Experience, arg.EngagementType, arg.EngagementContent,
		arg.MatchScore, arg.GuessedEmail, arg.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("create lead: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create lead: %w", err)
	}
	return rows > 0, nil
}

type LeadExistsParams struct {
	PostID uuid.UUID
	URN    string
}

func (q *Queries) LeadExists(ctx context.Context, arg LeadExistsParams) (bool, error) {
	var exists bool
	err := q.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE post_id = $1 AND urn = $2)`,
		arg.PostID, arg.URN,
	)
	if err != nil {
		return false, fmt.Errorf("lead exists: %w", err)
	}
	return exists, nil
}

type ListLeadsForPostParams struct {
	PostID uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) ListLeadsForPost(ctx context.Context, arg ListLeadsForPostParams) ([]Lead, error) {
	leads := []Lead{}
	err := q.db.SelectContext(ctx, &leads,
		`SELECT * FROM leads WHERE post_id = $1 AND user_id = $2 ORDER BY match_score DESC, created_at`,
		arg.PostID, arg.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads for post: %w", err)
	}
	return leads, nil
}

func (q *Queries) ListLeadsForUser(ctx context.Context, userID uuid.UUID) ([]Lead, error) {
	leads := []Lead{}
	err := q.db.SelectContext(ctx, &leads,
		`SELECT * FROM leads WHERE user_id = $1 ORDER BY match_score DESC, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads for user: %w", err)
	}
	return leads, nil
}

type UpdateLeadTagsParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Tags   []string
}

func (q *Queries) UpdateLeadTags(ctx context.Context, arg UpdateLeadTagsParams) (Lead, error) {
	var lead Lead
	err := q.db.GetContext(ctx, &lead, `
		UPDATE leads SET tags = $3
		WHERE id = $1 AND user_id = $2
		RETURNING *`,
		arg.ID, arg.UserID, pq.StringArray(arg.Tags),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead tags: %w", err)
	}
	return lead, nil
}

type MarkLeadsExportedParams struct {
	UserID uuid.UUID
	IDs    []uuid.UUID
}

// MarkLeadsExported flags leads that the export collaborator has consumed.
func (q *Queries) MarkLeadsExported(ctx context.Context, arg MarkLeadsExportedParams) error {
	ids := make([]string, len(arg.IDs))
	for i, id := range arg.IDs {
		ids[i] = id.String()
	}

	_, err := q.db.ExecContext(ctx,
		`UPDATE leads SET exported = true WHERE user_id = $1 AND id = ANY($2)`,
		arg.UserID, pq.StringArray(ids),
	)
	if err != nil {
		return fmt.Errorf("mark leads exported: %w", err)
	}
	return nil
}

type ApplyLeadEnrichmentParams struct {
	ID           uuid.UUID
	GuessedEmail sql.NullString
	Location     Location
	Education    EducationList
	MatchScore   int
}

// ApplyLeadEnrichment overwrites the fields the post-completion enrichment
// pass recomputes. Callers merge with the existing lead first.
func (q *Queries) ApplyLeadEnrichment(ctx context.Context, arg ApplyLeadEnrichmentParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE leads
		SET guessed_email = $2, location = $3, education = $4, match_score = $5
		WHERE id = $1`,
		arg.ID, arg.GuessedEmail, arg.Location, arg.Education, arg.MatchScore,
	)
	if err != nil {
		return fmt.Errorf("apply lead enrichment: %w", err)
	}
	return nil
}
