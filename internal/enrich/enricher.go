// SPDX-License-Identifier: AGPL-3.0-only
package enrich

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/provider"
)

// LeadTTL is the retention window stamped on every new lead and post.
const LeadTTL = 30 * 24 * time.Hour

// Store is the slice of the database the enricher needs. *database.Queries
// satisfies it; tests use an in-memory fake.
type Store interface {
	GetPostByID(ctx context.Context, id uuid.UUID) (database.Post, error)
	MarkPostProcessing(ctx context.Context, id uuid.UUID) error
	UpdatePostContent(ctx context.Context, arg database.UpdatePostContentParams) error
	MarkPostCompleted(ctx context.Context, arg database.MarkPostCompletedParams) error
	MarkPostFailed(ctx context.Context, arg database.MarkPostFailedParams) error
	LeadExists(ctx context.Context, arg database.LeadExistsParams) (bool, error)
	CreateLead(ctx context.Context, arg database.CreateLeadParams) (bool, error)
	ListLeadsForPost(ctx context.Context, arg database.ListLeadsForPostParams) ([]database.Lead, error)
	ApplyLeadEnrichment(ctx context.Context, arg database.ApplyLeadEnrichmentParams) error
}

// Enricher drives one post through the extraction pipeline: post data,
// engagement list, then a concurrent per-engagement enrichment fan-out.
type Enricher struct {
	store    Store
	registry *provider.Registry
	guesser  *EmailGuesser
	refiner  Refiner
	logger   *zap.SugaredLogger
}

// NewEnricher wires the pipeline. refiner may be nil, which disables the
// post-completion refinement pass.
func NewEnricher(store Store, registry *provider.Registry, guesser *EmailGuesser, refiner Refiner, logger *zap.SugaredLogger) *Enricher {
	return &Enricher{
		store:    store,
		registry: registry,
		guesser:  guesser,
		refiner:  refiner,
		logger:   logger,
	}
}

// ProcessPost runs the post state machine pending → processing →
// {completed|failed}. It either returns nil after marking the post
// completed (possibly with fewer leads than engagements) or returns the
// error after marking it failed. A missing post is the one error that
// propagates without a status write.
func (e *Enricher) ProcessPost(ctx context.Context, postID uuid.UUID) error {
	post, err := e.store.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := e.run(ctx, post, started); err != nil {
		e.logger.Errorw("failed to process post", "post_id", postID, "error", err)
		if markErr := e.store.MarkPostFailed(ctx, database.MarkPostFailedParams{
			ID:           post.ID,
			ErrorMessage: err.Error(),
		}); markErr != nil {
			e.logger.Errorw("failed to mark post failed", "post_id", postID, "error", markErr)
		}
		return err
	}
	return nil
}

func (e *Enricher) run(ctx context.Context, post database.Post, started time.Time) error {
	if err := e.store.MarkPostProcessing(ctx, post.ID); err != nil {
		return err
	}

	prov, err := e.registry.Get(post.Platform)
	if err != nil {
		return err
	}

	postData, err := prov.ExtractPostData(ctx, post.URL)
	if err != nil {
		return err
	}

	engagements, err := prov.ExtractEngagements(ctx, postData.ID)
	if err != nil {
		return err
	}

	// Persist the scrape snapshot before the fan-out so pollers see progress.
	if err := e.store.UpdatePostContent(ctx, database.UpdatePostContentParams{
		ID:               post.ID,
		Content:          postData.Content,
		Author:           database.Author(postData.Author),
		Metrics:          database.Metrics(postData.Metrics),
		TotalEngagements: len(engagements),
	}); err != nil {
		return err
	}

	// All-settle fan-out: every engagement runs independently and one
	// fatal engagement never aborts the batch.
	results := make([]error, len(engagements))
	var wg sync.WaitGroup
	for i, engagement := range engagements {
		wg.Add(1)
		go func(i int, engagement provider.EngagementData) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = fmt.Errorf("panic while processing engagement: %v", r)
				}
			}()
			results[i] = e.processEngagement(ctx, post, prov, engagement)
		}(i, engagement)
	}
	wg.Wait()

	processed := 0
	for i, res := range results {
		if res != nil {
			e.logger.Warnw("failed to process engagement",
				"post_id", post.ID,
				"user", engagements[i].User.Name,
				"error", res,
			)
			continue
		}
		processed++
	}

	elapsed := int(math.Round(time.Since(started).Seconds()))
	if err := e.store.MarkPostCompleted(ctx, database.MarkPostCompletedParams{
		ID:                    post.ID,
		ProcessedEngagements:  processed,
		ProcessingTimeSeconds: elapsed,
	}); err != nil {
		return err
	}

	e.logger.Infow("processed post",
		"post_id", post.ID,
		"leads", processed,
		"engagements", len(engagements),
		"seconds", elapsed,
	)

	// The post is already completed; refinement only improves leads and its
	// failures never surface as a post failure.
	if e.refiner != nil {
		e.refineLeads(ctx, post, engagements)
	}
	return nil
}

// processEngagement enriches a single engager into a lead. Profile fetch
// failure degrades to a minimal lead built from engagement context instead
// of dropping the engager.
func (e *Enricher) processEngagement(ctx context.Context, post database.Post, prov provider.Provider, engagement provider.EngagementData) error {
	exists, err := e.store.LeadExists(ctx, database.LeadExistsParams{
		PostID: post.ID,
		URN:    engagement.User.URN,
	})
	if err != nil {
		return err
	}
	if exists {
		e.logger.Debugw("lead already exists", "post_id", post.ID, "urn", engagement.User.URN)
		return nil
	}

	profile, err := prov.ExtractProfile(ctx, engagement.User.URN)
	if err != nil {
		e.logger.Warnw("profile extraction failed, creating minimal lead",
			"user", engagement.User.Name, "error", err)
		profile = &provider.ProfileData{
			URN:        engagement.User.URN,
			ProfileURL: engagement.User.ProfileURL,
		}
	}

	// Profile endpoints do not carry name/headline reliably; the
	// engagement context wins.
	profile.Name = engagement.User.Name
	profile.Headline = engagement.User.Headline

	score := MatchScore(profile)

	guessedEmail := sql.NullString{}
	if guess := e.guesser.Guess(profile); guess != "" {
		guessedEmail = sql.NullString{String: guess, Valid: true}
	}

	education := make(database.EducationList, len(profile.Education))
	for i, edu := range profile.Education {
		education[i] = database.Education(edu)
	}
	experience := make(database.ExperienceList, len(profile.Experience))
	for i, exp := range profile.Experience {
		experience[i] = database.Experience(exp)
	}

	_, err = e.store.CreateLead(ctx, database.CreateLeadParams{
		ID:                uuid.New(),
		PostID:            post.ID,
		UserID:            post.UserID,
		URN:               profile.URN,
		Name:              profile.Name,
		Headline:          profile.Headline,
		ProfileURL:        profile.ProfileURL,
		Location:          database.Location(profile.Location),
		Education:         education,
		Experience:        experience,
		EngagementType:    string(engagement.Type),
		EngagementContent: engagement.Content,
		MatchScore:        score,
		GuessedEmail:      guessedEmail,
		ExpiresAt:         time.Now().Add(LeadTTL),
	})
	return err
}
