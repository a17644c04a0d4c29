// SPDX-License-Identifier: AGPL-3.0-only

// Package genai talks to the generative-AI enrichment service. The service
// takes a batch of public profile URLs and returns whatever it could infer
// about each person; everything in the response is optional.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EnrichedProfile is one entry of the service's response. Score is nil when
// the service did not produce one.
type EnrichedProfile struct {
	Name        string `json:"name"`
	LinkedInURL string `json:"linkedin_url"`
	CurrentRole string `json:"current_role"`
	Education   string `json:"education"`
	Country     string `json:"country"`
	Email       string `json:"email"`
	Score       *int   `json:"score"`
}

type enrichRequest struct {
	Links []string `json:"links"`
}

type enrichResponse struct {
	Count int               `json:"count"`
	Data  []EnrichedProfile `json:"data"`
}

type Client struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
	baseURL    string
}

// NewClient builds a client for the enrichment service at baseURL. The
// service runs LLM calls per profile, so the timeout is generous.
func NewClient(baseURL string, logger *zap.SugaredLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// EnrichProfiles submits profile URLs for enrichment and returns the
// per-profile results. Entries can come back in any order and any subset.
func (c *Client) EnrichProfiles(ctx context.Context, links []string) ([]EnrichedProfile, error) {
	body, err := json.Marshal(enrichRequest{Links: links})
	if err != nil {
		return nil, fmt.Errorf("marshal enrich request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/enrich", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, %v. Body: %s", resp.StatusCode, resp.Status, string(bodyBytes))
	}

	var result enrichResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debugw("enrichment response received", "sent", len(links), "returned", len(result.Data))
	return result.Data, nil
}
