// SPDX-License-Identifier: AGPL-3.0-only
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// URN patterns are tried in order, first match wins.
var linkedInURNPatterns = []*regexp.Regexp{
	regexp.MustCompile(`activity-(\d+)`),
	regexp.MustCompile(`posts/([^?]+)`),
	regexp.MustCompile(`urn:li:activity:(\d+)`),
}

var (
	errRateLimited  = errors.New("rate limit exceeded, wait before retrying or upgrade the API plan")
	errAccessDenied = errors.New("API access denied, check the API key and subscription status")
)

type postInfoResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Post *struct {
			Text   string `json:"text"`
			Author struct {
				Name       string `json:"name"`
				ProfileURL string `json:"profileUrl"`
				URN        string `json:"urn"`
			} `json:"author"`
			LikesCount    int `json:"likesCount"`
			CommentsCount int `json:"commentsCount"`
			SharesCount   int `json:"sharesCount"`
		} `json:"post"`
	} `json:"data"`
}

type postCommentsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Comments []struct {
			Text    string `json:"text"`
			Content string `json:"content"`
			Message string `json:"message"`
			Author  struct {
				Name       string `json:"name"`
				ProfileURL string `json:"profileUrl"`
				URN        string `json:"urn"`
				Headline   string `json:"headline"`
			} `json:"author"`
		} `json:"comments"`
	} `json:"data"`
}

type profileEducationResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Education []struct {
			University     string `json:"university"`
			Degree         string `json:"degree"`
			FieldOfStudy   string `json:"fieldOfStudy"`
			DurationParsed struct {
				Start struct {
					Year int `json:"year"`
				} `json:"start"`
				End struct {
					Year int `json:"year"`
				} `json:"end"`
			} `json:"durationParsed"`
		} `json:"education"`
	} `json:"data"`
}

type profileFullResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Location struct {
			Country string `json:"country"`
			City    string `json:"city"`
		} `json:"location"`
		Experience []struct {
			Title          string `json:"title"`
			CompanyName    string `json:"companyName"`
			DurationParsed struct {
				Start struct {
					Year int `json:"year"`
				} `json:"start"`
				End struct {
					Year int `json:"year"`
				} `json:"end"`
			} `json:"durationParsed"`
		} `json:"experience"`
	} `json:"data"`
}

type profileContactResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Website  string `json:"website"`
		Location struct {
			Country string `json:"country"`
			City    string `json:"city"`
		} `json:"location"`
	} `json:"data"`
}

// LinkedIn talks to a RapidAPI LinkedIn aggregator. All endpoints are
// read-only GETs authenticated with two static headers.
type LinkedIn struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger

	apiHost string
	apiKey  string
	baseURL string
}

type LinkedInConfig struct {
	APIHost string
	APIKey  string

	// RPS limits outbound calls so a profile fan-out does not trip the
	// aggregator's quota. Zero means 5 rps.
	RPS int

	Timeout time.Duration
}

func NewLinkedIn(cfg LinkedInConfig, logger *zap.SugaredLogger) *LinkedIn {
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &LinkedIn{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		logger:     logger,
		apiHost:    cfg.APIHost,
		apiKey:     cfg.APIKey,
		baseURL:    "https://" + cfg.APIHost,
	}
}

func (l *LinkedIn) Name() string { return "LinkedIn" }

func (l *LinkedIn) ExtractPostID(url string) (string, error) {
	for _, pattern := range linkedInURNPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
}

func (l *LinkedIn) ExtractPostData(ctx context.Context, url string) (*PostData, error) {
	postURN, err := l.ExtractPostID(url)
	if err != nil {
		return nil, err
	}

	var resp postInfoResponse
	if err := l.getJSON(ctx, l.baseURL+"/api/v1/posts/info?urn="+postURN, &resp); err != nil {
		return nil, &ExtractionError{Op: "post data", Err: err}
	}

	if resp.Data.Post == nil {
		return nil, &ExtractionError{Op: "post data", Err: errors.New("post not found in API response")}
	}

	post := resp.Data.Post
	return &PostData{
		ID:       postURN,
		URL:      url,
		Platform: "linkedin",
		Content:  post.Text,
		Author: Author{
			Name:       post.Author.Name,
			ProfileURL: post.Author.ProfileURL,
			URN:        post.Author.URN,
		},
		Metrics: Metrics{
			Likes:    post.LikesCount,
			Comments: post.CommentsCount,
			Shares:   post.SharesCount,
		},
	}, nil
}

// ExtractEngagements fetches comments (required) and likes (best-effort).
// Only comment authors currently resolve to a real identity, so every
// returned engagement is typed as a comment.
func (l *LinkedIn) ExtractEngagements(ctx context.Context, postURN string) ([]EngagementData, error) {
	var commentsResp postCommentsResponse
	if err := l.getJSON(ctx, l.baseURL+"/api/v1/posts/comments?urn="+postURN, &commentsResp); err != nil {
		return nil, &ExtractionError{Op: "engagements", Err: err}
	}

	engagements := []EngagementData{}
	if commentsResp.Success {
		for _, comment := range commentsResp.Data.Comments {
			if comment.Author.URN == "" {
				continue
			}

			content := comment.Text
			if content == "" {
				content = comment.Content
			}
			if content == "" {
				content = comment.Message
			}

			engagements = append(engagements, EngagementData{
				Type: EngagementComment,
				User: EngagedUser{
					Name:       comment.Author.Name,
					ProfileURL: comment.Author.ProfileURL,
					URN:        comment.Author.URN,
					Headline:   comment.Author.Headline,
				},
				Content: content,
			})
		}
	}

	// Likes are not attributable to a profile URN on this aggregator yet,
	// so a failure here never fails the call.
	var likesResp json.RawMessage
	if err := l.getJSON(ctx, l.baseURL+"/api/v1/posts/likes?urn="+postURN, &likesResp); err != nil {
		l.logger.Warnw("likes extraction failed", "post_urn", postURN, "error", err)
	}

	return engagements, nil
}

// ExtractProfile fetches education (required) and the full profile
// (best-effort, carries experience and location). When neither source has a
// location, contact info is tried as a fallback. Name and headline are left
// for the caller to fill from engagement context.
func (l *LinkedIn) ExtractProfile(ctx context.Context, profileURN string) (*ProfileData, error) {
	var eduResp profileEducationResponse
	if err := l.getJSON(ctx, l.baseURL+"/api/v1/profile/education?urn="+profileURN, &eduResp); err != nil {
		return nil, &ExtractionError{Op: "profile", Err: err}
	}

	var fullResp profileFullResponse
	if err := l.getJSON(ctx, l.baseURL+"/api/v1/profile/full?urn="+profileURN, &fullResp); err != nil {
		l.logger.Warnw("full profile extraction failed", "profile_urn", profileURN, "error", err)
		fullResp = profileFullResponse{}
	}

	var contactResp profileContactResponse
	if fullResp.Data.Location.Country == "" && fullResp.Data.Location.City == "" {
		if err := l.getJSON(ctx, l.baseURL+"/api/v1/profile/contact-info?username="+profileURN, &contactResp); err != nil {
			l.logger.Warnw("contact info extraction failed", "profile_urn", profileURN, "error", err)
			contactResp = profileContactResponse{}
		}
	}

	education := make([]Education, 0, len(eduResp.Data.Education))
	for _, edu := range eduResp.Data.Education {
		education = append(education, Education{
			Institution:  edu.University,
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			StartYear:    edu.DurationParsed.Start.Year,
			EndYear:      edu.DurationParsed.End.Year,
		})
	}

	experience := make([]Experience, 0, len(fullResp.Data.Experience))
	for _, exp := range fullResp.Data.Experience {
		experience = append(experience, Experience{
			Company:   exp.CompanyName,
			Title:     exp.Title,
			StartYear: exp.DurationParsed.Start.Year,
			EndYear:   exp.DurationParsed.End.Year,
			Current:   exp.DurationParsed.Start.Year != 0 && exp.DurationParsed.End.Year == 0,
		})
	}

	location := Location{
		Country: fullResp.Data.Location.Country,
		City:    fullResp.Data.Location.City,
	}
	if location.Country == "" {
		location.Country = contactResp.Data.Location.Country
	}
	if location.City == "" {
		location.City = contactResp.Data.Location.City
	}

	return &ProfileData{
		URN:        profileURN,
		ProfileURL: "https://linkedin.com/in/" + profileURN,
		Location:   location,
		Education:  education,
		Experience: experience,
		Contact: Contact{
			Email:   contactResp.Data.Email,
			Phone:   contactResp.Data.Phone,
			Website: contactResp.Data.Website,
		},
	}, nil
}

func (l *LinkedIn) getJSON(ctx context.Context, url string, out any) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-host", l.apiHost)
	req.Header.Set("x-rapidapi-key", l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errRateLimited
	case http.StatusForbidden:
		return errAccessDenied
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %v: %v", resp.StatusCode, resp.Status)
	}

	return json.Unmarshal(data, out)
}
