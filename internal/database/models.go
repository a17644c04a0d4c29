// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post statuses. Terminal states are not re-entered for the same post.
const (
	PostStatusPending    = "pending"
	PostStatusProcessing = "processing"
	PostStatusCompleted  = "completed"
	PostStatusFailed     = "failed"
)

type Post struct {
	ID                    uuid.UUID      `db:"id"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	URL                   string         `db:"url"`
	Platform              string         `db:"platform"`
	PostID                string         `db:"post_id"`
	UserID                uuid.UUID      `db:"user_id"`
	Content               sql.NullString `db:"content"`
	Author                Author         `db:"author"`
	Metrics               Metrics        `db:"metrics"`
	Status                string         `db:"status"`
	ErrorMessage          sql.NullString `db:"error_message"`
	StartedAt             sql.NullTime   `db:"started_at"`
	ProcessedAt           sql.NullTime   `db:"processed_at"`
	TotalEngagements      int            `db:"total_engagements"`
	ProcessedEngagements  int            `db:"processed_engagements"`
	ProcessingTimeSeconds sql.NullInt32  `db:"processing_time_seconds"`
	ExpiresAt             sql.NullTime   `db:"expires_at"`
}

type Lead struct {
	ID                uuid.UUID      `db:"id"`
	CreatedAt         time.Time      `db:"created_at"`
	PostID            uuid.UUID      `db:"post_id"`
	UserID            uuid.UUID      `db:"user_id"`
	URN               string         `db:"urn"`
	Name              string         `db:"name"`
	Headline          string         `db:"headline"`
	ProfileURL        string         `db:"profile_url"`
	Location          Location       `db:"location"`
	Education         EducationList  `db:"education"`
	Experience        ExperienceList `db:"experience"`
	EngagementType    string         `db:"engagement_type"`
	EngagementContent string         `db:"engagement_content"`
	MatchScore        int            `db:"match_score"`
	GuessedEmail      sql.NullString `db:"guessed_email"`
	Tags              pq.StringArray `db:"tags"`
	Exported          bool           `db:"exported"`
	ExpiresAt         sql.NullTime   `db:"expires_at"`
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

type EducationList []Education

type ExperienceList []Experience

func (a Author) Value() (driver.Value, error)  { return json.Marshal(a) }
func (a *Author) Scan(src any) error           { return scanJSON(src, a) }
func (m Metrics) Value() (driver.Value, error) { return json.Marshal(m) }
func (m *Metrics) Scan(src any) error          { return scanJSON(src, m) }

func (l Location) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *Location) Scan(src any) error          { return scanJSON(src, l) }

func (e EducationList) Value() (driver.Value, error) {
	if e == nil {
		return json.Marshal([]Education{})
	}
	return json.Marshal(e)
}

func (e *EducationList) Scan(src any) error { return scanJSON(src, e) }

func (e ExperienceList) Value() (driver.Value, error) {
	if e == nil {
		return json.Marshal([]Experience{})
	}
	return json.Marshal(e)
}

func (e *ExperienceList) Scan(src any) error { return scanJSON(src, e) }

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
