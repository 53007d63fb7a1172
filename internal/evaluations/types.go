package evaluations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("evaluation not found")
	ErrDuplicate = errors.New("evaluation already stored for session")
)

const (
	MaxTextLen       = 500
	MaxTranscriptLen = 3000
)

// Record is one committed interview evaluation. It is never updated.
type Record struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	UserEmail       string    `json:"user_email"`
	CandidateName   string    `json:"candidate_name"`
	Role            string    `json:"role"`
	Timestamp       time.Time `json:"created_at"`
	DurationMinutes int       `json:"duration_minutes"`

	Score1       int     `json:"score_1"`
	Score2       int     `json:"score_2"`
	Score3       int     `json:"score_3"`
	Score4       int     `json:"score_4"`
	Score5       int     `json:"score_5"`
	OverallScore float64 `json:"overall_score"`

	Strength1    string `json:"strength_1"`
	Strength2    string `json:"strength_2"`
	Strength3    string `json:"strength_3"`
	Improvement1 string `json:"improvement_1"`
	Improvement2 string `json:"improvement_2"`

	Recommendation string `json:"recommendation"`
	Transcript     string `json:"transcript"`
}

// Filter selects records by equality on the non-empty fields. Results are
// newest first; Limit <= 0 means no limit.
type Filter struct {
	UserEmail string
	Role      string
	SessionID string
	Limit     int
}

func (f Filter) matches(r Record) bool {
	if f.UserEmail != "" && r.UserEmail != f.UserEmail {
		return false
	}
	if f.Role != "" && r.Role != f.Role {
		return false
	}
	if f.SessionID != "" && r.SessionID != f.SessionID {
		return false
	}
	return true
}

// Store persists evaluation records.
type Store interface {
	Insert(ctx context.Context, record Record) error
	Query(ctx context.Context, filter Filter) ([]Record, error)
	Close() error
}

// Get returns the record for sessionID or ErrNotFound.
func Get(ctx context.Context, store Store, sessionID string) (Record, error) {
	records, err := store.Query(ctx, Filter{SessionID: sessionID, Limit: 1})
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}
