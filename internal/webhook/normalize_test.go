package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ent0n29/voiceeval/internal/session"
)

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 7, DurationMinutes("2024-01-01T10:00:00Z", "2024-01-01T10:07:30Z"))
	assert.Equal(t, 1, DurationMinutes("2024-01-01T10:00:00Z", ""))
	assert.Equal(t, 1, DurationMinutes("", "2024-01-01T10:07:30Z"))
	assert.Equal(t, 1, DurationMinutes("2024-01-01T10:00:00Z", "yesterday"))
	assert.Equal(t, 1, DurationMinutes("2024-01-01T10:00:00Z", "2024-01-01T10:00:20Z"))
	assert.Equal(t, 1, DurationMinutes("2024-01-01T10:10:00Z", "2024-01-01T10:00:00Z"))
	assert.Equal(t, 12, DurationMinutes("2024-01-01T10:00:00.123Z", "2024-01-01T12:12:59+02:00"))
	assert.Equal(t, 3, DurationMinutes("2024-01-01T10:00:00", "2024-01-01T10:03:00"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "éé", Truncate("éééé", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestBuildRecordDefaultsAndTruncation(t *testing.T) {
	sess := &session.Session{
		ID:            "session_team_lead_1",
		RoleTitle:     "Team Lead",
		CandidateName: "Ada",
		UserEmail:     "ada@example.com",
	}
	long := strings.Repeat("x", 900)
	transcript := strings.Repeat("t", 5000)
	ev := &Event{Transcript: &transcript, StartedAt: "2024-01-01T10:00:00Z", EndedAt: "2024-01-01T10:07:30Z"}
	s1 := 9.0
	scores := Scores{Source: SourceAnalysis, S1: &s1, Strength1: &long}
	now := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	rec := BuildRecord(sess, ev, scores, now)
	assert.Equal(t, "session_team_lead_1", rec.SessionID)
	assert.Equal(t, "ada@example.com", rec.UserEmail)
	assert.Equal(t, "Team Lead", rec.Role)
	assert.Equal(t, now, rec.Timestamp)
	assert.Equal(t, 7, rec.DurationMinutes)
	assert.Equal(t, 9, rec.Score1)
	assert.Equal(t, 0, rec.Score2)
	assert.Equal(t, 9.0, rec.OverallScore)
	assert.Len(t, rec.Strength1, 500)
	assert.Equal(t, "N/A", rec.Strength2)
	assert.Equal(t, "N/A", rec.Recommendation)
	assert.Len(t, rec.Transcript, 3000)
}

func TestBuildRecordTranscriptPlaceholder(t *testing.T) {
	rec := BuildRecord(&session.Session{ID: "s"}, &Event{}, Scores{Source: SourceEmpty}, time.Now())
	assert.Equal(t, "No transcript available", rec.Transcript)
	assert.Equal(t, 1, rec.DurationMinutes)
	assert.Equal(t, 0.0, rec.OverallScore)
}
