package webhook

import (
	"strings"
	"time"

	"github.com/ent0n29/voiceeval/internal/evaluations"
	"github.com/ent0n29/voiceeval/internal/session"
)

const (
	missingText       = "N/A"
	missingTranscript = "No transcript available"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DurationMinutes returns the floored call length in whole minutes, never
// less than one. Missing or unreadable timestamps count as one minute.
func DurationMinutes(startedAt, endedAt string) int {
	start, ok := parseTimestamp(startedAt)
	if !ok {
		return 1
	}
	end, ok := parseTimestamp(endedAt)
	if !ok {
		return 1
	}
	minutes := (end.UnixMilli() - start.UnixMilli()) / 60000
	if minutes < 1 {
		return 1
	}
	return int(minutes)
}

// Truncate keeps at most max characters of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func textOr(v *string) string {
	if v == nil {
		return missingText
	}
	return Truncate(*v, evaluations.MaxTextLen)
}

// BuildRecord maps a session and its end-of-call event onto the fixed
// evaluation schema.
func BuildRecord(sess *session.Session, ev *Event, scores Scores, now time.Time) evaluations.Record {
	transcript := missingTranscript
	if ev.Transcript != nil {
		transcript = *ev.Transcript
	}
	return evaluations.Record{
		SessionID:       sess.ID,
		UserEmail:       sess.UserEmail,
		CandidateName:   Truncate(sess.CandidateName, evaluations.MaxTextLen),
		Role:            Truncate(sess.RoleTitle, evaluations.MaxTextLen),
		Timestamp:       now.UTC(),
		DurationMinutes: DurationMinutes(ev.StartedAt, ev.EndedAt),

		Score1:       scoreInt(scores.S1),
		Score2:       scoreInt(scores.S2),
		Score3:       scoreInt(scores.S3),
		Score4:       scoreInt(scores.S4),
		Score5:       scoreInt(scores.S5),
		OverallScore: scores.overallScore(),

		Strength1:    textOr(scores.Strength1),
		Strength2:    textOr(scores.Strength2),
		Strength3:    textOr(scores.Strength3),
		Improvement1: textOr(scores.Improvement1),
		Improvement2: textOr(scores.Improvement2),

		Recommendation: textOr(scores.Recommendation),
		Transcript:     Truncate(transcript, evaluations.MaxTranscriptLen),
	}
}
