package evaluations

import (
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, session_id, user_email, candidate_name, role, created_at, duration_minutes,
	score_1, score_2, score_3, score_4, score_5, overall_score,
	strength_1, strength_2, strength_3, improvement_1, improvement_2,
	recommendation, transcript`

func insertStatement(placeholder func(int) string) string {
	ph := make([]string, 20)
	for i := range ph {
		ph[i] = placeholder(i + 1)
	}
	return fmt.Sprintf(`INSERT INTO evaluations (%s) VALUES (%s)`, recordColumns, strings.Join(ph, ", "))
}

func insertArgs(r Record) []any {
	return []any{
		r.ID, r.SessionID, r.UserEmail, r.CandidateName, r.Role, r.Timestamp, r.DurationMinutes,
		r.Score1, r.Score2, r.Score3, r.Score4, r.Score5, r.OverallScore,
		r.Strength1, r.Strength2, r.Strength3, r.Improvement1, r.Improvement2,
		r.Recommendation, r.Transcript,
	}
}

func selectStatement(f Filter, placeholder func(int) string) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = %s", column, placeholder(len(args))))
	}
	add("user_email", f.UserEmail)
	add("role", f.Role)
	add("session_id", f.SessionID)

	q := "SELECT " + recordColumns + " FROM evaluations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += " LIMIT " + placeholder(len(args))
	}
	return q, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.SessionID, &r.UserEmail, &r.CandidateName, &r.Role, &r.Timestamp, &r.DurationMinutes,
		&r.Score1, &r.Score2, &r.Score3, &r.Score4, &r.Score5, &r.OverallScore,
		&r.Strength1, &r.Strength2, &r.Strength3, &r.Improvement1, &r.Improvement2,
		&r.Recommendation, &r.Transcript,
	)
	return r, err
}

func prepareRecord(r Record, newID func() string, now func() time.Time) Record {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now()
	}
	r.Timestamp = r.Timestamp.UTC()
	return r
}
