package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/evaluations"
	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/redact"
	"github.com/ent0n29/voiceeval/internal/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPersistence     = errors.New("persist evaluation")
)

// Resolution names how an end-of-call event was matched to its session.
type Resolution string

const (
	ResolvedByCall     Resolution = "call"
	ResolvedByMetadata Resolution = "metadata"
	// ResolvedByLatest is the lossy fallback: the newest open session is
	// assumed to own the call.
	ResolvedByLatest Resolution = "latest"
)

type ReporterConfig struct {
	// LatestSessionFallback enables matching an uncorrelated call to the most
	// recently created open session.
	LatestSessionFallback bool
}

// Reporter commits end-of-call reports and retires their sessions.
type Reporter struct {
	cfg      ReporterConfig
	sessions *session.Store
	store    evaluations.Store
	metrics  *observability.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewReporter(cfg ReporterConfig, sessions *session.Store, store evaluations.Store, metrics *observability.Metrics, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Resolve finds the session an end-of-call event belongs to.
func (r *Reporter) Resolve(ev *Event) (string, Resolution, error) {
	if ev.CallID != "" {
		if id, ok := r.sessions.SessionForCall(ev.CallID); ok {
			return id, ResolvedByCall, nil
		}
	}
	if ev.MetadataSessionID != "" {
		if _, err := r.sessions.Get(ev.MetadataSessionID); err == nil {
			return ev.MetadataSessionID, ResolvedByMetadata, nil
		}
	}
	if r.cfg.LatestSessionFallback {
		if s, ok := r.sessions.Latest(); ok {
			return s.ID, ResolvedByLatest, nil
		}
	}
	return "", "", ErrSessionNotFound
}

// Commit normalizes the event into an evaluation record, persists it and
// retires the session. The session survives a failed insert.
func (r *Reporter) Commit(ctx context.Context, ev *Event) (evaluations.Record, error) {
	sessionID, resolution, err := r.Resolve(ev)
	if err != nil {
		r.log.Error("no session for end-of-call report",
			zap.String("call_id", ev.CallID),
			zap.Int("open_sessions", r.sessions.ActiveCount()))
		return evaluations.Record{}, err
	}
	if resolution == ResolvedByLatest {
		r.log.Warn("call not correlated, using latest session",
			zap.String("call_id", ev.CallID), zap.String("session_id", sessionID))
	}

	scores, err := ExtractScores(ev)
	if err != nil {
		r.log.Warn("some score fields were unreadable", zap.String("session_id", sessionID), zap.Error(err))
	}

	var record evaluations.Record
	err = r.sessions.Finalize(sessionID, func(sess *session.Session) error {
		record = BuildRecord(sess, ev, scores, r.now())
		r.log.Info("saving evaluation",
			zap.String("session_id", sess.ID),
			zap.String("user_email", redact.Email(sess.UserEmail)),
			zap.String("score_source", string(scores.Source)),
			zap.Float64("overall_score", record.OverallScore))

		start := time.Now()
		if err := r.store.Insert(ctx, record); err != nil {
			r.log.Error("evaluation insert failed",
				zap.String("session_id", sess.ID),
				zap.String("transcript", redact.Excerpt(record.Transcript, 120)),
				zap.Error(err))
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		r.metrics.ObserveReportCommit(string(scores.Source), string(resolution), time.Since(start))
		return nil
	})
	switch {
	case errors.Is(err, session.ErrNotFound):
		return evaluations.Record{}, ErrSessionNotFound
	case err != nil:
		return evaluations.Record{}, err
	}

	r.metrics.ObserveSessionEvent("finalized", r.sessions.ActiveCount())
	r.log.Info("evaluation saved", zap.String("session_id", sessionID), zap.String("resolution", string(resolution)))
	return record, nil
}
