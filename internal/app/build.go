package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/config"
	"github.com/ent0n29/voiceeval/internal/evaluations"
	"github.com/ent0n29/voiceeval/internal/httpapi"
	"github.com/ent0n29/voiceeval/internal/interview"
	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/roles"
	"github.com/ent0n29/voiceeval/internal/session"
	"github.com/ent0n29/voiceeval/internal/webhook"
)

type BuildResult struct {
	Config      config.Config
	API         *httpapi.Server
	Sessions    *session.Store
	Interviews  *interview.Service
	Dispatcher  *webhook.Dispatcher
	Evaluations evaluations.Store
	Metrics     *observability.Metrics

	// Cleanup releases the evaluation store. Call it after the HTTP server stops.
	Cleanup func() error
}

// Build wires every component from cfg. The session janitor is not started;
// callers own its context.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*BuildResult, error) {
	if log == nil {
		log = zap.NewNop()
	}

	registry, err := roles.NewRegistry(cfg.Roles)
	if err != nil {
		return nil, fmt.Errorf("role registry init failed: %w", err)
	}
	if !registry.Configured() {
		log.Warn("no role has an assistant id configured; session start will fail")
	}

	store, err := evaluations.NewStore(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("evaluation store init failed: %w", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	sessions := session.NewStore(cfg.SessionTTL)
	sessions.SetExpireHook(func(s *session.Session) {
		metrics.ObserveSessionEvent("expired", sessions.ActiveCount())
		log.Warn("session expired without a report",
			zap.String("session_id", s.ID),
			zap.String("assistant_id", s.AssistantID),
		)
	})

	interviews := interview.New(registry, sessions, cfg.PublicKey, metrics, log.Named("interview"))
	correlator := webhook.NewCorrelator(sessions, metrics, log.Named("correlator"))
	reporter := webhook.NewReporter(webhook.ReporterConfig{
		LatestSessionFallback: cfg.LatestSessionFallback,
	}, sessions, store, metrics, log.Named("reporter"))
	dispatcher := webhook.NewDispatcher(correlator, reporter, metrics, log.Named("webhook"))

	api := httpapi.New(cfg, registry, interviews, dispatcher, store, metrics, log.Named("http"))

	return &BuildResult{
		Config:      cfg,
		API:         api,
		Sessions:    sessions,
		Interviews:  interviews,
		Dispatcher:  dispatcher,
		Evaluations: store,
		Metrics:     metrics,
		Cleanup:     store.Close,
	}, nil
}
