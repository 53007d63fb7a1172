package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/config"
	"github.com/ent0n29/voiceeval/internal/evaluations"
	"github.com/ent0n29/voiceeval/internal/interview"
	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/redact"
	"github.com/ent0n29/voiceeval/internal/roles"
	"github.com/ent0n29/voiceeval/internal/webhook"
)

const (
	Version = "2.2.0"

	maxWebhookBody = 8 << 20
	roleQueryLimit = 10
)

type Server struct {
	cfg         config.Config
	roles       *roles.Registry
	interviews  *interview.Service
	dispatcher  *webhook.Dispatcher
	evaluations evaluations.Store
	metrics     *observability.Metrics
	log         *zap.Logger
}

func New(cfg config.Config, registry *roles.Registry, interviews *interview.Service, dispatcher *webhook.Dispatcher, store evaluations.Store, metrics *observability.Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:         cfg,
		roles:       registry,
		interviews:  interviews,
		dispatcher:  dispatcher,
		evaluations: store,
		metrics:     metrics,
		log:         log,
	}
}

// Handler returns the router wrapped in the CORS policy. Browsers call the
// session and read endpoints directly, so every origin is allowed.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Get("/roles", s.handleListRoles)
	r.Post("/session/start", s.handleStartSession)
	r.Post("/webhook/vapi", s.handleWebhook)

	r.Get("/evaluations/{email}", s.handleListEvaluations)
	r.Get("/evaluations/{email}/role/{role}", s.handleListEvaluationsByRole)
	r.Get("/evaluation/{sessionID}", s.handleGetEvaluation)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "running",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"vapi_configured":  s.cfg.PublicKey != "",
		"store_configured": s.evaluations != nil,
		"store_driver":     s.cfg.StoreDriver,
		"roles_configured": s.roles.Configured(),
	})
}

func (s *Server) handleListRoles(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.interviews.Roles())
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req interview.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.interviews.StartSession(r.Context(), req)
	if err != nil {
		var vErr *interview.ValidationError
		switch {
		case errors.Is(err, roles.ErrRoleUnavailable):
			respondError(w, http.StatusServiceUnavailable, "assistant_not_configured", "Assistant not configured")
		case errors.Is(err, roles.ErrUnknownRole):
			respondError(w, http.StatusBadRequest, "invalid_role", "Invalid role")
		case errors.As(err, &vErr):
			respondError(w, http.StatusBadRequest, "invalid_"+vErr.Field, vErr.Err.Error())
		default:
			s.log.Error("session start failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "session_start_failed", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleWebhook always answers 200; failures are reported in the body so the
// platform does not start redelivering.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.log.Warn("webhook body read failed", zap.Error(err))
		respondJSON(w, http.StatusOK, webhook.Ack{Status: webhook.StatusError, Message: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, s.dispatcher.Handle(r.Context(), body))
}

type evaluationsResponse struct {
	Evaluations []evaluations.Record `json:"evaluations"`
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	s.queryEvaluations(w, r, evaluations.Filter{UserEmail: email})
}

func (s *Server) handleListEvaluationsByRole(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	role := strings.TrimSpace(chi.URLParam(r, "role"))
	s.queryEvaluations(w, r, evaluations.Filter{
		UserEmail: email,
		Role:      s.roles.Title(role),
		Limit:     roleQueryLimit,
	})
}

func (s *Server) queryEvaluations(w http.ResponseWriter, r *http.Request, filter evaluations.Filter) {
	records, err := s.evaluations.Query(r.Context(), filter)
	if err != nil {
		s.log.Error("fetching evaluations failed", zap.String("user_email", redact.Email(filter.UserEmail)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "query_failed", "Failed to fetch evaluations: "+err.Error())
		return
	}
	s.log.Debug("fetched evaluations", zap.String("user_email", redact.Email(filter.UserEmail)), zap.Int("count", len(records)))
	respondJSON(w, http.StatusOK, evaluationsResponse{Evaluations: records})
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	record, err := evaluations.Get(r.Context(), s.evaluations, sessionID)
	if err != nil {
		if errors.Is(err, evaluations.ErrNotFound) {
			respondError(w, http.StatusNotFound, "evaluation_not_found", "Evaluation not found: "+sessionID)
			return
		}
		s.log.Error("fetching evaluation failed", zap.String("session_id", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "query_failed", "Failed to fetch evaluation: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, record)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
