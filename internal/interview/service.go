// Package interview starts interview sessions and binds them to the voice
// platform assistant that will run the call.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/redact"
	"github.com/ent0n29/voiceeval/internal/roles"
	"github.com/ent0n29/voiceeval/internal/session"
)

const MaxCandidateNameLen = 100

var (
	ErrInvalidCandidateName = errors.New("candidate name must be 1-100 characters")
	ErrInvalidEmail         = errors.New("invalid email address")
)

// ValidationError rejects a start request. It unwraps to the specific cause,
// including roles.ErrUnknownRole and roles.ErrRoleUnavailable.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type StartRequest struct {
	Role          string `json:"role"`
	CandidateName string `json:"candidate_name"`
	UserEmail     string `json:"user_email"`
}

type StartResult struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"sessionId"`
	PublicKey   string `json:"publicKey"`
	AssistantID string `json:"assistantId"`
	Scenario    string `json:"scenario"`
}

type Service struct {
	roles     *roles.Registry
	sessions  *session.Store
	publicKey string
	metrics   *observability.Metrics
	log       *zap.Logger
	now       func() time.Time

	idMu   sync.Mutex
	lastMS int64
}

func New(registry *roles.Registry, sessions *session.Store, publicKey string, metrics *observability.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		roles:     registry,
		sessions:  sessions,
		publicKey: publicKey,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Roles lists the roles a caller may start.
func (s *Service) Roles() []roles.Info {
	return s.roles.List()
}

func (s *Service) StartSession(_ context.Context, req StartRequest) (StartResult, error) {
	name := strings.TrimSpace(req.CandidateName)
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxCandidateNameLen {
		return StartResult{}, &ValidationError{Field: "candidate_name", Err: ErrInvalidCandidateName}
	}
	email := strings.TrimSpace(req.UserEmail)
	if !strings.Contains(email, "@") {
		return StartResult{}, &ValidationError{Field: "user_email", Err: ErrInvalidEmail}
	}
	role, err := s.roles.Resolve(req.Role)
	if err != nil {
		return StartResult{}, &ValidationError{Field: "role", Err: err}
	}

	now := s.now().UTC()
	created, err := s.sessions.Create(session.Session{
		ID:            s.nextSessionID(role.ID, now),
		RoleID:        role.ID,
		RoleTitle:     role.Title,
		CandidateName: name,
		Criteria:      role.Criteria,
		AssistantID:   role.AssistantID,
		UserEmail:     email,
		CreatedAt:     now,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("create session: %w", err)
	}
	s.metrics.ObserveSessionEvent("created", s.sessions.ActiveCount())

	s.log.Info("session created",
		zap.String("session_id", created.ID),
		zap.String("user_email", redact.Email(created.UserEmail)),
		zap.String("role", created.RoleTitle),
		zap.String("assistant_id", created.AssistantID),
	)

	return StartResult{
		Success:     true,
		SessionID:   created.ID,
		PublicKey:   s.publicKey,
		AssistantID: role.AssistantID,
		Scenario:    role.Scenario,
	}, nil
}

// nextSessionID returns session_<role>_<unix ms>. The millisecond part never
// repeats within the process, so ids issued in the same clock tick still differ.
func (s *Service) nextSessionID(roleID string, now time.Time) string {
	s.idMu.Lock()
	ms := now.UnixMilli()
	if ms <= s.lastMS {
		ms = s.lastMS + 1
	}
	s.lastMS = ms
	s.idMu.Unlock()
	return "session_" + roleID + "_" + strconv.FormatInt(ms, 10)
}
