package webhook

import (
	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/session"
)

// Correlator links a platform call to the session that owns its assistant.
type Correlator struct {
	sessions *session.Store
	metrics  *observability.Metrics
	log      *zap.Logger
}

func NewCorrelator(sessions *session.Store, metrics *observability.Metrics, log *zap.Logger) *Correlator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Correlator{sessions: sessions, metrics: metrics, log: log}
}

// Correlate records call -> session when the event's assistant belongs to an
// open session. Calls this service did not start stay uncorrelated.
func (c *Correlator) Correlate(ev *Event) (string, bool) {
	if ev.CallID == "" || ev.AssistantID == "" {
		c.log.Debug("assistant-request without call or assistant id",
			zap.String("call_id", ev.CallID), zap.String("assistant_id", ev.AssistantID))
		return "", false
	}
	sessionID, ok := c.sessions.SessionForAssistant(ev.AssistantID)
	if !ok {
		c.log.Debug("no session for assistant", zap.String("assistant_id", ev.AssistantID))
		return "", false
	}
	if err := c.sessions.LinkCall(ev.CallID, sessionID); err != nil {
		// The session was retired between lookup and link.
		c.log.Debug("call link skipped", zap.String("session_id", sessionID), zap.Error(err))
		return "", false
	}
	c.metrics.ObserveSessionEvent("correlated", c.sessions.ActiveCount())
	c.log.Info("call mapped to session", zap.String("call_id", ev.CallID), zap.String("session_id", sessionID))
	return sessionID, true
}
