package webhook

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ent0n29/voiceeval/internal/observability"
	"github.com/ent0n29/voiceeval/internal/redact"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Ack is returned to the platform for every callback, successful or not.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Dispatcher routes platform callbacks by event type. It never fails: every
// problem is folded into an error Ack.
type Dispatcher struct {
	correlator *Correlator
	reporter   *Reporter
	metrics    *observability.Metrics
	log        *zap.Logger
}

func NewDispatcher(correlator *Correlator, reporter *Reporter, metrics *observability.Metrics, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{correlator: correlator, reporter: reporter, metrics: metrics, log: log}
}

func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (ack Ack) {
	eventType := ""
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("webhook handler panic", zap.Any("panic", rec), zap.Stack("stack"))
			ack = Ack{Status: StatusError, Message: fmt.Sprint(rec)}
		}
		d.metrics.ObserveWebhook(eventType, ack.Status)
	}()

	ev, err := ParseEvent(raw)
	if err != nil {
		d.log.Warn("unreadable webhook payload", zap.Error(err))
		d.log.Debug("unreadable webhook payload body", zap.String("body", redact.Excerpt(string(raw), 300)))
		return Ack{Status: StatusError, Message: err.Error()}
	}
	eventType = ev.Type
	d.log.Info("received event", zap.String("type", ev.Type), zap.String("call_id", ev.CallID))

	switch ev.Type {
	case TypeAssistantRequest:
		d.correlator.Correlate(ev)
	case TypeEndOfCallReport:
		if _, err := d.reporter.Commit(ctx, ev); err != nil {
			return Ack{Status: StatusError, Message: err.Error()}
		}
	default:
		eventType = "other"
	}
	return Ack{Status: StatusOK}
}
