package authclient

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authclient/store"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Client is the session controller for one backend origin.
type Client struct {
	cfg      Config
	store    store.Store
	http     *http.Client
	notifier Notifier
	logger   *logrus.Entry
	tracer   trace.Tracer
	metrics  *Metrics
	audit    *auditDispatcher
	state    *StateContainer

	csrfURL   string
	loginURL  string
	logoutURL string

	loginBusy   atomic.Bool
	logoutGroup singleflight.Group
}

func (c *Client) initialState() SessionState {
	v, ok := c.store.Get(c.cfg.Cookies.LoggedIn)
	return SessionState{IsLoggedIn: ok && v == loggedInValue}
}

// State returns the current session state.
func (c *Client) State() SessionState {
	return c.state.Current()
}

// Subscribe calls fn after every state change until the returned func is called.
func (c *Client) Subscribe(fn func(SessionState)) func() {
	return c.state.Subscribe(fn)
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// MetricsSnapshot returns a copy of the client's counters and histograms.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events discarded because the dispatcher buffer was full.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close flushes buffered audit events. The client must not be used afterwards.
func (c *Client) Close() {
	c.audit.Close()
}

func (c *Client) setState(next SessionState) {
	prev := c.state.Current()
	if !c.state.set(next) {
		return
	}
	c.metrics.Inc(MetricStateChange)
	c.logger.WithFields(logrus.Fields{
		"from": prev.State().String(),
		"to":   next.State().String(),
	}).Info("session state changed")
}

func (c *Client) reject(ctx context.Context, op Operation, res response) error {
	c.notifier.Notify(context.WithoutCancel(ctx), Notice{
		Operation: op,
		Kind:      NoticeRejected,
		Status:    res.status,
		Message:   res.message,
	})
	return &RejectedError{Operation: op, Status: res.status, Message: res.message, Body: res.body}
}

func (c *Client) unavailable(ctx context.Context, op Operation, cause error) error {
	c.notifier.Notify(context.WithoutCancel(ctx), Notice{
		Operation: op,
		Kind:      NoticeUnavailable,
		Message:   c.cfg.Messages.Unavailable,
	})
	return &UnavailableError{Operation: op, Err: cause}
}

var outcomeMetrics = map[Operation]map[outcome]MetricID{
	OpBootstrap: {
		outcomeSuccess:     MetricBootstrapSuccess,
		outcomeRejected:    MetricBootstrapRejected,
		outcomeUnavailable: MetricBootstrapUnavailable,
	},
	OpLogin: {
		outcomeSuccess:     MetricLoginSuccess,
		outcomeRejected:    MetricLoginRejected,
		outcomeUnavailable: MetricLoginUnavailable,
	},
	OpLogout: {
		outcomeSuccess:     MetricLogoutSuccess,
		outcomeRejected:    MetricLogoutRejected,
		outcomeUnavailable: MetricLogoutUnavailable,
	},
}

// record closes out one backend call: metrics, audit, log line and span.
func (c *Client) record(ctx context.Context, span trace.Span, op Operation, res response, err error) {
	o := outcomeSuccess
	switch {
	case isUnavailable(err):
		o = outcomeUnavailable
	case err != nil:
		o = outcomeRejected
	}
	c.metrics.Inc(outcomeMetrics[op][o])

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditEventType(op, o),
		Operation: op,
		RequestID: res.requestID,
		Status:    res.status,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.audit.Emit(ctx, event)

	entry := c.logger.WithFields(logrus.Fields{
		"operation":  string(op),
		"outcome":    string(o),
		"status":     res.status,
		"request_id": res.requestID,
	})
	if o == outcomeUnavailable {
		entry.WithError(err).Warn("backend call failed")
	} else {
		entry.Debug("backend call finished")
	}

	endSpan(span, res.status, err)
}
