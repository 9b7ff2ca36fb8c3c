package authclient

import (
	"net/http"

	"github.com/MrEthical07/authclient/store"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Builder assembles a Client. A Builder can be built once.
type Builder struct {
	config Config

	store          store.Store
	httpClient     *http.Client
	notifier       Notifier
	auditSink      AuditSink
	logger         *logrus.Entry
	tracerProvider trace.TracerProvider

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the session store. When the store is also an http.CookieJar and
// the HTTP client has no jar, the store becomes the client's jar.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithHTTPClient sets the HTTP client. The client is copied, never mutated.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(l *logrus.Entry) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Client. The initial
// session state is read from the store; no request is sent.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrStoreRequired
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("base_url", cfg.BaseURL)

	httpClient := &http.Client{}
	if b.httpClient != nil {
		copied := *b.httpClient
		httpClient = &copied
	}
	if httpClient.Jar == nil {
		if jar, ok := b.store.(http.CookieJar); ok {
			httpClient.Jar = jar
		} else {
			logger.Warn("session store is not a cookie jar; server cookies will not reach it")
		}
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoOpNotifier{}
	}

	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	c := &Client{
		cfg:       cfg,
		store:     b.store,
		http:      httpClient,
		notifier:  notifier,
		logger:    logger,
		tracer:    tp.Tracer(tracerName),
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink, logger),
		csrfURL:   cfg.endpoint(cfg.Endpoints.CSRF),
		loginURL:  cfg.endpoint(cfg.Endpoints.Login),
		logoutURL: cfg.endpoint(cfg.Endpoints.Logout),
	}
	c.state = NewStateContainer(c.initialState())

	b.built = true
	return c, nil
}
