package main

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"

	"github.com/gruntwork-io/gruntwork-cli/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/internal/config"
	"github.com/MrEthical07/authclient/store"
)

// profile is one "page load": a client over the saved cookies of a profile.
type profile struct {
	client  *authclient.Client
	jar     *store.Jar
	closers []func() error
}

func (p *profile) Close() error {
	p.client.Close()
	return p.closeResources()
}

func (p *profile) closeResources() error {
	var first error
	for _, fn := range p.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openProfile restores the profile's cookies and builds a client over them. Notices
// are written to notices.
func openProfile(ctx context.Context, cfg *config.Config, logger *logrus.Entry, notices io.Writer) (*profile, error) {
	p := &profile{}
	persister, closeFn, err := newPersister(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		p.closers = append(p.closers, closeFn)
	}

	jar, err := store.NewJar(ctx, cfg.BaseURL, store.JarOptions{
		Persister: persister,
		Logger:    logger,
	})
	if err != nil {
		p.closeResources()
		return nil, errors.WithStackTrace(err)
	}
	p.jar = jar

	client, err := authclient.New().
		WithConfig(cfg.ClientConfig()).
		WithStore(jar).
		WithHTTPClient(newHTTPClient(cfg, logger)).
		WithNotifier(authclient.NewWriterNotifier(notices)).
		WithLogger(logger).
		Build()
	if err != nil {
		p.closeResources()
		return nil, errors.WithStackTrace(err)
	}
	p.client = client
	return p, nil
}

// newPersister picks Redis when a URL is configured and a per-profile file otherwise.
func newPersister(cfg *config.Config, logger *logrus.Entry) (store.Persister, func() error, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, errors.WithStackTrace(err)
		}
		rdb := redis.NewClient(opts)
		p := store.NewRedisPersister(rdb, store.DefaultRedisPrefix, cfg.Profile)
		logger.WithField("key", p.Key()).Debug("persisting cookies to redis")
		return p, rdb.Close, nil
	}

	path, err := store.DefaultFilePath(cfg.StateDir, cfg.Profile)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("path", path).Debug("persisting cookies to file")
	return store.NewFilePersister(path), nil, nil
}

func newHTTPClient(cfg *config.Config, logger *logrus.Entry) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport}
}
