package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	gwerrors "github.com/gruntwork-io/gruntwork-cli/errors"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/internal/config"
	"github.com/MrEthical07/authclient/internal/devserver"
	project_logging "github.com/MrEthical07/authclient/internal/logging"
	"github.com/MrEthical07/authclient/internal/rate"
	"github.com/MrEthical07/authclient/view"
)

const (
	defaultTokenTTL = 15 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// withProfile loads config, opens the profile and runs fn with a context that is
// cancelled on interrupt.
func withProfile(cliContext *cli.Context, fn func(ctx context.Context, cfg *config.Config, p *profile) error) error {
	cfg, err := loadConfig(cliContext)
	if err != nil {
		return err
	}
	logger := project_logging.GetProjectLogger().WithField("profile", cfg.Profile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := openProfile(ctx, cfg, logger, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.WithError(err).Warn("closing profile")
		}
	}()
	return fn(ctx, cfg, p)
}

// statusCommand draws the screen without waiting on the network, then lets the
// CSRF bootstrap finish so the token is saved.
func statusCommand(cliContext *cli.Context) error {
	return withProfile(cliContext, func(ctx context.Context, _ *config.Config, p *profile) error {
		done := p.client.StartBootstrap(ctx)
		if err := view.NewShell(p.client, os.Stdout).Render(); err != nil {
			return gwerrors.WithStackTrace(err)
		}
		if err := <-done; err != nil {
			project_logging.GetProjectLogger().WithError(err).Debug("csrf bootstrap failed")
		}
		return nil
	})
}

func bootstrapCommand(cliContext *cli.Context) error {
	return withProfile(cliContext, func(ctx context.Context, _ *config.Config, p *profile) error {
		if err := p.client.Bootstrap(ctx); err != nil {
			return gwerrors.WithStackTrace(err)
		}
		fmt.Fprintln(os.Stdout, "CSRF token stored")
		return nil
	})
}

func loginCommand(cliContext *cli.Context) error {
	return withProfile(cliContext, func(ctx context.Context, cfg *config.Config, p *profile) error {
		done := p.client.StartBootstrap(ctx)

		shell := view.NewShell(p.client, os.Stdout)
		if err := shell.Render(); err != nil {
			return gwerrors.WithStackTrace(err)
		}
		if p.client.State().IsLoggedIn {
			<-done
			return gwerrors.WithStackTrace(authclient.ErrAlreadyLoggedIn)
		}

		email, password := loginCredentials(cliContext.String(emailFlag.Name), cliContext.String(passwordFlag.Name), cfg)
		email, password, err := promptCredentials(os.Stdin, os.Stdout, email, password)
		if err != nil {
			return err
		}

		// The login body carries whatever CSRF token the jar holds, so the fetch
		// has to settle first.
		if err := <-done; err != nil {
			project_logging.GetProjectLogger().WithError(err).Warn("csrf bootstrap failed; login will likely be rejected")
		}

		stop := shell.Watch()
		defer stop()
		return wrapSessionError(shell.SubmitLogin(ctx, email, password))
	})
}

func logoutCommand(cliContext *cli.Context) error {
	return withProfile(cliContext, func(ctx context.Context, _ *config.Config, p *profile) error {
		shell := view.NewShell(p.client, os.Stdout)
		stop := shell.Watch()
		defer stop()
		return wrapSessionError(shell.ClickLogout(ctx))
	})
}

func metricsCommand(cliContext *cli.Context) error {
	return withProfile(cliContext, func(ctx context.Context, _ *config.Config, p *profile) error {
		// A failed bootstrap is itself a data point.
		_ = p.client.Bootstrap(ctx)
		out, err := renderMetrics(ctx, p.client, cliContext.String(metricsFormatFlag.Name))
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	})
}

func devServerCommand(cliContext *cli.Context) error {
	logger := project_logging.GetProjectLogger().WithField("component", "dev-server")

	users, err := parseUsers(cliContext.StringSlice(userFlag.Name))
	if err != nil {
		return err
	}
	if len(users) == 0 {
		logger.Warn("no --user given; every login will be rejected")
	}

	certFile := cliContext.String(tlsCertFlag.Name)
	keyFile := cliContext.String(tlsKeyFlag.Name)
	useTLS := certFile != "" && keyFile != ""
	if (certFile == "") != (keyFile == "") {
		return gwerrors.WithStackTrace(errors.New("--tls-cert and --tls-key must be given together"))
	}

	var limiter *rate.Limiter
	if redisURL := cliContext.String(throttleRedisFlag.Name); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return gwerrors.WithStackTrace(err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = rate.New(rdb, rate.Config{
			MaxAttempts: cliContext.Int(maxLoginAttemptsFlag.Name),
			Window:      time.Minute,
		})
	}

	backend, err := devserver.New(devserver.Config{
		Users:         users,
		TokenTTL:      cliContext.Duration(tokenTTLFlag.Name),
		SecureCookies: useTLS,
		LoginLimiter:  limiter,
		Logger:        logger,
	})
	if err != nil {
		return gwerrors.WithStackTrace(err)
	}

	srv := &http.Server{
		Addr:              cliContext.String(listenFlag.Name),
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (tls=%t)", srv.Addr, useTLS)
		if useTLS {
			errCh <- srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return gwerrors.WithStackTrace(err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return gwerrors.WithStackTrace(srv.Shutdown(shutdownCtx))
	}
}

// wrapSessionError keeps rejected and unavailable errors short: the notifier has
// already shown the message.
func wrapSessionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, authclient.ErrServerRejected) || errors.Is(err, authclient.ErrServerUnavailable) {
		return cli.NewExitError("", 1)
	}
	return gwerrors.WithStackTrace(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
