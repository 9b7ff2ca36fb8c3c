package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gruntwork-io/gruntwork-cli/errors"
	"github.com/gruntwork-io/gruntwork-cli/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/MrEthical07/authclient/internal/config"
)

// initCli sets the global log level before any command runs. The flag wins over
// AUTHCLIENT_LOG_LEVEL from the environment or env files. A config that fails to
// load is reported by the command that needs it, so only the flag applies then.
func initCli(cliContext *cli.Context) error {
	var configured string
	if cfg, err := config.Load(); err == nil {
		configured = cfg.LogLevel
	}
	level, err := resolveLogLevel(cliContext.String(logLevelFlag.Name), configured)
	if err != nil {
		return err
	}
	logging.SetGlobalLogLevel(level)
	return nil
}

func resolveLogLevel(flagValue, configured string) (logrus.Level, error) {
	raw := flagValue
	if raw == "" {
		raw = configured
	}
	if raw == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return 0, errors.WithStackTrace(err)
	}
	return level, nil
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(cliContext *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	applyOverrides(cfg, cliContext.GlobalString(baseURLFlag.Name), cliContext.GlobalString(profileFlag.Name))
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, baseURL, profile string) {
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if profile != "" {
		cfg.Profile = profile
	}
}

// loginCredentials prefers the command flags over the loaded config.
func loginCredentials(flagEmail, flagPassword string, cfg *config.Config) (string, string) {
	return firstNonEmpty(flagEmail, cfg.Email), firstNonEmpty(flagPassword, cfg.Password)
}

// promptCredentials fills in whichever of email and password is still empty by
// reading lines from in.
func promptCredentials(in io.Reader, out io.Writer, email, password string) (string, string, error) {
	scanner := bufio.NewScanner(in)
	read := func(label string) (string, error) {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", errors.WithStackTrace(err)
			}
			return "", errors.WithStackTrace(fmt.Errorf("no input for %s", strings.ToLower(label)))
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	var err error
	if email == "" {
		if email, err = read("Email address"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = read("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

// parseUsers turns repeated email:password flags into the devserver user table.
func parseUsers(pairs []string) (map[string]string, error) {
	users := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		email, password, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(email) == "" || password == "" {
			return nil, errors.WithStackTrace(fmt.Errorf("invalid --user %q, expected email:password", pair))
		}
		users[strings.TrimSpace(email)] = password
	}
	return users, nil
}
