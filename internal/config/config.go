// Package config loads the authclient binary's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gruntwork-io/gruntwork-cli/errors"
	"github.com/gruntwork-io/gruntwork-cli/files"
	"github.com/joho/godotenv"

	"github.com/MrEthical07/authclient"
)

const envPrefix = "AUTHCLIENT_"

// DefaultEnvFiles are read by Load when no files are given. Earlier files win.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds the binary's settings.
type Config struct {
	BaseURL            string
	Profile            string
	StateDir           string
	RedisURL           string
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
	LogLevel           string

	// Email and Password prefill the login command. Both may be empty.
	Email    string
	Password string
}

// Load reads AUTHCLIENT_* variables. The process environment takes precedence over
// the env files, which are skipped when missing.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	env, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}

	getEnv := func(key, defaultValue string) string {
		if v := os.Getenv(envPrefix + key); v != "" {
			return v
		}
		if v := env[envPrefix+key]; v != "" {
			return v
		}
		return defaultValue
	}

	timeout, err := parseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
	}
	insecure, err := strconv.ParseBool(getEnv("INSECURE_SKIP_VERIFY", "false"))
	if err != nil {
		return nil, fmt.Errorf("%sINSECURE_SKIP_VERIFY: %w", envPrefix, err)
	}

	cfg := &Config{
		BaseURL:            getEnv("BASE_URL", authclient.DefaultConfig().BaseURL),
		Profile:            getEnv("PROFILE", "default"),
		StateDir:           getEnv("STATE_DIR", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RequestTimeout:     timeout,
		InsecureSkipVerify: insecure,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Email:              getEnv("EMAIL", ""),
		Password:           getEnv("PASSWORD", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later with a less useful error.
func (c *Config) Validate() error {
	if c.Profile == "" || strings.ContainsAny(c.Profile, `/\:`) || strings.HasPrefix(c.Profile, ".") {
		return fmt.Errorf("invalid profile name %q", c.Profile)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must be >= 0, got %s", c.RequestTimeout)
	}
	cc := c.ClientConfig()
	return cc.Validate()
}

// ClientConfig maps the settings onto the library defaults.
func (c *Config) ClientConfig() authclient.Config {
	cfg := authclient.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.Transport.RequestTimeout = c.RequestTimeout
	return cfg
}

func readEnvFiles(paths []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		if !files.FileExists(path) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
