package main

import (
	"github.com/gruntwork-io/gruntwork-cli/entrypoint"
	"github.com/urfave/cli"
)

// This variable is set at build time using -ldflags parameters:
//
// go build -ldflags "-X main.VERSION=v0.1.0" ./cmd/authclient
var VERSION string

var (
	logLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "Log level (trace, debug, info, warn, error). Defaults to AUTHCLIENT_LOG_LEVEL or info.",
	}
	baseURLFlag = cli.StringFlag{
		Name:  "base-url",
		Usage: "Backend origin. Overrides AUTHCLIENT_BASE_URL.",
	}
	profileFlag = cli.StringFlag{
		Name:  "profile",
		Usage: "Name of the saved cookie profile. Overrides AUTHCLIENT_PROFILE.",
	}
	emailFlag = cli.StringFlag{
		Name:  "email",
		Usage: "Login email. Falls back to AUTHCLIENT_EMAIL, then a prompt.",
	}
	passwordFlag = cli.StringFlag{
		Name:  "password",
		Usage: "Login password. Falls back to AUTHCLIENT_PASSWORD, then a prompt.",
	}
	listenFlag = cli.StringFlag{
		Name:  "listen",
		Value: ":9090",
		Usage: "Address the development backend listens on.",
	}
	userFlag = cli.StringSliceFlag{
		Name:  "user",
		Usage: "email:password pair accepted by the development backend. Repeatable.",
	}
	tlsCertFlag = cli.StringFlag{
		Name:  "tls-cert",
		Usage: "PEM certificate. Serve HTTPS when set together with --tls-key.",
	}
	tlsKeyFlag = cli.StringFlag{
		Name:  "tls-key",
		Usage: "PEM private key for --tls-cert.",
	}
	throttleRedisFlag = cli.StringFlag{
		Name:  "throttle-redis-url",
		Usage: "Redis used to throttle failed logins per email. Empty disables throttling.",
	}
	maxLoginAttemptsFlag = cli.IntFlag{
		Name:  "max-login-attempts",
		Value: 5,
		Usage: "Failed logins allowed per email per minute when throttling is enabled.",
	}
	metricsFormatFlag = cli.StringFlag{
		Name:  "format",
		Value: formatPrometheus,
		Usage: "Output format: prometheus (text exposition) or otel (collected through the OpenTelemetry SDK).",
	}
	tokenTTLFlag = cli.DurationFlag{
		Name:  "token-ttl",
		Value: defaultTokenTTL,
		Usage: "Lifetime of credential tokens issued by the development backend.",
	}
)

func main() {
	// Create a new CLI app. This will return a urfave/cli App with some
	// common initialization.
	app := entrypoint.NewApp()

	app.Name = "authclient"
	app.Usage = "Manage a cookie-backed login session against a /csrf, /login, /logout backend."
	app.Version = VERSION
	app.Flags = []cli.Flag{
		logLevelFlag,
		baseURLFlag,
		profileFlag,
	}
	app.Before = initCli
	app.Commands = []cli.Command{
		{
			Name:   "status",
			Usage:  "Show the screen for the saved session and refresh the CSRF token.",
			Action: statusCommand,
		},
		{
			Name:   "bootstrap",
			Usage:  "Fetch a CSRF token and store it in the profile.",
			Action: bootstrapCommand,
		},
		{
			Name:  "login",
			Usage: "Log in with email and password.",
			Description: `Fetches a CSRF token, then submits the credentials. On success the profile is marked
logged in and the server's credential cookie is saved with it.`,
			Flags:  []cli.Flag{emailFlag, passwordFlag},
			Action: loginCommand,
		},
		{
			Name:   "logout",
			Usage:  "Log out and clear the saved session, whether or not the server answers.",
			Action: logoutCommand,
		},
		{
			Name:   "metrics",
			Usage:  "Run a CSRF bootstrap and print the client metrics.",
			Flags:  []cli.Flag{metricsFormatFlag},
			Action: metricsCommand,
		},
		{
			Name:  "dev-server",
			Usage: "Run a development backend implementing /csrf, /login and /logout.",
			Description: `Serves the same routes and cookies as the production backend, with users given on the
command line. Not for production use.`,
			Flags:  []cli.Flag{listenFlag, userFlag, tlsCertFlag, tlsKeyFlag, tokenTTLFlag, throttleRedisFlag, maxLoginAttemptsFlag},
			Action: devServerCommand,
		},
	}

	// Run your app using the entrypoint package, which will take care of exit codes, stack traces, and panics
	entrypoint.RunApp(app)
}
