package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/authclient"
	"github.com/MrEthical07/authclient/internal/devserver"
	"github.com/MrEthical07/authclient/store"
)

const (
	loadEmail    = "load@example.com"
	loadPassword = "load-test-password"
)

// browser is one simulated user agent with its own saved cookies.
type browser struct {
	profile string
}

func main() {
	var (
		browsers    = flag.Int("browsers", 200, "number of simulated browsers")
		concurrency = flag.Int("concurrency", 32, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address for cookie persistence; if empty, REDIS_ADDR env or miniredis is used")
		baseURL     = flag.String("base-url", "", "backend origin; if empty an in-process development backend is started")
		email       = flag.String("email", loadEmail, "login email when -base-url is set")
		password    = flag.String("password", loadPassword, "login password when -base-url is set")
	)
	flag.Parse()

	if *browsers <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "browsers and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	client, cleanupRedis, err := openRedis(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanupRedis()

	origin := *baseURL
	if origin == "" {
		var stop func()
		origin, stop, err = startBackend(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "start backend: %v\n", err)
			os.Exit(1)
		}
		defer stop()
		*email, *password = loadEmail, loadPassword
		fmt.Printf("using in-process backend at %s\n", origin)
	}

	states := make([]browser, *browsers)
	for i := range states {
		states[i] = browser{profile: fmt.Sprintf("load-%d", i)}
	}

	run := runner{
		origin:   origin,
		redis:    client,
		logger:   entry,
		email:    *email,
		password: *password,
	}

	loginStats := runPhase(ctx, states, *concurrency, run.login)
	logoutStats := runPhase(ctx, states, *concurrency, run.reloadAndLogout)

	fmt.Println("---- results ----")
	printStats("bootstrap+login", loginStats)
	printStats("reload+logout", logoutStats)
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func startBackend(logger *logrus.Entry) (string, func(), error) {
	backend, err := devserver.New(devserver.Config{
		Users:      map[string]string{loadEmail: loadPassword},
		BcryptCost: bcrypt.MinCost,
		Logger:     logger,
	})
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: backend.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}

type runner struct {
	origin   string
	redis    redis.UniversalClient
	logger   *logrus.Entry
	email    string
	password string
}

// open builds a client over the browser's saved cookies, the way a page load would.
func (r runner) open(ctx context.Context, b *browser) (*authclient.Client, error) {
	jar, err := store.NewJar(ctx, r.origin, store.JarOptions{
		Persister: store.NewRedisPersister(r.redis, store.DefaultRedisPrefix, b.profile),
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	return authclient.New().
		WithStore(jar).
		WithConfig(r.config()).
		WithLogger(r.logger).
		Build()
}

func (r runner) config() authclient.Config {
	cfg := authclient.DefaultConfig()
	cfg.BaseURL = r.origin
	cfg.Transport.RequestTimeout = 10 * time.Second
	return cfg
}

func (r runner) login(ctx context.Context, b *browser) error {
	c, err := r.open(ctx, b)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Bootstrap(ctx); err != nil {
		return err
	}
	return c.Login(ctx, r.email, r.password)
}

func (r runner) reloadAndLogout(ctx context.Context, b *browser) error {
	c, err := r.open(ctx, b)
	if err != nil {
		return err
	}
	defer c.Close()
	if !c.State().IsLoggedIn {
		return fmt.Errorf("%s: session not restored", b.profile)
	}
	return c.Logout(ctx)
}

func runPhase(ctx context.Context, states []browser, concurrency int, op func(context.Context, *browser) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(states))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(states) {
					return
				}
				t0 := time.Now()
				err := op(ctx, &states[i])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
