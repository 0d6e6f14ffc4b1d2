package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/xrelay/internal/relaycheck"
	"github.com/okian/xrelay/pkg/logger"
)

// Default configuration constants.
const (
	defaultRounds      = 1
	defaultTimeout     = 15 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the relay")
		token      = flag.String("token", os.Getenv("RELAY_CHECK_TOKEN"), "Authorization value for the upstream flow (e.g. \"Bearer ...\")")
		userID     = flag.String("user", "", "User id for owned lists (default: resolved from /api/user/me)")
		listID     = flag.String("list", "", "List id for tweets (default: first owned list)")
		maxResults = flag.String("max-results", "", "max_results forwarded to list tweets")
		rounds     = flag.Int("rounds", defaultRounds, "Times the contract checks are repeated")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Log every check result")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	report := relaycheck.Run(ctx, &relaycheck.Config{
		BaseURL:    *baseURL,
		Token:      *token,
		UserID:     *userID,
		ListID:     *listID,
		MaxResults: *maxResults,
		Rounds:     *rounds,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	})
	if !report.OK() {
		cancel()
		stop()
		os.Exit(1)
	}
}
