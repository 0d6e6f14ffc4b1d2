package relaycheck

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/xrelay/pkg/logger"
)

// Run executes the contract checks for cfg.Rounds rounds across cfg.Workers
// workers, then the upstream flow once if a token is configured.
func Run(ctx context.Context, cfg *Config) *Report {
	log := logger.Named("relaycheck")
	report := &Report{StartTime: time.Now()}
	client := newHTTPClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout)

	log.Info(ctx, "starting relay check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Any("flow", cfg.Token != ""))

	var (
		mu     sync.Mutex
		passed int64
	)
	record := func(r Result) {
		if r.Err == nil {
			atomic.AddInt64(&passed, 1)
			if cfg.Verbose {
				log.Info(ctx, "check passed", logger.String("check", r.Name), logger.Int("status", r.Status))
			}
			return
		}
		mu.Lock()
		report.Failures = append(report.Failures, r)
		mu.Unlock()
		log.Warn(ctx, "check failed", logger.String("check", r.Name), logger.Int("status", r.Status), logger.Error(r.Err))
	}

	workers := max(cfg.Workers, 1)
	checkCh := make(chan check, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range checkCh {
				record(c.run(ctx, client))
			}
		}()
	}

	go func() {
		defer close(checkCh)
		for round := 0; round < max(cfg.Rounds, 1); round++ {
			for _, c := range contractChecks() {
				select {
				case <-ctx.Done():
					return
				case checkCh <- c:
				}
			}
		}
	}()
	wg.Wait()

	if cfg.Token != "" {
		for _, r := range flow(ctx, client, cfg) {
			record(r)
		}
	}

	report.Passed = int(atomic.LoadInt64(&passed))
	report.Failed = len(report.Failures)
	report.Duration = time.Since(report.StartTime)

	log.Info(ctx, "relay check completed",
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.String("duration", report.Duration.String()))
	return report
}
