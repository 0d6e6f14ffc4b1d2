// Package service provides the relay service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/okian/xrelay/internal/adapters/upstream"
	"github.com/okian/xrelay/internal/domain/feed"
	"github.com/okian/xrelay/pkg/logger"
	"github.com/okian/xrelay/pkg/metrics"
)

// ErrNotStarted is returned by relay operations before Start.
var ErrNotStarted = errors.New("relay service not started")

// Service relays fixed resources to the upstream API.
type Service struct {
	mu sync.RWMutex

	fetcher upstream.Fetcher

	// Configuration
	baseURL string
	timeout time.Duration

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUpstreamBaseURL sets the API root used when Start builds the client.
func WithUpstreamBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.baseURL = base
		}
	}
}

// WithUpstreamTimeout bounds each upstream call. Zero means no timeout.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithFetcher injects the upstream fetcher, replacing the one Start would build.
func WithFetcher(f upstream.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL: upstream.DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the upstream client unless one was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("relay")
	}

	if s.fetcher == nil {
		s.fetcher = upstream.New(
			upstream.WithBaseURL(s.baseURL),
			upstream.WithTimeout(s.timeout),
		)
	}

	s.started = true
	s.logger.Info(ctx, "relay service started",
		logger.String("upstream", s.baseURL),
		logger.String("timeout", s.timeout.String()),
	)

	return nil
}

// Stop releases idle upstream connections.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if c, ok := s.fetcher.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}

	s.started = false
	s.logger.Info(context.Background(), "relay service stopped")
}

// CurrentUser fetches the identity behind authorization.
func (s *Service) CurrentUser(ctx context.Context, authorization string) (*upstream.Response, error) {
	return s.relay(ctx, feed.UsersMe(), authorization)
}

// OwnedLists fetches the lists owned by userID.
func (s *Service) OwnedLists(ctx context.Context, authorization, userID string) (*upstream.Response, error) {
	return s.relay(ctx, feed.OwnedLists(userID), authorization)
}

// ListTweets fetches the timeline of listID. An empty maxResults selects the default.
func (s *Service) ListTweets(ctx context.Context, authorization, listID, maxResults string) (*upstream.Response, error) {
	return s.relay(ctx, feed.ListTweets(listID, maxResults), authorization)
}

func (s *Service) relay(ctx context.Context, r feed.Resource, authorization string) (*upstream.Response, error) {
	s.mu.RLock()
	fetcher, log, started := s.fetcher, s.logger, s.started
	s.mu.RUnlock()

	if !started {
		return nil, ErrNotStarted
	}

	start := time.Now()
	resp, err := fetcher.Fetch(ctx, r, authorization)
	latencyMs := float64(time.Since(start).Milliseconds())

	if err != nil {
		kind := upstream.KindLabel(err)
		metrics.RecordUpstreamFailure(r.Name, kind)
		log.Debug(ctx, "upstream call failed",
			logger.String("resource", r.Name),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return nil, err
	}

	metrics.RecordUpstreamRequest(r.Name, strconv.Itoa(resp.Status), latencyMs)
	log.Debug(ctx, "upstream call completed",
		logger.String("resource", r.Name),
		logger.Int("status", resp.Status),
		logger.Float64("latency_ms", latencyMs),
	)
	return resp, nil
}
