package relaycheck

import "time"

// Config holds configuration for a relay check run.
type Config struct {
	BaseURL    string        // Base URL of the relay
	Token      string        // Authorization value; empty skips the upstream flow
	UserID     string        // Owner for /api/user/lists; resolved from /api/user/me when empty
	ListID     string        // List for /api/list/tweets; first owned list when empty
	MaxResults string        // max_results forwarded for list tweets
	Rounds     int           // Times the contract checks are repeated
	Workers    int           // Concurrent workers for repeated rounds
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every check result
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Status   int
	Duration time.Duration
	Err      error
}

// Report aggregates a run.
type Report struct {
	Passed    int
	Failed    int
	Failures  []Result
	StartTime time.Time
	Duration  time.Duration
}

// OK reports whether every check passed.
func (r *Report) OK() bool { return r.Failed == 0 }
