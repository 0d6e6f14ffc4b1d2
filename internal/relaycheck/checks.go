package relaycheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// check is one request against the relay and the expectation on its answer.
type check struct {
	name   string
	path   string
	auth   string
	verify func(status int, body []byte) error
}

func (c check) run(ctx context.Context, client *HTTPClient) Result {
	start := time.Now()
	status, body, err := client.get(ctx, c.path, c.auth)
	if err == nil {
		err = c.verify(status, body)
	}
	return Result{Name: c.name, Status: status, Duration: time.Since(start), Err: err}
}

func expectError(wantStatus int, wantMsg string) func(int, []byte) error {
	return func(status int, body []byte) error {
		if status != wantStatus {
			return fmt.Errorf("status %d, want %d", status, wantStatus)
		}
		var e errorBody
		if err := decodeJSON(body, &e); err != nil {
			return err
		}
		if e.Error != wantMsg {
			return fmt.Errorf("error %q, want %q", e.Error, wantMsg)
		}
		return nil
	}
}

func expectHealth(status int, body []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("status %d, want 200", status)
	}
	var h struct {
		Status    string   `json:"status"`
		Endpoints []string `json:"endpoints"`
	}
	if err := decodeJSON(body, &h); err != nil {
		return err
	}
	if h.Status != "ok" || len(h.Endpoints) == 0 {
		return errors.New("health payload missing status or endpoints")
	}
	return nil
}

// contractChecks exercise the relay's local behavior; none reach upstream.
func contractChecks() []check {
	const noAuth = "No authorization token provided"
	return []check{
		{name: "health", path: "/", verify: expectHealth},
		{name: "me without token", path: "/api/user/me", verify: expectError(http.StatusUnauthorized, noAuth)},
		{name: "lists without token", path: "/api/user/lists?userId=1", verify: expectError(http.StatusUnauthorized, noAuth)},
		{name: "tweets without token", path: "/api/list/tweets/1", verify: expectError(http.StatusUnauthorized, noAuth)},
		{name: "lists without userId", path: "/api/user/lists", auth: "Bearer relaycheck",
			verify: expectError(http.StatusBadRequest, "userId query parameter required")},
	}
}

// ErrUpstreamStatus marks a flow step the upstream answered with a non-2xx status.
var ErrUpstreamStatus = errors.New("upstream returned an error status")

// flow walks user -> owned lists -> list tweets with a real token, the way a
// browser client would, and returns one result per step.
func flow(ctx context.Context, client *HTTPClient, cfg *Config) []Result {
	var results []Result

	step := func(name, path string, v any) bool {
		start := time.Now()
		status, body, err := client.get(ctx, path, cfg.Token)
		if err == nil && (status < 200 || status > 299) {
			var e errorBody
			_ = decodeJSON(body, &e)
			err = fmt.Errorf("%w: %d %s", ErrUpstreamStatus, status, e.Error+e.Details)
		}
		if err == nil {
			err = decodeJSON(body, v)
		}
		results = append(results, Result{Name: name, Status: status, Duration: time.Since(start), Err: err})
		return err == nil
	}

	userID := cfg.UserID
	if userID == "" {
		var me struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if !step("current user", "/api/user/me", &me) {
			return results
		}
		userID = me.Data.ID
	}

	listID := cfg.ListID
	var lists struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if !step("owned lists", "/api/user/lists?userId="+url.QueryEscape(userID), &lists) {
		return results
	}
	if listID == "" {
		if len(lists.Data) == 0 {
			return results
		}
		listID = lists.Data[0].ID
	}

	path := "/api/list/tweets/" + url.PathEscape(listID)
	if cfg.MaxResults != "" {
		path += "?max_results=" + url.QueryEscape(cfg.MaxResults)
	}
	var tweets map[string]any
	step("list tweets", path, &tweets)
	return results
}
