// Package feed describes the upstream API resources the relay can reach.
//
// Each resource is a path relative to the API root plus a raw query string.
// Query strings are built by hand so parameter order and the literal commas
// in field lists reach the upstream exactly as written.
package feed

import (
	"net/url"
	"strings"
)

// DefaultMaxResults is used when the caller sends no max_results.
const DefaultMaxResults = "100"

// Fixed field selection for list timelines.
const (
	TweetFields = "created_at,author_id,public_metrics"
	Expansions  = "author_id"
	UserFields  = "username,name"
)

// Resource names, used as metric and log labels.
const (
	NameUsersMe    = "users_me"
	NameOwnedLists = "owned_lists"
	NameListTweets = "list_tweets"
)

// Resource is one upstream GET target.
type Resource struct {
	// Name labels the resource in logs and metrics.
	Name string
	// Path is relative to the API root and starts with "/".
	Path string
	// RawQuery is appended verbatim after "?" when non-empty.
	RawQuery string
}

// URL resolves r against the API root, e.g. "https://api.twitter.com/2".
func (r Resource) URL(base string) string {
	u := strings.TrimRight(base, "/") + r.Path
	if r.RawQuery != "" {
		u += "?" + r.RawQuery
	}
	return u
}

// UsersMe is the authenticated user.
func UsersMe() Resource {
	return Resource{Name: NameUsersMe, Path: "/users/me"}
}

// OwnedLists is the set of lists owned by userID.
func OwnedLists(userID string) Resource {
	return Resource{
		Name: NameOwnedLists,
		Path: "/users/" + url.PathEscape(userID) + "/owned_lists",
	}
}

// ListTweets is the timeline of listID with author expansion.
// maxResults is forwarded unvalidated; an empty value selects DefaultMaxResults.
func ListTweets(listID, maxResults string) Resource {
	if maxResults == "" {
		maxResults = DefaultMaxResults
	}
	q := "max_results=" + url.QueryEscape(maxResults) +
		"&tweet.fields=" + TweetFields +
		"&expansions=" + Expansions +
		"&user.fields=" + UserFields
	return Resource{
		Name:     NameListTweets,
		Path:     "/lists/" + url.PathEscape(listID) + "/tweets",
		RawQuery: q,
	}
}
