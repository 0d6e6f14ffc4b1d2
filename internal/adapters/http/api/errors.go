package api

import (
	"errors"
	"net/http"
)

// Sentinel kinds for locally rejected requests. Neither reaches upstream.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrMissingParameter     = errors.New("missing parameter")
)

// Fixed error bodies.
const (
	msgNoAuthorization = "No authorization token provided"
	msgInternalError   = "Internal server error"
)

// missingQueryError names the absent query parameter.
type missingQueryError struct {
	name string
}

func (e missingQueryError) Error() string { return e.name + " query parameter required" }

func (e missingQueryError) Is(target error) bool { return target == ErrMissingParameter }

// requireAuthorization returns the caller's authorization header verbatim.
// An absent or empty header is rejected.
func requireAuthorization(r *http.Request) (string, error) {
	v := r.Header.Get("Authorization")
	if v == "" {
		return "", ErrMissingAuthorization
	}
	return v, nil
}

// requireQuery returns a non-empty query parameter.
func requireQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", missingQueryError{name: name}
	}
	return v, nil
}
