package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/xrelay/internal/adapters/upstream"
	"github.com/okian/xrelay/internal/domain/feed"
	. "github.com/smartystreets/goconvey/convey"
)

// failingRoundTripper fails every request without touching the network.
type failingRoundTripper struct {
	err error
}

func (f *failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

// recordedRequest is what the fake upstream saw.
type recordedRequest struct {
	mu            sync.Mutex
	method        string
	requestURI    string
	authorization string
}

func mockUpstream(status int, body string, seen *recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.mu.Lock()
		defer seen.mu.Unlock()
		seen.method = r.Method
		seen.requestURI = r.RequestURI
		seen.authorization = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func (s *recordedRequest) get() (method, requestURI, authorization string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method, s.requestURI, s.authorization
}

func TestClient_Fetch(t *testing.T) {
	Convey("Given an upstream client", t, func() {
		ctx := context.Background()
		seen := &recordedRequest{}

		Convey("When upstream answers 200 with JSON", func() {
			srv := mockUpstream(http.StatusOK, `{"data":{"id":"1","username":"jack"}}`, seen)
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL + "/2"))

			resp, err := c.Fetch(ctx, feed.UsersMe(), "Bearer abc")

			Convey("Then status and body should be returned unchanged", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, http.StatusOK)
				So(string(resp.Body), ShouldEqual, `{"data":{"id":"1","username":"jack"}}`)
			})

			Convey("And the request should be a GET carrying the authorization verbatim", func() {
				method, uri, auth := seen.get()
				So(method, ShouldEqual, http.MethodGet)
				So(uri, ShouldEqual, "/2/users/me")
				So(auth, ShouldEqual, "Bearer abc")
			})
		})

		Convey("When upstream answers with an error status", func() {
			srv := mockUpstream(http.StatusTooManyRequests, `{"title":"Too Many Requests","status":429}`, seen)
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL))

			resp, err := c.Fetch(ctx, feed.OwnedLists("42"), "Bearer abc")

			Convey("Then it should be a response, not an error", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, http.StatusTooManyRequests)
				So(string(resp.Body), ShouldEqual, `{"title":"Too Many Requests","status":429}`)
				_, uri, _ := seen.get()
				So(uri, ShouldEqual, "/users/42/owned_lists")
			})
		})

		Convey("When fetching list tweets", func() {
			srv := mockUpstream(http.StatusOK, `{"data":[]}`, seen)
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL))

			_, err := c.Fetch(ctx, feed.ListTweets("123", ""), "Bearer abc")

			Convey("Then the query string should arrive untouched", func() {
				So(err, ShouldBeNil)
				_, uri, _ := seen.get()
				So(uri, ShouldEqual,
					"/lists/123/tweets?max_results=100&tweet.fields=created_at,author_id,public_metrics&expansions=author_id&user.fields=username,name")
			})
		})

		Convey("When upstream answers with a non-JSON body", func() {
			srv := mockUpstream(http.StatusBadGateway, `<html>bad gateway</html>`, seen)
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL))

			resp, err := c.Fetch(ctx, feed.UsersMe(), "Bearer abc")

			Convey("Then it should be a malformed response error", func() {
				So(resp, ShouldBeNil)
				So(errors.Is(err, upstream.ErrMalformedResponse), ShouldBeTrue)
				So(upstream.KindLabel(err), ShouldEqual, "malformed")
				So(err.Error(), ShouldContainSubstring, "invalid character")
			})
		})

		Convey("When upstream answers with an empty body", func() {
			srv := mockUpstream(http.StatusNoContent, ``, seen)
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL))

			_, err := c.Fetch(ctx, feed.UsersMe(), "Bearer abc")

			Convey("Then it should be a malformed response error", func() {
				So(errors.Is(err, upstream.ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("When the transport fails", func() {
			cause := errors.New("dial tcp: connection refused")
			c := upstream.New(upstream.WithHTTPClient(&http.Client{
				Transport: &failingRoundTripper{err: cause},
			}))

			resp, err := c.Fetch(ctx, feed.UsersMe(), "Bearer abc")

			Convey("Then it should be a transport error carrying the cause", func() {
				So(resp, ShouldBeNil)
				So(errors.Is(err, upstream.ErrTransport), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(upstream.KindLabel(err), ShouldEqual, "transport")
				So(err.Error(), ShouldContainSubstring, "connection refused")

				var uerr *upstream.Error
				So(errors.As(err, &uerr), ShouldBeTrue)
				So(uerr.Resource, ShouldEqual, feed.NameUsersMe)
			})
		})

		Convey("When upstream is slower than the configured timeout", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			c := upstream.New(upstream.WithBaseURL(srv.URL), upstream.WithTimeout(20*time.Millisecond))

			_, err := c.Fetch(ctx, feed.UsersMe(), "Bearer abc")

			Convey("Then it should fail as a transport error", func() {
				So(errors.Is(err, upstream.ErrTransport), ShouldBeTrue)
			})
		})
	})
}

func TestClient_Options(t *testing.T) {
	Convey("Given client options", t, func() {
		Convey("When no base URL is given", func() {
			c := upstream.New()

			Convey("Then the default API root should be used", func() {
				So(c.BaseURL(), ShouldEqual, "https://api.twitter.com/2")
			})
		})

		Convey("When the base URL has a trailing slash", func() {
			c := upstream.New(upstream.WithBaseURL("http://localhost:8080/2/"))

			Convey("Then it should be trimmed", func() {
				So(c.BaseURL(), ShouldEqual, "http://localhost:8080/2")
			})
		})
	})
}
