package relaycheck_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/xrelay/internal/adapters/http/api"
	service "github.com/okian/xrelay/internal/app"
	"github.com/okian/xrelay/internal/relaycheck"
	"github.com/okian/xrelay/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// twitterStub answers the three upstream resources the relay calls.
func twitterStub(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401}`))
			return
		}
		switch {
		case r.URL.Path == "/2/users/me":
			_, _ = w.Write([]byte(`{"data":{"id":"7","username":"jack"}}`))
		case r.URL.Path == "/2/users/7/owned_lists":
			_, _ = w.Write([]byte(`{"data":[{"id":"99","name":"news"}]}`))
		case strings.HasPrefix(r.URL.Path, "/2/lists/99/tweets"):
			_, _ = w.Write([]byte(`{"data":[{"id":"1","text":"hi"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"Not Found"}`))
		}
	})
}

func startRelay(upstreamStatus int) (relayURL string, closeAll func()) {
	ctx := context.Background()
	up := httptest.NewServer(twitterStub(upstreamStatus))
	svc := service.New(service.WithUpstreamBaseURL(up.URL + "/2"))
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	router := api.NewRouter()
	api.NewServer(svc).Register(ctx, router)
	relay := httptest.NewServer(api.CORS(router))
	return relay.URL, func() {
		relay.Close()
		svc.Stop()
		up.Close()
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running relay", t, func() {
		ctx := context.Background()

		Convey("When only the contract checks run", func() {
			url, closeAll := startRelay(http.StatusOK)
			defer closeAll()

			report := relaycheck.Run(ctx, &relaycheck.Config{
				BaseURL: url + "/",
				Rounds:  3,
				Workers: 4,
				Timeout: 5 * time.Second,
			})

			Convey("Then every check should pass", func() {
				So(report.OK(), ShouldBeTrue)
				So(report.Passed, ShouldEqual, 15)
				So(report.Failures, ShouldBeEmpty)
			})
		})

		Convey("When a token walks the upstream flow", func() {
			url, closeAll := startRelay(http.StatusOK)
			defer closeAll()

			report := relaycheck.Run(ctx, &relaycheck.Config{
				BaseURL:    url,
				Token:      "Bearer good",
				MaxResults: "5",
				Rounds:     1,
				Workers:    1,
				Timeout:    5 * time.Second,
				Verbose:    true,
			})

			Convey("Then user, lists and tweets should all pass", func() {
				So(report.OK(), ShouldBeTrue)
				So(report.Passed, ShouldEqual, 8)
			})
		})

		Convey("When upstream rejects the token", func() {
			url, closeAll := startRelay(http.StatusUnauthorized)
			defer closeAll()

			report := relaycheck.Run(ctx, &relaycheck.Config{
				BaseURL: url,
				Token:   "Bearer bad",
				Workers: 2,
				Timeout: 5 * time.Second,
			})

			Convey("Then the flow should stop at the first step with the relayed status", func() {
				So(report.OK(), ShouldBeFalse)
				So(report.Failed, ShouldEqual, 1)
				So(report.Failures[0].Name, ShouldEqual, "current user")
				So(report.Failures[0].Status, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When nothing listens at the base URL", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()

			report := relaycheck.Run(ctx, &relaycheck.Config{
				BaseURL: url,
				Workers: 1,
				Timeout: time.Second,
			})

			Convey("Then every contract check should fail", func() {
				So(report.OK(), ShouldBeFalse)
				So(report.Failed, ShouldEqual, 5)
				So(report.Passed, ShouldEqual, 0)
			})
		})
	})
}
