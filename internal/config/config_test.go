package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/xrelay/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Port, convey.ShouldEqual, 3000)
			convey.So(cfg.Addr(), convey.ShouldEqual, ":3000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "https://api.twitter.com/2")
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with invalid settings", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"zero port", func(c *config.Config) { c.Port = 0 }},
			{"port out of range", func(c *config.Config) { c.Port = 70000 }},
			{"negative timeout", func(c *config.Config) { c.UpstreamTimeoutMS = -1 }},
			{"unknown format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"relative base url", func(c *config.Config) { c.UpstreamBaseURL = "/2" }},
			{"ftp base url", func(c *config.Config) { c.UpstreamBaseURL = "ftp://api.twitter.com/2" }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should be rejected as invalid config", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
