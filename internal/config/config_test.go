package config_test

import (
	"testing"
	"time"

	"github.com/okian/levelup/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:9080")
			convey.So(cfg.HTTPTimeoutMS, convey.ShouldEqual, 10_000)
			convey.So(cfg.SessionDBPath, convey.ShouldEqual, "levelup.db")
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
		})

		convey.Convey("Then the timeout helper should convert to a duration", func() {
			convey.So(cfg.HTTPTimeout(), convey.ShouldEqual, 10*time.Second)
		})
	})
}
