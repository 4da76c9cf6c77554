package config_test

import (
	"testing"
	"time"

	"github.com/fairdesk/fairdesk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.LookupLang, convey.ShouldEqual, "tr")
			convey.So(cfg.BackendTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.StatsCacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 30*time.Second)
		})

		convey.Convey("And it should fail validation without a backend url", func() {
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
