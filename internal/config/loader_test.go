package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fairdesk/fairdesk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with only the required backend url", func() {
			_ = os.Setenv("FAIRDESK_BACKEND_URL", "https://project.example.co")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should keep the remaining defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BackendURL, convey.ShouldEqual, "https://project.example.co")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LookupLang, convey.ShouldEqual, "tr")
				convey.So(cfg.BackendTimeoutMS, convey.ShouldEqual, 10_000)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When loading config with no backend url", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "backend_url must not be empty")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FAIRDESK_ADDR", ":8080")
			_ = os.Setenv("FAIRDESK_BACKEND_URL", "https://project.example.co")
			_ = os.Setenv("FAIRDESK_BACKEND_ANON_KEY", "anon")
			_ = os.Setenv("FAIRDESK_BACKEND_SERVICE_KEY", "service")
			_ = os.Setenv("FAIRDESK_BACKEND_TIMEOUT_MS", "2500")
			_ = os.Setenv("FAIRDESK_LOOKUP_LANG", "en")
			_ = os.Setenv("FAIRDESK_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("FAIRDESK_REDIS_DB", "3")
			_ = os.Setenv("FAIRDESK_STATS_CACHE_TTL_SEC", "15")
			_ = os.Setenv("FAIRDESK_METRICS_SITE", "hall-a")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BackendAnonKey, convey.ShouldEqual, "anon")
				convey.So(cfg.BackendServiceKey, convey.ShouldEqual, "service")
				convey.So(cfg.BackendTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.LookupLang, convey.ShouldEqual, "en")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.RedisDB, convey.ShouldEqual, 3)
				convey.So(cfg.StatsCacheTTLSec, convey.ShouldEqual, 15)
				convey.So(cfg.MetricsSite, convey.ShouldEqual, "hall-a")
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "fairdesk")
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			yamlContent := `
# kiosk deployment
addr: ":9090"
backend_url: "https://file.example.co"
backend_timeout_ms: 4000
log_format: json
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("FAIRDESK_CONFIG", tmpFile)
			_ = os.Setenv("FAIRDESK_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")                         // env
				convey.So(cfg.BackendURL, convey.ShouldEqual, "https://file.example.co") // file
				convey.So(cfg.BackendTimeoutMS, convey.ShouldEqual, 4000)                // file
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")                     // file
				convey.So(cfg.LookupLang, convey.ShouldEqual, "tr")                      // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("FAIRDESK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FAIRDESK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FAIRDESK_BACKEND_URL", "https://project.example.co")
			_ = os.Setenv("FAIRDESK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive backend timeout", func() {
			_ = os.Setenv("FAIRDESK_BACKEND_URL", "https://project.example.co")
			_ = os.Setenv("FAIRDESK_BACKEND_TIMEOUT_MS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "backend_timeout_ms")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FAIRDESK_BACKEND_URL", "https://project.example.co")
			_ = os.Setenv("FAIRDESK_REDIS_DB", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"FAIRDESK_CONFIG",
		"FAIRDESK_ADDR",
		"FAIRDESK_LOG_LEVEL",
		"FAIRDESK_LOG_FORMAT",
		"FAIRDESK_BACKEND_URL",
		"FAIRDESK_BACKEND_ANON_KEY",
		"FAIRDESK_BACKEND_SERVICE_KEY",
		"FAIRDESK_BACKEND_TIMEOUT_MS",
		"FAIRDESK_LOOKUP_LANG",
		"FAIRDESK_REDIS_ADDR",
		"FAIRDESK_REDIS_PASSWORD",
		"FAIRDESK_REDIS_DB",
		"FAIRDESK_STATS_CACHE_TTL_SEC",
		"FAIRDESK_SHUTDOWN_TIMEOUT_SEC",
		"FAIRDESK_METRICS_NAMESPACE",
		"FAIRDESK_METRICS_SITE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fairdesk-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
