package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/spinner/internal/config"
	"github.com/okian/spinner/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SPINNER_ADDR", ":9090")
			_ = os.Setenv("SPINNER_SEED_EMAIL", "ops@example.com")
			defer func() {
				_ = os.Unsetenv("SPINNER_ADDR")
				_ = os.Unsetenv("SPINNER_SEED_EMAIL")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SeedEmail, convey.ShouldEqual, "ops@example.com")
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a server configuration with a seed account", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DatabasePath = filepath.Join(t.TempDir(), "api.db")
		cfg.SeedEmail = "ops@example.com"
		cfg.SeedPassword = "hunter2"

		handler, cleanup, err := newHandler(ctx, cfg, logger.NewNop())
		convey.So(err, convey.ShouldBeNil)
		defer cleanup()

		convey.Convey("When calling the health endpoint", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then it reports ok", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When fetching the API reference", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			convey.Convey("Then the document is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "openapi:")
			})
		})

		convey.Convey("When the seed account logs in", func() {
			body := bytes.NewBufferString(`{"email":"ops@example.com","password":"hunter2"}`)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

			convey.Convey("Then a token is issued even without a configured secret", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "access_token")
			})
		})

		convey.Convey("When the server restarts on the same database", func() {
			cleanup()
			_, again, err := newHandler(ctx, cfg, logger.NewNop())

			convey.Convey("Then seeding is skipped without error", func() {
				convey.So(err, convey.ShouldBeNil)
				again()
			})
		})
	})

	convey.Convey("Given a database path that cannot be opened", t, func() {
		cfg := config.New()
		cfg.DatabasePath = ""
		_, _, err := newHandler(context.Background(), cfg, logger.NewNop())

		convey.Convey("Then construction fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.DatabasePath = ":memory:"
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, cfg, logger.NewNop()) }()

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then run returns cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
