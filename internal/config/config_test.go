package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/spinner/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8055")
			convey.So(cfg.Client, convey.ShouldEqual, config.ClientMemory)
			convey.So(cfg.DefaultDuration, convey.ShouldEqual, 5)
			convey.So(cfg.MinRevolutions, convey.ShouldEqual, 3)
			convey.So(cfg.MaxRevolutions, convey.ShouldEqual, 5)
			convey.So(cfg.TokenTTL, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.HighContrast, convey.ShouldBeNil)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one rule each", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"unknown client":     func(c *config.Config) { c.Client = "carrier-pigeon" },
			"rest without url":   func(c *config.Config) { c.Client = config.ClientREST; c.APIURL = "" },
			"zero duration":      func(c *config.Config) { c.DefaultDuration = 0 },
			"inverted turns":     func(c *config.Config) { c.MinRevolutions = 6; c.MaxRevolutions = 4 },
			"zero min turns":     func(c *config.Config) { c.MinRevolutions = 0 },
			"non-positive token": func(c *config.Config) { c.TokenTTL = 0 },
		}

		convey.Convey("Then each one is rejected as invalid", func() {
			for name, mutate := range cases {
				convey.Println(name)
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
