// Package clienttest holds the behavioural suite every client.Client
// variant must pass.
package clienttest

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Subject is a freshly built client plus the credentials it accepts.
type Subject struct {
	Client   client.Client
	Email    string
	Password string
}

// Factory builds an isolated Subject. It is called once per Convey path, so
// it must not share state between calls.
type Factory func(t *testing.T) Subject

// Wheel returns a small valid configuration for contract runs.
func Wheel(name string) model.WheelConfiguration {
	return model.WheelConfiguration{
		Name: name,
		Segments: []model.Segment{
			{ID: "a", Label: "Alpha", Value: "alpha"},
			{ID: "b", Label: "Bravo", Value: "bravo", Color: "#00FF00"},
			{ID: "c", Label: "Charlie", Value: "charlie"},
		},
		Duration:       4,
		PrimaryColor:   "#111111",
		SecondaryColor: "#222222",
		ShowConfetti:   true,
	}
}

// Run executes the contract against the variant built by newSubject.
func Run(t *testing.T, variant string, newSubject Factory) {
	t.Helper()
	ctx := context.Background()

	Convey("Given an unauthenticated "+variant+" client", t, func() {
		s := newSubject(t)
		c := s.Client

		Convey("When reading auth info", func() {
			state := c.GetAuthInfo(ctx)

			Convey("Then it reports the unauthenticated state", func() {
				So(state.IsAuthenticated, ShouldBeFalse)
				So(state.Token, ShouldBeEmpty)
			})
		})

		Convey("When loading configurations", func() {
			list, err := c.LoadConfigurations(ctx)

			Convey("Then it fails with Not authenticated", func() {
				So(list, ShouldBeNil)
				So(errors.Is(err, client.ErrNotAuthenticated), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Not authenticated")
			})
		})

		Convey("When saving or loading by id", func() {
			_, saveErr := c.SaveConfiguration(ctx, Wheel("X"))
			_, loadErr := c.LoadConfigurationByID(ctx, "anything")

			Convey("Then both are refused", func() {
				So(errors.Is(saveErr, client.ErrNotAuthenticated), ShouldBeTrue)
				So(loadErr, ShouldNotBeNil)
			})
		})

		Convey("When authenticating with a wrong password", func() {
			state := c.Authenticate(ctx, s.Email, s.Password+"-wrong")

			Convey("Then the session stays unauthenticated", func() {
				So(state.IsAuthenticated, ShouldBeFalse)
				So(c.GetAuthInfo(ctx).IsAuthenticated, ShouldBeFalse)
			})
		})

		Convey("When reading the environment config", func() {
			env := c.GetEnvironmentConfig(ctx)

			Convey("Then it is a versioned set of defaults", func() {
				So(env.Version, ShouldEqual, model.EnvironmentConfigVersion)
				So(env.DefaultDuration, ShouldBeGreaterThan, 0)
				So(env.PrimaryColor, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given an authenticated "+variant+" client", t, func() {
		s := newSubject(t)
		c := s.Client
		state := c.Authenticate(ctx, s.Email, s.Password)
		So(state.IsAuthenticated, ShouldBeTrue)
		So(state.Email, ShouldEqual, s.Email)

		Convey("When saving a new configuration and updating it by id", func() {
			id, createErr := c.SaveConfiguration(ctx, Wheel("X"))
			updated := Wheel("Y")
			updated.ID = id
			sameID, updateErr := c.SaveConfiguration(ctx, updated)
			got, loadErr := c.LoadConfigurationByID(ctx, id)
			list, listErr := c.LoadConfigurations(ctx)

			Convey("Then the update is applied in place", func() {
				So(createErr, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
				So(updateErr, ShouldBeNil)
				So(sameID, ShouldEqual, id)
				So(loadErr, ShouldBeNil)
				So(got.ID, ShouldEqual, id)
				So(got.Name, ShouldEqual, "Y")
				So(len(got.Segments), ShouldEqual, 3)
				So(got.Segments[1].Label, ShouldEqual, "Bravo")
				So(got.Segments[1].Color, ShouldEqual, "#00FF00")
				So(got.Duration, ShouldEqual, 4)
				So(listErr, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(list[0].Name, ShouldEqual, "Y")
			})
		})

		Convey("When refreshing twice without mutation", func() {
			_, _ = c.SaveConfiguration(ctx, Wheel("A"))
			_, _ = c.SaveConfiguration(ctx, Wheel("B"))
			first, err1 := c.LoadConfigurations(ctx)
			second, err2 := c.LoadConfigurations(ctx)

			Convey("Then both lists are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(len(first), ShouldEqual, 2)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When updating or deleting an unknown id", func() {
			ghost := Wheel("ghost")
			ghost.ID = "00000000-0000-0000-0000-000000000000"
			_, updateErr := c.SaveConfiguration(ctx, ghost)
			deleteErr := c.DeleteConfiguration(ctx, ghost.ID)
			_, loadErr := c.LoadConfigurationByID(ctx, ghost.ID)

			Convey("Then they fail with not found", func() {
				So(errors.Is(updateErr, client.ErrNotFound), ShouldBeTrue)
				So(errors.Is(deleteErr, client.ErrNotFound), ShouldBeTrue)
				So(errors.Is(loadErr, client.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When deleting a saved configuration", func() {
			id, _ := c.SaveConfiguration(ctx, Wheel("Doomed"))
			deleteErr := c.DeleteConfiguration(ctx, id)
			_, loadErr := c.LoadConfigurationByID(ctx, id)
			list, _ := c.LoadConfigurations(ctx)

			Convey("Then it is gone", func() {
				So(deleteErr, ShouldBeNil)
				So(errors.Is(loadErr, client.ErrNotFound), ShouldBeTrue)
				So(len(list), ShouldEqual, 0)
			})
		})

		Convey("When marking a configuration active", func() {
			_, hadActive := c.GetActiveConfigurationID(ctx)
			id, _ := c.SaveConfiguration(ctx, Wheel("Active"))
			setErr := c.SetActiveConfiguration(ctx, id)
			active, ok := c.GetActiveConfigurationID(ctx)

			Convey("Then the active id is returned", func() {
				So(hadActive, ShouldBeFalse)
				So(setErr, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(active, ShouldEqual, id)
			})
		})

		Convey("When logging out", func() {
			c.Logout(ctx)
			_, err := c.LoadConfigurations(ctx)

			Convey("Then the session is cleared", func() {
				So(c.GetAuthInfo(ctx).IsAuthenticated, ShouldBeFalse)
				So(errors.Is(err, client.ErrNotAuthenticated), ShouldBeTrue)
			})
		})
	})
}
