package client_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// stubClient returns canned values and counts calls.
type stubClient struct {
	calls int
	err   error
	auth  model.AuthState
}

func (s *stubClient) GetAuthInfo(context.Context) model.AuthState { s.calls++; return s.auth }
func (s *stubClient) Authenticate(_ context.Context, email, _ string) model.AuthState {
	s.calls++
	return model.AuthState{IsAuthenticated: email != "", Email: email}
}
func (s *stubClient) Logout(context.Context) { s.calls++ }
func (s *stubClient) LoadConfigurations(context.Context) ([]model.WheelConfiguration, error) {
	s.calls++
	return []model.WheelConfiguration{{ID: "w"}}, s.err
}
func (s *stubClient) LoadConfigurationByID(_ context.Context, id string) (model.WheelConfiguration, error) {
	s.calls++
	return model.WheelConfiguration{ID: id}, s.err
}
func (s *stubClient) SaveConfiguration(_ context.Context, cfg model.WheelConfiguration) (string, error) {
	s.calls++
	return "new-id", s.err
}
func (s *stubClient) DeleteConfiguration(context.Context, string) error    { s.calls++; return s.err }
func (s *stubClient) SetActiveConfiguration(context.Context, string) error { s.calls++; return s.err }
func (s *stubClient) GetActiveConfigurationID(context.Context) (string, bool) {
	s.calls++
	return "w", true
}
func (s *stubClient) GetEnvironmentConfig(context.Context) model.EnvironmentConfig {
	s.calls++
	return model.DefaultEnvironment()
}

func TestInstrument(t *testing.T) {
	convey.Convey("Given an instrumented client", t, func() {
		ctx := context.Background()
		stub := &stubClient{}
		c := client.Instrument(stub, "", logger.NewNop())

		convey.Convey("When every operation is called", func() {
			c.GetAuthInfo(ctx)
			c.Authenticate(ctx, "a@b.c", "pw")
			c.Authenticate(ctx, "", "pw")
			list, _ := c.LoadConfigurations(ctx)
			got, _ := c.LoadConfigurationByID(ctx, "x")
			id, _ := c.SaveConfiguration(ctx, model.WheelConfiguration{})
			_ = c.DeleteConfiguration(ctx, "x")
			_ = c.SetActiveConfiguration(ctx, "x")
			active, ok := c.GetActiveConfigurationID(ctx)
			env := c.GetEnvironmentConfig(ctx)
			c.Logout(ctx)

			convey.Convey("Then results pass through unchanged", func() {
				convey.So(stub.calls, convey.ShouldEqual, 11)
				convey.So(len(list), convey.ShouldEqual, 1)
				convey.So(got.ID, convey.ShouldEqual, "x")
				convey.So(id, convey.ShouldEqual, "new-id")
				convey.So(active, convey.ShouldEqual, "w")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(env.Version, convey.ShouldEqual, model.EnvironmentConfigVersion)
			})
		})

		convey.Convey("When the wrapped client fails", func() {
			stub.err = fmt.Errorf("dial: %w", client.ErrTransport)
			_, err := c.LoadConfigurations(ctx)

			convey.Convey("Then the error is returned as is", func() {
				convey.So(errors.Is(err, client.ErrTransport), convey.ShouldBeTrue)
			})
		})
	})
}

func TestResultOf(t *testing.T) {
	convey.Convey("Given operation errors", t, func() {
		convey.Convey("Then each maps to a metrics label", func() {
			convey.So(client.ResultOf(nil), convey.ShouldEqual, client.ResultSuccess)
			convey.So(client.ResultOf(client.ErrNotAuthenticated), convey.ShouldEqual, client.ResultNotAuthenticated)
			convey.So(client.ResultOf(fmt.Errorf("x: %w", client.ErrNotFound)), convey.ShouldEqual, client.ResultNotFound)
			convey.So(client.ResultOf(client.ErrTransport), convey.ShouldEqual, client.ResultTransport)
			convey.So(client.ResultOf(errors.New("other")), convey.ShouldEqual, client.ResultError)
			convey.So(client.ErrNotAuthenticated.Error(), convey.ShouldEqual, "Not authenticated")
		})
	})
}
