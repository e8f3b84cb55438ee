package memory_test

import (
	"context"
	"testing"

	"github.com/okian/spinner/internal/adapters/memory"
	"github.com/okian/spinner/internal/client/clienttest"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMemoryClientContract(t *testing.T) {
	clienttest.Run(t, "memory", func(*testing.T) clienttest.Subject {
		return clienttest.Subject{
			Client:   memory.New(),
			Email:    memory.DemoEmail,
			Password: memory.DemoPassword,
		}
	})
}

func TestMemoryClientOptions(t *testing.T) {
	convey.Convey("Given a client with seed wheels and an extra account", t, func() {
		ctx := context.Background()
		env := model.EnvironmentConfig{DefaultDuration: 9, PrimaryColor: "#000", SecondaryColor: "#fff"}
		c := memory.New(
			memory.WithSeed(clienttest.Wheel("Seeded")),
			memory.WithAccount("ops@example.com", "secret"),
			memory.WithEnvironment(env),
		)

		convey.Convey("When the demo account signs in", func() {
			c.Authenticate(ctx, memory.DemoEmail, memory.DemoPassword)
			list, err := c.LoadConfigurations(ctx)

			convey.Convey("Then it sees the seeded wheel", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(list), convey.ShouldEqual, 1)
				convey.So(list[0].Name, convey.ShouldEqual, "Seeded")
				convey.So(list[0].ID, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the other account signs in", func() {
			state := c.Authenticate(ctx, "ops@example.com", "secret")
			list, err := c.LoadConfigurations(ctx)

			convey.Convey("Then wheels are scoped to their owner", func() {
				convey.So(state.IsAuthenticated, convey.ShouldBeTrue)
				convey.So(err, convey.ShouldBeNil)
				convey.So(list, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When reading the environment config", func() {
			got := c.GetEnvironmentConfig(ctx)

			convey.Convey("Then the override is versioned", func() {
				convey.So(got.DefaultDuration, convey.ShouldEqual, 9)
				convey.So(got.Version, convey.ShouldEqual, model.EnvironmentConfigVersion)
			})
		})
	})
}
