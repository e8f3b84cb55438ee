package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/adapters/memory"
	service "github.com/okian/spinner/internal/app"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/config"
	"github.com/okian/spinner/internal/domain/animation"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/domain/selection"
	"github.com/okian/spinner/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func abcd() model.WheelConfiguration {
	return model.WheelConfiguration{
		Name: "Letters",
		Segments: []model.Segment{
			{ID: "a", Label: "A", Value: "A"},
			{ID: "b", Label: "B", Value: "B"},
			{ID: "c", Label: "C", Value: "C"},
			{ID: "d", Label: "D", Value: "D"},
		},
		Duration: 5,
	}
}

// spinOnce runs one spin of the seeded letters wheel on a manual clock.
func spinOnce(seed uint64) (winner model.Segment, calls int, parked int) {
	ctx := context.Background()
	clock := animation.NewManualClock(time.Unix(0, 0))
	h, err := service.New(config.New(),
		service.WithLogger(logger.NewNop()),
		service.WithClient(memory.New(memory.WithSeed(abcd()))),
		service.WithClock(clock),
		service.WithRNG(selection.NewSeededRNG(seed)),
	)
	So(err, ShouldBeNil)
	defer h.Stop()

	h.Session().Authenticate(ctx, memory.DemoEmail, memory.DemoPassword)
	var mu sync.Mutex
	wheel, cfg, ok := h.ActiveWheel(func(s model.Segment) {
		mu.Lock()
		defer mu.Unlock()
		winner = s
		calls++
	})
	So(ok, ShouldBeTrue)
	So(cfg.Name, ShouldEqual, "Letters")
	defer wheel.Close()

	So(wheel.Spin(), ShouldBeTrue)
	clock.Advance(4999 * time.Millisecond)
	mu.Lock()
	So(calls, ShouldEqual, 0)
	mu.Unlock()
	clock.Advance(time.Millisecond)

	parked = selection.SegmentAt(wheel.Rotation(), len(cfg.Segments))
	mu.Lock()
	defer mu.Unlock()
	return winner, calls, parked
}

func TestHostEndToEnd(t *testing.T) {
	Convey("Given the letters wheel spun with different seeds", t, func() {
		seen := map[string]bool{}
		letters := []string{"A", "B", "C", "D"}
		for seed := uint64(1); seed <= 24; seed++ {
			winner, calls, parked := spinOnce(seed)
			So(calls, ShouldEqual, 1)
			So(letters, ShouldContain, winner.Label)
			So(letters[parked], ShouldEqual, winner.Label)
			seen[winner.Label] = true
		}

		Convey("Then more than one letter wins", func() {
			So(len(seen), ShouldBeGreaterThan, 1)
		})
	})

	Convey("Given the same seed twice", t, func() {
		first, _, _ := spinOnce(42)
		second, _, _ := spinOnce(42)

		Convey("Then the winner repeats", func() {
			So(second, ShouldResemble, first)
		})
	})
}

func TestHostVariants(t *testing.T) {
	Convey("Given each configured client variant", t, func() {
		cases := map[string]string{
			config.ClientMemory:    client.VariantMemory,
			config.ClientExtension: client.VariantExtension,
			config.ClientREST:      client.VariantREST,
		}

		Convey("Then the host builds the matching client", func() {
			for name, want := range cases {
				cfg := config.New()
				cfg.Client = name
				cfg.SeedEmail = "host@example.com"
				cfg.SeedPassword = "secret"
				h, err := service.New(cfg, service.WithLogger(logger.NewNop()))
				So(err, ShouldBeNil)
				So(h.Variant(), ShouldEqual, want)
				h.Stop()
			}
		})
	})

	Convey("Given an unknown variant", t, func() {
		cfg := config.New()
		cfg.Client = "fax"
		_, err := service.New(cfg, service.WithLogger(logger.NewNop()))

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHostExtensionStorage(t *testing.T) {
	Convey("Given an extension host on a sqlite file", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.Client = config.ClientExtension
		cfg.StoragePath = filepath.Join(t.TempDir(), "host.db")
		cfg.SeedEmail = "host@example.com"
		cfg.SeedPassword = "secret"

		h, err := service.New(cfg, service.WithLogger(logger.NewNop()))
		So(err, ShouldBeNil)
		So(h.Session().Authenticate(ctx, cfg.SeedEmail, cfg.SeedPassword).IsAuthenticated, ShouldBeTrue)
		So(h.Editor().Create(ctx), ShouldBeNil)
		id, err := h.Editor().Save(ctx)
		So(err, ShouldBeNil)
		So(h.Session().SetActiveSpinner(ctx, id), ShouldBeNil)
		h.Session().ToggleHighContrastMode(ctx)
		h.Stop()

		Convey("When the host is rebuilt", func() {
			again, err := service.New(cfg, service.WithLogger(logger.NewNop()))
			So(err, ShouldBeNil)
			defer again.Stop()
			again.Start(ctx)
			<-again.Session().Ready()

			Convey("Then session, settings, active id and contrast survive", func() {
				So(again.Session().Auth().IsAuthenticated, ShouldBeTrue)
				So(len(again.Session().SpinnerSettings()), ShouldEqual, 1)
				active, ok := again.Session().ActiveSpinnerID()
				So(ok, ShouldBeTrue)
				So(active, ShouldEqual, id)
				So(again.Session().HighContrastMode(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a supplied store and a contrast override", t, func() {
		store := kv.NewMemoryStore()
		on := true
		cfg := config.New()
		cfg.HighContrast = &on
		h, err := service.New(cfg, service.WithLogger(logger.NewNop()), service.WithStore(store))
		So(err, ShouldBeNil)
		h.Stop()

		Convey("Then the override applies and the store stays open", func() {
			So(h.Session().HighContrastMode(), ShouldBeTrue)
			So(store.Set(context.Background(), "k", "v"), ShouldBeNil)
		})
	})
}
