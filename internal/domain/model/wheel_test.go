package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/spinner/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewWheel(t *testing.T) {
	convey.Convey("Given environment defaults", t, func() {
		env := model.DefaultEnvironment()

		convey.Convey("When creating a new wheel", func() {
			w := model.NewWheel("Lunch", env)

			convey.Convey("Then it should be an unsaved draft with two segments", func() {
				convey.So(w.Persisted(), convey.ShouldBeFalse)
				convey.So(w.Name, convey.ShouldEqual, "Lunch")
				convey.So(len(w.Segments), convey.ShouldEqual, 2)
				convey.So(w.Segments[0].ID, convey.ShouldNotEqual, w.Segments[1].ID)
				convey.So(len(w.Segments[0].ID), convey.ShouldEqual, 12)
				convey.So(w.Duration, convey.ShouldEqual, env.DefaultDuration)
				convey.So(w.PrimaryColor, convey.ShouldEqual, env.PrimaryColor)
				convey.So(w.SpinDuration(), convey.ShouldEqual, 5*time.Second)
			})
		})
	})
}

func TestWheelClone(t *testing.T) {
	convey.Convey("Given a configuration with a weighted segment", t, func() {
		weight := 2.0
		w := model.WheelConfiguration{
			ID:       "w1",
			Name:     "Chores",
			Segments: []model.Segment{{ID: "a", Label: "Dishes", Weight: &weight}},
			Duration: 3,
		}

		convey.Convey("When cloning and mutating the clone", func() {
			c := w.Clone()
			c.Name = "Other"
			c.Segments[0].Label = "Laundry"
			*c.Segments[0].Weight = 9

			convey.Convey("Then the original should be untouched", func() {
				convey.So(w.Name, convey.ShouldEqual, "Chores")
				convey.So(w.Segments[0].Label, convey.ShouldEqual, "Dishes")
				convey.So(*w.Segments[0].Weight, convey.ShouldEqual, 2.0)
				convey.So(model.CloneAll(nil), convey.ShouldBeNil)
			})
		})
	})
}

func TestSegmentJSON(t *testing.T) {
	convey.Convey("Given a segment without color or weight", t, func() {
		raw, err := json.Marshal(model.Segment{ID: "a", Label: "A", Value: "a"})

		convey.Convey("Then optional fields should be omitted", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldEqual, `{"id":"a","label":"A","value":"a"}`)
		})
	})
}
