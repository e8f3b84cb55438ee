package wire_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSpinnerPatch(t *testing.T) {
	convey.Convey("Given a stored configuration", t, func() {
		stored := model.WheelConfiguration{
			ID:       "w1",
			Name:     "Old",
			Duration: 3,
			Segments: []model.Segment{{ID: "a", Label: "A", Value: "a"}},
		}

		convey.Convey("When applying a patch that only renames", func() {
			var p wire.SpinnerPatch
			convey.So(json.Unmarshal([]byte(`{"name":"New"}`), &p), convey.ShouldBeNil)
			got := p.Apply(stored)

			convey.Convey("Then the other fields are untouched", func() {
				convey.So(got.Name, convey.ShouldEqual, "New")
				convey.So(got.Duration, convey.ShouldEqual, 3)
				convey.So(len(got.Segments), convey.ShouldEqual, 1)
				convey.So(got.ID, convey.ShouldEqual, "w1")
			})
		})

		convey.Convey("When applying a full patch built from a model", func() {
			next := stored.Clone()
			next.Name = "Full"
			next.ShowConfetti = true
			next.Segments = append(next.Segments, model.Segment{ID: "b", Label: "B", Value: "b", Color: "#fff"})
			got := wire.PatchFromModel(next).Apply(stored)

			convey.Convey("Then every field follows the model", func() {
				convey.So(got.Name, convey.ShouldEqual, "Full")
				convey.So(got.ShowConfetti, convey.ShouldBeTrue)
				convey.So(got.Segments, convey.ShouldResemble, next.Segments)
			})
		})

		convey.Convey("When converting to the wire item", func() {
			raw, err := json.Marshal(wire.FromModel(stored))

			convey.Convey("Then field names use snake case", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, `"primary_color"`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"segments":[{"id":"a","label":"A","value":"a"}]`)
			})
		})
	})
}
