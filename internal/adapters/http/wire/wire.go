// Package wire holds the JSON shapes shared by the configuration API and
// its REST client. Items follow the Directus conventions: payloads sit
// under "data" and failures under "errors".
package wire

import "github.com/okian/spinner/internal/domain/model"

// Envelope wraps every successful response body.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is the failure response body.
type ErrorBody struct {
	Errors []Error `json:"errors"`
}

// Error is one entry of ErrorBody.
type Error struct {
	Message    string          `json:"message"`
	Extensions ErrorExtensions `json:"extensions"`
}

// ErrorExtensions carries the machine-readable code.
type ErrorExtensions struct {
	Code string `json:"code"`
}

// Error codes.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeNotFound           = "RECORD_NOT_FOUND"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData is returned by POST /auth/login.
type LoginData struct {
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"` // milliseconds
}

// User is returned by GET /users/me.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SegmentItem is a nested sub-item of a spinner.
type SegmentItem struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Color  string   `json:"color,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// SpinnerItem is one row of the spinners collection.
type SpinnerItem struct {
	ID             string        `json:"id,omitempty"`
	Name           string        `json:"name"`
	Duration       float64       `json:"duration"`
	PrimaryColor   string        `json:"primary_color"`
	SecondaryColor string        `json:"secondary_color"`
	ShowConfetti   bool          `json:"show_confetti"`
	UserCreated    string        `json:"user_created,omitempty"`
	Segments       []SegmentItem `json:"segments"`
}

// SpinnerPatch is the body of PATCH /items/spinners/{id}. Absent fields are
// left unchanged.
type SpinnerPatch struct {
	Name           *string        `json:"name,omitempty"`
	Duration       *float64       `json:"duration,omitempty"`
	PrimaryColor   *string        `json:"primary_color,omitempty"`
	SecondaryColor *string        `json:"secondary_color,omitempty"`
	ShowConfetti   *bool          `json:"show_confetti,omitempty"`
	Segments       *[]SegmentItem `json:"segments,omitempty"`
}

// FromModel converts a configuration to its wire item.
func FromModel(w model.WheelConfiguration) SpinnerItem {
	item := SpinnerItem{
		ID:             w.ID,
		Name:           w.Name,
		Duration:       w.Duration,
		PrimaryColor:   w.PrimaryColor,
		SecondaryColor: w.SecondaryColor,
		ShowConfetti:   w.ShowConfetti,
		UserCreated:    w.OwnerID,
		Segments:       make([]SegmentItem, len(w.Segments)),
	}
	for i, s := range w.Segments {
		s = s.Clone()
		item.Segments[i] = SegmentItem{ID: s.ID, Label: s.Label, Value: s.Value, Color: s.Color, Weight: s.Weight}
	}
	return item
}

// ToModel converts a wire item to a configuration.
func (i SpinnerItem) ToModel() model.WheelConfiguration {
	w := model.WheelConfiguration{
		ID:             i.ID,
		Name:           i.Name,
		Duration:       i.Duration,
		PrimaryColor:   i.PrimaryColor,
		SecondaryColor: i.SecondaryColor,
		ShowConfetti:   i.ShowConfetti,
		OwnerID:        i.UserCreated,
		Segments:       segmentsToModel(i.Segments),
	}
	return w
}

// PatchFromModel builds a patch that overwrites every field.
func PatchFromModel(w model.WheelConfiguration) SpinnerPatch {
	item := FromModel(w)
	return SpinnerPatch{
		Name:           &item.Name,
		Duration:       &item.Duration,
		PrimaryColor:   &item.PrimaryColor,
		SecondaryColor: &item.SecondaryColor,
		ShowConfetti:   &item.ShowConfetti,
		Segments:       &item.Segments,
	}
}

// Apply overlays the patch onto w.
func (p SpinnerPatch) Apply(w model.WheelConfiguration) model.WheelConfiguration {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Duration != nil {
		w.Duration = *p.Duration
	}
	if p.PrimaryColor != nil {
		w.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil {
		w.SecondaryColor = *p.SecondaryColor
	}
	if p.ShowConfetti != nil {
		w.ShowConfetti = *p.ShowConfetti
	}
	if p.Segments != nil {
		w.Segments = segmentsToModel(*p.Segments)
	}
	return w
}

func segmentsToModel(in []SegmentItem) []model.Segment {
	out := make([]model.Segment, len(in))
	for i, s := range in {
		out[i] = model.Segment{ID: s.ID, Label: s.Label, Value: s.Value, Color: s.Color, Weight: s.Weight}.Clone()
	}
	return out
}
