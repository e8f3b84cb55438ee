package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/spinner/internal/adapters/http/api"
	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

type apiFixture struct {
	srv *httptest.Server
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	store, err := repository.Open(":memory:", repository.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.CreateUser(t.Context(), "admin@example.com", "password"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tokens, err := api.NewTokenIssuer([]byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(store, tokens).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
	})
	return &apiFixture{srv: srv}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, f.srv.URL+path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (f *apiFixture) login(t *testing.T) string {
	resp, raw := f.do(t, http.MethodPost, "/auth/login", "", wire.LoginRequest{Email: "admin@example.com", Password: "password"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, raw)
	}
	var env wire.Envelope[wire.LoginData]
	_ = json.Unmarshal(raw, &env)
	return env.Data.AccessToken
}

func sampleItem(name string) wire.SpinnerItem {
	return wire.SpinnerItem{
		Name:           name,
		Duration:       5,
		PrimaryColor:   "#000000",
		SecondaryColor: "#FFFFFF",
		Segments: []wire.SegmentItem{
			{ID: "a", Label: "A", Value: "a"},
			{ID: "b", Label: "B", Value: "b"},
		},
	}
}

func TestAuthEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		f := newFixture(t)

		Convey("When logging in with the wrong password", func() {
			resp, raw := f.do(t, http.MethodPost, "/auth/login", "", wire.LoginRequest{Email: "admin@example.com", Password: "nope"})
			var body wire.ErrorBody
			_ = json.Unmarshal(raw, &body)

			Convey("Then it is rejected with a Directus error body", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(len(body.Errors), ShouldEqual, 1)
				So(body.Errors[0].Extensions.Code, ShouldEqual, wire.CodeInvalidCredentials)
			})
		})

		Convey("When logging in with a malformed body", func() {
			resp, _ := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": 1})

			Convey("Then it is a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When logging in and reading the current user", func() {
			token := f.login(t)
			resp, raw := f.do(t, http.MethodGet, "/users/me", token, nil)
			var env wire.Envelope[wire.User]
			_ = json.Unmarshal(raw, &env)

			Convey("Then the token identifies the account", func() {
				So(token, ShouldNotBeEmpty)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(env.Data.Email, ShouldEqual, "admin@example.com")
				So(env.Data.ID, ShouldNotBeEmpty)
			})
		})

		Convey("When logging out", func() {
			token := f.login(t)
			out, _ := f.do(t, http.MethodPost, "/auth/logout", token, nil)
			after, _ := f.do(t, http.MethodGet, "/users/me", token, nil)

			Convey("Then the token stops working", func() {
				So(out.StatusCode, ShouldEqual, http.StatusNoContent)
				So(after.StatusCode, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When calling a protected route without a token", func() {
			resp, raw := f.do(t, http.MethodGet, "/items/spinners", "", nil)

			Convey("Then it is unauthorized", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(string(raw), ShouldContainSubstring, wire.CodeInvalidToken)
			})
		})
	})
}

func TestSpinnerEndpoints(t *testing.T) {
	Convey("Given a signed-in client", t, func() {
		f := newFixture(t)
		token := f.login(t)

		Convey("When creating, patching and reading a spinner", func() {
			resp, raw := f.do(t, http.MethodPost, "/items/spinners", token, sampleItem("Lunch"))
			var created wire.Envelope[wire.SpinnerItem]
			_ = json.Unmarshal(raw, &created)
			name := "Dinner"
			patchResp, _ := f.do(t, http.MethodPatch, "/items/spinners/"+created.Data.ID, token, wire.SpinnerPatch{Name: &name})
			getResp, getRaw := f.do(t, http.MethodGet, "/items/spinners/"+created.Data.ID, token, nil)
			var got wire.Envelope[wire.SpinnerItem]
			_ = json.Unmarshal(getRaw, &got)

			Convey("Then the patch only changes the name", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(created.Data.ID, ShouldNotBeEmpty)
				So(patchResp.StatusCode, ShouldEqual, http.StatusOK)
				So(getResp.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Data.Name, ShouldEqual, "Dinner")
				So(len(got.Data.Segments), ShouldEqual, 2)
			})
		})

		Convey("When listing after two creates", func() {
			f.do(t, http.MethodPost, "/items/spinners", token, sampleItem("One"))
			f.do(t, http.MethodPost, "/items/spinners", token, sampleItem("Two"))
			resp, raw := f.do(t, http.MethodGet, "/items/spinners", token, nil)
			var list wire.Envelope[[]wire.SpinnerItem]
			_ = json.Unmarshal(raw, &list)

			Convey("Then both come back in order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(list.Data), ShouldEqual, 2)
				So(list.Data[0].Name, ShouldEqual, "One")
			})
		})

		Convey("When creating an invalid spinner", func() {
			bad := sampleItem("")
			resp, raw := f.do(t, http.MethodPost, "/items/spinners", token, bad)

			Convey("Then it is rejected as an invalid payload", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(string(raw), ShouldContainSubstring, wire.CodeInvalidPayload)
			})
		})

		Convey("When touching an unknown id", func() {
			name := "x"
			patch, _ := f.do(t, http.MethodPatch, "/items/spinners/missing", token, wire.SpinnerPatch{Name: &name})
			del, _ := f.do(t, http.MethodDelete, "/items/spinners/missing", token, nil)
			get, _ := f.do(t, http.MethodGet, "/items/spinners/missing", token, nil)

			Convey("Then every verb returns not found", func() {
				So(patch.StatusCode, ShouldEqual, http.StatusNotFound)
				So(del.StatusCode, ShouldEqual, http.StatusNotFound)
				So(get.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When deleting a spinner", func() {
			_, raw := f.do(t, http.MethodPost, "/items/spinners", token, sampleItem("Bye"))
			var created wire.Envelope[wire.SpinnerItem]
			_ = json.Unmarshal(raw, &created)
			del, _ := f.do(t, http.MethodDelete, "/items/spinners/"+created.Data.ID, token, nil)
			get, _ := f.do(t, http.MethodGet, "/items/spinners/"+created.Data.ID, token, nil)

			Convey("Then it is gone", func() {
				So(del.StatusCode, ShouldEqual, http.StatusNoContent)
				So(get.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a running API", t, func() {
		f := newFixture(t)
		health, raw := f.do(t, http.MethodGet, "/healthz", "", nil)
		metricsResp, metricsRaw := f.do(t, http.MethodGet, "/metrics", "", nil)

		Convey("Then health is ok and metrics are exposed", func() {
			So(health.StatusCode, ShouldEqual, http.StatusOK)
			So(string(raw), ShouldContainSubstring, `"ok"`)
			So(metricsResp.StatusCode, ShouldEqual, http.StatusOK)
			So(strings.Contains(string(metricsRaw), "spinner_core_spins_started_total"), ShouldBeTrue)
		})
	})
}
