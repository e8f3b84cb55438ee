package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/spinner/internal/adapters/extension"
	"github.com/okian/spinner/internal/adapters/http/api"
	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/adapters/repository"
	"github.com/okian/spinner/internal/adapters/rest"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/client/clienttest"
	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

const (
	email    = "admin@example.com"
	password = "password"
)

// startAPI runs the configuration API on an in-memory database.
func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := repository.Open(":memory:", repository.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.CreateUser(context.Background(), email, password); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tokens, err := api.NewTokenIssuer([]byte("rest-test"), time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(store, tokens).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
	})
	return srv
}

func TestRESTClientContract(t *testing.T) {
	clienttest.Run(t, "rest", func(t *testing.T) clienttest.Subject {
		srv := startAPI(t)
		return clienttest.Subject{
			Client:   rest.New(srv.URL, rest.WithTimeout(5*time.Second)),
			Email:    email,
			Password: password,
		}
	})
}

func TestRESTCacheFallback(t *testing.T) {
	convey.Convey("Given a client that has loaded its spinners once", t, func() {
		ctx := context.Background()
		srv := startAPI(t)
		cache := kv.NewMemoryStore()
		c := rest.New(srv.URL, rest.WithCache(cache), rest.WithTimeout(2*time.Second))
		convey.So(c.Authenticate(ctx, email, password).IsAuthenticated, convey.ShouldBeTrue)
		id, err := c.SaveConfiguration(ctx, clienttest.Wheel("Cached"))
		convey.So(err, convey.ShouldBeNil)
		first, err := c.LoadConfigurations(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the API goes away", func() {
			srv.Close()
			list, listErr := c.LoadConfigurations(ctx)
			one, oneErr := c.LoadConfigurationByID(ctx, id)
			_, saveErr := c.SaveConfiguration(ctx, clienttest.Wheel("Offline"))

			convey.Convey("Then reads are served from the cache and writes fail", func() {
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(list, convey.ShouldResemble, first)
				convey.So(oneErr, convey.ShouldBeNil)
				convey.So(one.Name, convey.ShouldEqual, "Cached")
				convey.So(errors.Is(saveErr, client.ErrTransport), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a new client shares the cache", func() {
			other := rest.New(srv.URL, rest.WithCache(cache))

			convey.Convey("Then the session carries over", func() {
				convey.So(other.GetAuthInfo(ctx).Email, convey.ShouldEqual, email)
			})
		})
	})

	convey.Convey("Given a client with no cached list", t, func() {
		ctx := context.Background()
		srv := startAPI(t)
		c := rest.New(srv.URL)
		c.Authenticate(ctx, email, password)
		srv.Close()
		_, err := c.LoadConfigurations(ctx)

		convey.Convey("Then a transport failure is reported", func() {
			convey.So(errors.Is(err, client.ErrTransport), convey.ShouldBeTrue)
			convey.So(c.GetAuthInfo(ctx).IsAuthenticated, convey.ShouldBeTrue)
		})
	})
}

func TestRESTSessionRevoked(t *testing.T) {
	convey.Convey("Given a client whose token was revoked elsewhere", t, func() {
		ctx := context.Background()
		srv := startAPI(t)
		c := rest.New(srv.URL, rest.WithCache(kv.NewMemoryStore()))
		state := c.Authenticate(ctx, email, password)

		logoutWith(t, srv.URL, state.Token)

		_, err := c.LoadConfigurations(ctx)

		convey.Convey("Then the client drops its session", func() {
			convey.So(errors.Is(err, client.ErrNotAuthenticated), convey.ShouldBeTrue)
			convey.So(c.GetAuthInfo(ctx).IsAuthenticated, convey.ShouldBeFalse)
		})
	})
}

// logoutWith revokes token directly against the API.
func logoutWith(t *testing.T, baseURL, token string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/logout", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}
}

func TestRESTAsExtensionAuthenticator(t *testing.T) {
	convey.Convey("Given an extension client that signs in through the API", t, func() {
		ctx := context.Background()
		srv := startAPI(t)
		ext := extension.New(kv.NewMemoryStore(), rest.New(srv.URL))

		convey.Convey("When authenticating", func() {
			ok := ext.Authenticate(ctx, email, password)
			bad := ext.Authenticate(ctx, email, "wrong")

			convey.Convey("Then the API decides", func() {
				convey.So(ok.IsAuthenticated, convey.ShouldBeTrue)
				convey.So(ok.UserID, convey.ShouldNotBeEmpty)
				convey.So(bad.IsAuthenticated, convey.ShouldBeFalse)
			})
		})
	})
}
