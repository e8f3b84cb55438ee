package kv_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/spinner/internal/adapters/kv"
	. "github.com/smartystreets/goconvey/convey"
)

type closableStore interface {
	kv.Store
	Close() error
}

func exerciseStore(t *testing.T, name string, open func(t *testing.T) closableStore) {
	Convey("Given a "+name+" store", t, func() {
		ctx := context.Background()
		s := open(t)

		Convey("When reading a missing key", func() {
			v, ok, err := s.Get(ctx, "missing")

			Convey("Then it reports absence without error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(v, ShouldBeEmpty)
			})
		})

		Convey("When setting, overwriting and deleting a key", func() {
			So(s.Set(ctx, "highContrastMode", "false"), ShouldBeNil)
			So(s.Set(ctx, "highContrastMode", "true"), ShouldBeNil)
			v, ok, err := s.Get(ctx, "highContrastMode")
			delErr := s.Delete(ctx, "highContrastMode")
			_, after, _ := s.Get(ctx, "highContrastMode")

			Convey("Then the last value wins and delete removes it", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "true")
				So(delErr, ShouldBeNil)
				So(after, ShouldBeFalse)
				So(s.Delete(ctx, "never-set"), ShouldBeNil)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then calls fail with the context error", func() {
				So(errors.Is(s.Set(cctx, "k", "v"), context.Canceled), ShouldBeTrue)
				_, _, err := s.Get(cctx, "k")
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)
			err := s.Set(ctx, "k", "v")

			Convey("Then further writes fail", func() {
				So(errors.Is(err, kv.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, "memory", func(*testing.T) closableStore { return kv.NewMemoryStore() })
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, "sqlite", func(t *testing.T) closableStore {
		s, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "state", "kv.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStorePersistence(t *testing.T) {
	Convey("Given a value written to a sqlite file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "kv.db")
		first, err := kv.OpenSQLite(path)
		So(err, ShouldBeNil)
		So(first.Set(ctx, "activeSpinnerId", "w-1"), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		second, err := kv.OpenSQLite(path)
		So(err, ShouldBeNil)
		defer func() { _ = second.Close() }()
		v, ok, err := second.Get(ctx, "activeSpinnerId")

		Convey("Then reopening the file returns it", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "w-1")
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := kv.OpenSQLite("  ")

		Convey("Then opening fails", func() {
			So(errors.Is(err, kv.ErrEmptyPath), ShouldBeTrue)
		})
	})
}
