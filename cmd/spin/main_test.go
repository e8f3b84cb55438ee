package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIExtensionWorkflow(t *testing.T) {
	t.Setenv("SPINNER_CLIENT", "extension")
	t.Setenv("SPINNER_STORAGE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("SPINNER_SEED_EMAIL", "cli@example.com")
	t.Setenv("SPINNER_SEED_PASSWORD", "secret")

	convey.Convey("Given a terminal host on persistent storage", t, func() {
		convey.Convey("Then every command works across invocations", func() {
			_, err := execute("list")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "spin login")

			_, err = execute("login", "--email", "cli@example.com", "--password", "wrong")
			convey.So(err, convey.ShouldNotBeNil)

			out, err := execute("login", "--email", "cli@example.com", "--password", "secret")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Signed in as cli@example.com")

			out, err = execute("create", "Lunch", "-s", "Pizza", "-s", "Sushi", "-s", "Tacos", "--duration", "1", "--activate")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldStartWith, "Saved ")
			id := strings.TrimSpace(strings.TrimPrefix(out, "Saved "))
			convey.So(id, convey.ShouldNotBeEmpty)

			_, err = execute("create", "Solo", "-s", "Only")
			convey.So(err, convey.ShouldBeNil)

			out, err = execute("list")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "* "+id+"  Lunch  (Pizza, Sushi, Tacos)")
			convey.So(out, convey.ShouldContainSubstring, "Solo")

			out, err = execute("--plain")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, `Spinning "Lunch"`)
			convey.So(out, convey.ShouldContainSubstring, "Winner: ")

			out, err = execute("contrast")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "High contrast on")
			out, _ = execute("contrast")
			convey.So(out, convey.ShouldContainSubstring, "High contrast off")

			_, err = execute("create", "Broken", "--duration", "90")
			convey.So(err, convey.ShouldNotBeNil)

			out, err = execute("delete", id)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Deleted "+id)
			_, err = execute("delete", id)
			convey.So(err, convey.ShouldNotBeNil)

			out, err = execute("logout")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Signed out")
			_, err = execute("list")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestCLIMemoryDemo(t *testing.T) {
	t.Setenv("SPINNER_CLIENT", "memory")
	t.Setenv("SPINNER_DEFAULT_DURATION", "1")

	convey.Convey("Given the in-memory demo", t, func() {
		convey.Convey("Then a plain spin picks a demo segment", func() {
			out, err := execute("--plain")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, `Spinning "Demo"`)
			convey.So(out, convey.ShouldContainSubstring, "Winner: ")
		})

		convey.Convey("Then list shows the demo wheel", func() {
			out, err := execute("list")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Demo")
			convey.So(out, convey.ShouldContainSubstring, "Pizza")
		})
	})
}
