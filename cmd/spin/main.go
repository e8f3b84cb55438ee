// Package main provides the terminal host for the wheel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okian/spinner/internal/adapters/memory"
	service "github.com/okian/spinner/internal/app"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/config"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/editor"
	"github.com/okian/spinner/internal/tui"
	"github.com/okian/spinner/pkg/logger"
)

const readyTimeout = 15 * time.Second

var (
	verbose bool

	spinPlain bool

	loginEmail    string
	loginPassword string

	createSegments []string
	createDuration float64
	createActivate bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "spin",
		Short:        "Spin a wheel to pick a winner",
		SilenceUsage: true,
		RunE:         runSpinCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.Flags().BoolVar(&spinPlain, "plain", false, "Spin once without the interactive wheel and print the winner (implied when stdout is not a terminal)")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved wheels",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Save a new wheel",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateCmd,
	}
	createCmd.Flags().StringArrayVarP(&createSegments, "segment", "s", nil, "Segment label (repeat, at least two)")
	createCmd.Flags().Float64Var(&createDuration, "duration", 0, "Spin duration in seconds")
	createCmd.Flags().BoolVar(&createActivate, "activate", false, "Make the new wheel active")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved wheel",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}

	activateCmd := &cobra.Command{
		Use:   "activate ID",
		Short: "Choose the wheel used by spin",
		Args:  cobra.ExactArgs(1),
		RunE:  runActivateCmd,
	}

	contrastCmd := &cobra.Command{
		Use:   "contrast",
		Short: "Toggle high contrast mode",
		Args:  cobra.NoArgs,
		RunE:  runContrastCmd,
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, listCmd, createCmd, deleteCmd, activateCmd, contrastCmd)
	return rootCmd
}

// openHost loads configuration, builds the host and waits for its initial
// loads.
func openHost(cmd *cobra.Command) (*service.Host, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	l := logger.NewNop()
	if verbose {
		level, perr := logger.ParseLevel(cfg.LogLevel)
		if perr != nil {
			level = slog.LevelInfo
		}
		l = logger.New(cmd.ErrOrStderr(), level)
	}
	h, err := service.New(cfg, service.WithLogger(l))
	if err != nil {
		return nil, err
	}
	h.Start(ctx)
	select {
	case <-h.Session().Ready():
	case <-time.After(readyTimeout):
		h.Stop()
		return nil, errors.New("timed out loading session")
	case <-ctx.Done():
		h.Stop()
		return nil, ctx.Err()
	}
	if h.Variant() == client.VariantMemory {
		if err := startDemo(ctx, h); err != nil {
			h.Stop()
			return nil, err
		}
	}
	return h, nil
}

// startDemo signs the in-memory client into the demo account and gives it a
// wheel, since nothing it holds outlives the process.
func startDemo(ctx context.Context, h *service.Host) error {
	if !h.Session().Auth().IsAuthenticated {
		h.Session().Authenticate(ctx, memory.DemoEmail, memory.DemoPassword)
	}
	if len(h.Session().SpinnerSettings()) > 0 {
		return nil
	}
	ed := h.Editor()
	if err := ed.Create(ctx); err != nil {
		return err
	}
	if err := ed.Rename("Demo"); err != nil {
		return err
	}
	for _, label := range []string{"Pizza", "Sushi", "Tacos"} {
		if _, err := ed.AddSegment(label); err != nil {
			return err
		}
	}
	_, err := ed.Save(ctx)
	return err
}

func requireSignIn(h *service.Host) error {
	if !h.Session().Auth().IsAuthenticated {
		return fmt.Errorf("%w: run `spin login` first", editor.ErrSignInRequired)
	}
	return nil
}

func runSpinCmd(cmd *cobra.Command, _ []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	if err := requireSignIn(h); err != nil {
		return err
	}

	if spinPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return spinOnce(cmd, h)
	}
	wheel, cfg, ok := h.ActiveWheel(nil)
	if !ok {
		return errors.New("no saved wheels; create one with `spin create`")
	}
	defer wheel.Close()
	m := tui.NewModel(cmd.Context(), cfg, wheel, h.Session(), nil)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

func spinOnce(cmd *cobra.Command, h *service.Host) error {
	winners := make(chan model.Segment, 1)
	wheel, cfg, ok := h.ActiveWheel(func(s model.Segment) { winners <- s })
	if !ok {
		return errors.New("no saved wheels; create one with `spin create`")
	}
	defer wheel.Close()
	if !wheel.Spin() {
		return errors.New("wheel could not spin")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Spinning %q for %s...\n", cfg.Name, wheel.Duration())

	ctx, cancel := context.WithTimeout(cmd.Context(), wheel.Duration()+5*time.Second)
	defer cancel()
	select {
	case w := <-winners:
		fmt.Fprintf(cmd.OutOrStdout(), "Winner: %s\n", w.Label)
		if w.Value != "" && w.Value != w.Label {
			fmt.Fprintf(cmd.OutOrStdout(), "Value: %s\n", w.Value)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	state := h.Session().Authenticate(cmd.Context(), loginEmail, loginPassword)
	if !state.IsAuthenticated {
		return errors.New("sign in failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", state.Email)
	return nil
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	h.Session().Logout(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	if err := requireSignIn(h); err != nil {
		return err
	}
	list := h.Session().SpinnerSettings()
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved wheels")
		return nil
	}
	activeID, _ := h.Session().ActiveSpinnerID()
	for _, w := range list {
		marker := " "
		if w.ID == activeID {
			marker = "*"
		}
		labels := make([]string, len(w.Segments))
		for i, s := range w.Segments {
			labels[i] = s.Label
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  (%s)\n", marker, w.ID, w.Name, strings.Join(labels, ", "))
	}
	return nil
}

func runCreateCmd(cmd *cobra.Command, args []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	ctx := cmd.Context()
	ed := h.Editor()

	if err := ed.Create(ctx); err != nil {
		return err
	}
	if err := ed.Rename(args[0]); err != nil {
		return err
	}
	if createDuration > 0 {
		if err := ed.SetDuration(createDuration); err != nil {
			return err
		}
	}
	draft, _ := ed.Draft()
	for i, label := range createSegments {
		if i < len(draft.Segments) {
			err = ed.UpdateSegment(draft.Segments[i].ID, label, label, "")
		} else {
			_, err = ed.AddSegment(label)
		}
		if err != nil {
			return err
		}
	}
	id, err := ed.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", id)
	if createActivate {
		return ed.Activate(ctx, id)
	}
	return nil
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	if err := h.Editor().Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runActivateCmd(cmd *cobra.Command, args []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	if err := h.Editor().Activate(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active wheel is %s\n", args[0])
	return nil
}

func runContrastCmd(cmd *cobra.Command, _ []string) error {
	h, err := openHost(cmd)
	if err != nil {
		return err
	}
	defer h.Stop()
	state := "off"
	if h.Session().ToggleHighContrastMode(cmd.Context()) {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "High contrast %s\n", state)
	return nil
}
