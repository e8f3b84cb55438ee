// Package tui provides the Bubble Tea wheel interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/spinner/internal/domain/animation"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/session"
)

const frameInterval = time.Second / 30

type frameMsg time.Time

// Model implements the Bubble Tea wheel UI.
type Model struct {
	ctx     context.Context
	cfg     model.WheelConfiguration
	wheel   *animation.Controller
	session *session.Controller
	now     func() time.Time

	width  int
	height int

	animating bool
	winner    model.Segment
	hasWinner bool
}

// NewModel constructs a wheel TUI for cfg. wheel must have been built from
// cfg; sess may be nil, in which case contrast cannot be toggled.
func NewModel(ctx context.Context, cfg model.WheelConfiguration, wheel *animation.Controller, sess *session.Controller, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	return &Model{ctx: ctx, cfg: cfg, wheel: wheel, session: sess, now: now}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case frameMsg:
		return m, m.advance()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeySpace, tea.KeyEnter:
			return m, m.spin()
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "q":
				return m, tea.Quit
			case "c":
				if m.session != nil {
					m.session.ToggleHighContrastMode(m.ctx)
				}
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) spin() tea.Cmd {
	if !m.wheel.Spin() {
		return nil
	}
	m.hasWinner = false
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

// advance keeps ticking until the wheel settles and then records the winner.
func (m *Model) advance() tea.Cmd {
	if m.wheel.State() == animation.Spinning {
		return frame()
	}
	m.animating = false
	if w, ok := m.wheel.Winner(); ok {
		m.winner, m.hasWinner = w, true
	}
	return nil
}

func (m *Model) highContrast() bool {
	return m.session != nil && m.session.HighContrastMode()
}

// View implements tea.Model.
func (m *Model) View() string {
	p := newPalette(m.cfg, m.highContrast())
	rotation := m.wheel.RotationAt(m.now())

	var b strings.Builder
	b.WriteString(p.title.Render(m.cfg.Name))
	b.WriteString("\n\n")
	b.WriteString(renderRing(m.wheel.Segments(), rotation, p))
	b.WriteString("\n\n")
	switch {
	case m.wheel.State() == animation.Spinning:
		b.WriteString("Spinning…")
	case m.hasWinner:
		b.WriteString(p.winner.Render(fmt.Sprintf("Winner: %s", m.winner.Label)))
		if m.cfg.ShowConfetti && !p.contrast {
			b.WriteString(" 🎉")
		}
	default:
		b.WriteString("Press space to spin")
	}
	b.WriteString("\n")
	b.WriteString(p.footer.Render("space spin · c contrast · q quit"))

	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
