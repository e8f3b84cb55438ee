package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/spinner/internal/domain/model"
)

// palette holds the styles used to draw one wheel.
type palette struct {
	primary   lipgloss.Style
	secondary lipgloss.Style
	selected  lipgloss.Style
	pointer   lipgloss.Style
	title     lipgloss.Style
	winner    lipgloss.Style
	footer    lipgloss.Style
	contrast  bool
}

var (
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	contrastFooter    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	contrastPrimary   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	contrastSecondary = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	contrastSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFFF00")).Bold(true)
)

// newPalette derives styles from the wheel colours, or the fixed high
// contrast set.
func newPalette(cfg model.WheelConfiguration, highContrast bool) palette {
	if highContrast {
		return palette{
			primary:   contrastPrimary,
			secondary: contrastSecondary,
			selected:  contrastSelected,
			pointer:   contrastSecondary,
			title:     contrastPrimary.Underline(true),
			winner:    contrastSelected,
			footer:    contrastFooter,
			contrast:  true,
		}
	}
	primary := lipgloss.NewStyle().Foreground(lipgloss.Color(orDefault(cfg.PrimaryColor, "#3B82F6")))
	secondary := lipgloss.NewStyle().Foreground(lipgloss.Color(orDefault(cfg.SecondaryColor, "#F59E0B")))
	return palette{
		primary:   primary,
		secondary: secondary,
		selected:  lipgloss.NewStyle().Reverse(true).Bold(true),
		pointer:   secondary.Bold(true),
		title:     primary.Bold(true),
		winner:    secondary.Bold(true),
		footer:    footerStyle,
	}
}

// segment returns the style for segment i. A segment colour overrides the
// alternating palette unless high contrast is on.
func (p palette) segment(i int, s model.Segment) lipgloss.Style {
	if !p.contrast && s.Color != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
	}
	if i%2 == 0 {
		return p.primary
	}
	return p.secondary
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
