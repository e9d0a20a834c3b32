package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const (
	NameLight = "light"
	NameDark  = "dark"
)

type Palette struct {
	Primary          lipgloss.Color
	OnPrimary        lipgloss.Color
	PrimaryContainer lipgloss.Color
	Secondary        lipgloss.Color
	Error            lipgloss.Color
	Background       lipgloss.Color
	OnBackground     lipgloss.Color
	Surface          lipgloss.Color
	OnSurface        lipgloss.Color
	SurfaceVariant   lipgloss.Color
	OnSurfaceVariant lipgloss.Color
	Outline          lipgloss.Color
}

// Theme is a value: Toggle returns a new Theme and never changes the receiver.
type Theme struct {
	name    string
	palette Palette
}

func Light() Theme {
	return Theme{
		name: NameLight,
		palette: Palette{
			Primary:          "#4285F4",
			OnPrimary:        "#FFFFFF",
			PrimaryContainer: "#E8F0FE",
			Secondary:        "#34A853",
			Error:            "#EA4335",
			Background:       "#FFFFFF",
			OnBackground:     "#202124",
			Surface:          "#FFFFFF",
			OnSurface:        "#202124",
			SurfaceVariant:   "#F8F9FA",
			OnSurfaceVariant: "#5F6368",
			Outline:          "#DADCE0",
		},
	}
}

func Dark() Theme {
	return Theme{
		name: NameDark,
		palette: Palette{
			Primary:          "#8AB4F8",
			OnPrimary:        "#0D2C76",
			PrimaryContainer: "#1A3A6B",
			Secondary:        "#81C995",
			Error:            "#F28B82",
			Background:       "#202124",
			OnBackground:     "#E8EAED",
			Surface:          "#202124",
			OnSurface:        "#E8EAED",
			SurfaceVariant:   "#303134",
			OnSurfaceVariant: "#9AA0A6",
			Outline:          "#5F6368",
		},
	}
}

func ByName(name string) (Theme, error) {
	switch name {
	case NameLight:
		return Light(), nil
	case NameDark:
		return Dark(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}

func (t Theme) Name() string {
	return t.name
}

func (t Theme) IsDark() bool {
	return t.name == NameDark
}

func (t Theme) Palette() Palette {
	return t.palette
}

func (t Theme) Toggle() Theme {
	if t.IsDark() {
		return Light()
	}
	return Dark()
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Header      lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Chip        lipgloss.Style
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	Button      lipgloss.Style
	ButtonOff   lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Toast       lipgloss.Style
	Banner      lipgloss.Style
	Overlay     lipgloss.Style
}

func (t Theme) Styles() Styles {
	p := t.palette
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Outline).
		Foreground(p.OnSurface).
		Padding(0, 1)

	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Padding(0, 1),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.OnSurface),
		Subtitle:    lipgloss.NewStyle().Foreground(p.OnSurfaceVariant),
		Body:        lipgloss.NewStyle().Foreground(p.OnSurface),
		Muted:       lipgloss.NewStyle().Foreground(p.OnSurfaceVariant).Italic(true),
		Accent:      lipgloss.NewStyle().Foreground(p.Primary),
		Chip:        lipgloss.NewStyle().Foreground(p.Primary).Background(p.PrimaryContainer).Padding(0, 1),
		Card:        card,
		CardFocused: card.BorderForeground(p.Primary),
		Button:      lipgloss.NewStyle().Bold(true).Foreground(p.OnPrimary).Background(p.Primary).Padding(0, 2),
		ButtonOff:   lipgloss.NewStyle().Foreground(p.OnSurfaceVariant).Background(p.SurfaceVariant).Padding(0, 2),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Underline(true).Padding(0, 2),
		TabInactive: lipgloss.NewStyle().Foreground(p.OnSurfaceVariant).Padding(0, 2),
		Toast:       lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Banner:      lipgloss.NewStyle().Foreground(p.OnSurfaceVariant).Background(p.SurfaceVariant).Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.Primary).
			Padding(1, 4),
	}
}
