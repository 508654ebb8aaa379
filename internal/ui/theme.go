package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/order"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and panels
	SurfaceAlt string // Modals and secondary surfaces

	SelectionBg   string
	SelectionText string
	Border        string
	BorderFocus   string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// KindColors color interaction log entries by kind.
	KindColors map[order.InteractionKind]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		InfoText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Background(lipgloss.Color(t.SurfaceAlt)).
			Padding(1, 2),

		kindColors: t.KindColors,
		muted:      t.Muted,
		levels: map[string]string{
			"debug": t.Info,
			"info":  t.Success,
			"warn":  t.Warning,
			"error": t.Danger,
		},
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Modal    lipgloss.Style

	kindColors map[order.InteractionKind]string
	levels     map[string]string
	muted      string
}

// KindStyle returns the style for an interaction kind.
func (s Styles) KindStyle(kind order.InteractionKind) lipgloss.Style {
	color := s.kindColors[kind]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// LevelStyle returns the style for a log level.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	color := s.levels[level]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// WithBackground returns a copy of Styles whose text styles carry bgColor,
// so styled segments keep the panel background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.InfoText = s.InfoText.Background(bg)
	out.Header = s.Header.Background(bg)
	out.Logo = s.Logo.Background(bg)
	return out
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:          "Nightfox",
		Background:    "#131a24", // bg0
		Surface:       "#192330", // bg1
		SurfaceAlt:    "#212e3f", // bg2
		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1
		Border:        "#39506d", // bg4
		BorderFocus:   "#719cd6", // blue
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		Info:          "#63cdcf",
		KindColors: map[order.InteractionKind]string{
			order.KindItemAdded:         "#81b29a", // green
			order.KindQuantityUpdate:    "#719cd6", // blue
			order.KindOptionsUpdate:     "#9d79d6", // magenta
			order.KindCategorySelection: "#63cdcf", // cyan
			order.KindItemRemoved:       "#c94f6d", // red
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:          "Kanagawa",
		Background:    "#16161D", // sumiInk0
		Surface:       "#1F1F28", // sumiInk3
		SurfaceAlt:    "#2A2A37", // sumiInk4
		SelectionBg:   "#2D4F67", // waveBlue1
		SelectionText: "#DCD7BA", // fujiWhite
		Border:        "#54546D", // sumiInk6
		BorderFocus:   "#7E9CD8", // crystalBlue
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		Info:          "#7FB4CA",
		KindColors: map[order.InteractionKind]string{
			order.KindItemAdded:         "#98BB6C", // springGreen
			order.KindQuantityUpdate:    "#7E9CD8", // crystalBlue
			order.KindOptionsUpdate:     "#957FB8", // oniViolet
			order.KindCategorySelection: "#7FB4CA", // springBlue
			order.KindItemRemoved:       "#E46876", // waveRed
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name:          "Slate",
		Background:    "#020617", // slate-950
		Surface:       "#0f172a", // slate-900
		SurfaceAlt:    "#1e293b", // slate-800
		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50
		Border:        "#334155", // slate-700
		BorderFocus:   "#38bdf8", // sky-400
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		KindColors: map[order.InteractionKind]string{
			order.KindItemAdded:         "#22c55e", // green-500
			order.KindQuantityUpdate:    "#0ea5e9", // sky-500
			order.KindOptionsUpdate:     "#06b6d4", // cyan-500
			order.KindCategorySelection: "#7dd3fc", // sky-300
			order.KindItemRemoved:       "#dc2626", // red-600
		},
	}
}
