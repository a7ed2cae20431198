package theme

import "sync"

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string

	// Foreground hierarchy (dim→bright)
	FgMuted    string
	FgSubtle   string
	FgSubtle1  string
	FgSurface2 string
	FgBase     string
	FgBright   string

	// Status colors
	Success string
	Warning string
	Error   string

	// Diff colors
	DiffInsert string
	DiffDelete string

	styles     *Styles
	stylesOnce sync.Once
}

// S returns the pre-built styles for this theme, built on first use.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the process-wide theme.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}
