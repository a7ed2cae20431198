package theme

// NewCatppuccinMocha creates the default Catppuccin Mocha theme.
func NewCatppuccinMocha() *Theme {
	return &Theme{
		Name:   "catppuccin-mocha",
		IsDark: true,

		Primary:   "#cba6f7", // Mauve
		Secondary: "#b4befe", // Lavender

		BgBase:     "#1e1e2e",
		BgMantle:   "#181825",
		BgSurface0: "#313244",

		FgMuted:    "#6c7086", // Overlay0
		FgSubtle:   "#a6adc8", // Subtext0
		FgSubtle1:  "#bac2de", // Subtext1
		FgSurface2: "#585b70",
		FgBase:     "#cdd6f4",
		FgBright:   "#ffffff",

		Success: "#a6e3a1", // Green
		Warning: "#f9e2af", // Yellow
		Error:   "#f38ba8", // Red

		DiffInsert: "#a6e3a1",
		DiffDelete: "#f38ba8",
	}
}
