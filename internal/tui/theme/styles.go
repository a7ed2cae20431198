package theme

import "charm.land/lipgloss/v2"

// Styles contains the pre-built lipgloss styles for the TUI.
type Styles struct {
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	StepIndicator  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	ListItem    lipgloss.Style
	ListCursor  lipgloss.Style
	ListActive  lipgloss.Style
	Description lipgloss.Style
	Muted       lipgloss.Style
	WarningText lipgloss.Style
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	FileHeader  lipgloss.Style
	DiffInsert  lipgloss.Style
	DiffDelete  lipgloss.Style
	TextareaBox lipgloss.Style
}

func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Secondary)).
			Background(lipgloss.Color(t.BgBase)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true).
			Align(lipgloss.Center),
		StepIndicator: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)),

		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle1)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSurface2)),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Secondary)).
			Bold(true),

		ListItem:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
		ListCursor:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),
		ListActive:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		ErrorText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		FileHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true).
			Underline(true),
		DiffInsert: lipgloss.NewStyle().Foreground(lipgloss.Color(t.DiffInsert)),
		DiffDelete: lipgloss.NewStyle().Foreground(lipgloss.Color(t.DiffDelete)),
		TextareaBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.FgSurface2)),
	}
}
