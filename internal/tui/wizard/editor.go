package wizard

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/scriptwiz/internal/logger"
)

// openEditor launches $EDITOR on a temp file holding the current prompt.
func openEditor(content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "scriptwiz_prompt_*.md")
	if err != nil {
		return func() tea.Msg { return promptEditedMsg{err: err} }
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return func() tea.Msg { return promptEditedMsg{err: err} }
	}
	_ = tmpfile.Close()
	path := tmpfile.Name()

	cmd, err := editor.Command("scriptwiz", path)
	if err != nil {
		_ = os.Remove(path)
		return func() tea.Msg { return promptEditedMsg{err: err} }
	}

	logger.Debug("Opening editor for prompt: %s", path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return promptEditedMsg{err: err}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return promptEditedMsg{err: err}
		}
		return promptEditedMsg{content: string(data)}
	})
}
