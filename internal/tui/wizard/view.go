package wizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/render"
	"github.com/mark3labs/scriptwiz/internal/tui/theme"
	ctl "github.com/mark3labs/scriptwiz/internal/wizard"
)

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render builds the centered modal for the current step.
func (m *Model) render() string {
	s := theme.Current().S()

	var sections []string
	title := fmt.Sprintf("Script Wizard - Step %d of %d: %s", m.snap.Step, ctl.NumSteps, ctl.StepName(m.snap.Step))
	sections = append(sections, s.ModalTitle.Render(title))
	sections = append(sections, s.StepIndicator.Render(m.stepIndicator()))
	sections = append(sections, "")

	switch m.snap.Step {
	case ctl.StepProcedure:
		sections = append(sections, m.procedureView())
	case ctl.StepTemplate:
		sections = append(sections, m.templateView())
	case ctl.StepGenerate:
		sections = append(sections, m.generateView())
	case ctl.StepReview:
		sections = append(sections, m.reviewView())
	case ctl.StepDownload:
		sections = append(sections, m.downloadView())
	}

	if m.snap.Warning != "" {
		sections = append(sections, "", s.WarningText.Render("⚠ "+m.snap.Warning))
	}
	if m.status != "" {
		style := s.SuccessText
		if m.statusErr {
			style = s.ErrorText
		}
		sections = append(sections, "", style.Render(m.status))
	}

	nextLabel := "Next →"
	if m.snap.Step == ctl.NumSteps {
		nextLabel = "Finish"
	}
	bar := NewButtonBar(CreateBackNextButtons(m.snap.CanGoBack(), m.snap.CanGoNext() && !m.busy(), nextLabel))
	bar.SetWidth(m.contentWidth())
	sections = append(sections, "", bar.Render(), "", m.hints())

	modal := s.ModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// stepIndicator renders "● ● ○ ○ ○" style progress.
func (m *Model) stepIndicator() string {
	marks := make([]string, ctl.NumSteps)
	for i := range marks {
		if i+1 <= m.snap.Step {
			marks[i] = "●"
		} else {
			marks[i] = "○"
		}
	}
	return strings.Join(marks, " ")
}

func (m *Model) procedureView() string {
	s := theme.Current().S()
	var b strings.Builder
	b.WriteString("Choose the kind of procedure to generate:\n\n")

	for i, p := range m.cat.Procedures {
		cursor := "  "
		if i == m.cursor {
			cursor = s.ListCursor.Render("› ")
		}
		mark := s.Muted.Render("○")
		label := s.ListItem.Render(p.Label)
		if p.ID == m.snap.Selection {
			mark = s.ListActive.Render("●")
			label = s.ListActive.Render(p.Label)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, label)
		if p.Description != "" {
			fmt.Fprintf(&b, "    %s\n", s.Description.Render(p.Description))
		}
	}

	if m.snap.Selection != "" {
		fmt.Fprintf(&b, "\nSelected: %s", s.ListActive.Render(m.cat.Label(m.snap.Selection)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) templateView() string {
	s := theme.Current().S()
	var b strings.Builder
	fmt.Fprintf(&b, "Starter templates for %s:\n\n", s.ListActive.Render(m.cat.Label(m.snap.Selection)))

	if len(m.snap.Content) == 0 {
		b.WriteString(s.Muted.Render("No templates for this procedure. Continue to write your own prompt."))
		return b.String()
	}
	for i, item := range m.snap.Content {
		cursor := "  "
		title := s.ListItem.Render(item.Title)
		if i == m.cursor {
			cursor = s.ListCursor.Render("› ")
			title = s.ListCursor.Render(item.Title)
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, title)
		fmt.Fprintf(&b, "    %s\n", s.Description.Render(truncate(item.Body, m.contentWidth()-4)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) generateView() string {
	s := theme.Current().S()
	var b strings.Builder

	fmt.Fprintf(&b, "Procedure: %s    Complexity: %s\n\n",
		s.ListActive.Render(m.cat.Label(m.snap.Selection)), m.complexityView())
	b.WriteString(s.TextareaBox.Render(m.prompt.View()))
	b.WriteString("\n\n")

	switch {
	case m.busy():
		b.WriteString(m.spinner.View() + " Generating scripts...")
	case m.snap.Error != "":
		b.WriteString(s.ErrorText.Render("✗ " + m.snap.Error))
	case m.snap.Result != nil:
		fmt.Fprintf(&b, "%s\n", s.SuccessText.Render(fmt.Sprintf("✓ Artifact %s", m.snap.ArtifactID)))
		for _, sc := range m.snap.Result.Scripts {
			fmt.Fprintf(&b, "  • %s %s\n", sc.Filename, s.Muted.Render("("+render.Language(sc.Filename)+")"))
		}
	default:
		b.WriteString(s.Muted.Render("Press ctrl+g to generate."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) complexityView() string {
	s := theme.Current().S()
	parts := make([]string, len(api.Complexities))
	for i, c := range api.Complexities {
		if c == m.complexity {
			parts[i] = s.ListCursor.Render("[" + string(c) + "]")
		} else {
			parts[i] = s.Muted.Render(string(c))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) reviewView() string {
	return m.viewport.View()
}

// renderReview fills the review viewport with the scripts, or with the diff
// against the previous generation.
func (m *Model) renderReview() {
	m.viewport.SetContent(m.reviewContent())
	m.viewport.GotoTop()
}

func (m *Model) reviewContent() string {
	s := theme.Current().S()
	res := m.snap.Result
	if res == nil {
		return s.Muted.Render("No scripts generated.")
	}

	var b strings.Builder
	if m.showDiff {
		diff := render.Diff(m.snap.Previous, res)
		if diff == "" {
			return s.Muted.Render("No changes since the previous generation.")
		}
		for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				b.WriteString(s.DiffInsert.Render(line))
			case strings.HasPrefix(line, "-"):
				b.WriteString(s.DiffDelete.Render(line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	for _, sc := range res.Scripts {
		b.WriteString(s.FileHeader.Render(sc.Filename))
		b.WriteString("\n")
		b.WriteString(render.Highlight(sc.Content, sc.Filename))
		b.WriteString("\n\n")
	}
	if len(res.Dependencies) > 0 {
		b.WriteString(s.FileHeader.Render("Dependencies"))
		b.WriteString("\n")
		for _, d := range res.Dependencies {
			fmt.Fprintf(&b, "  • %s\n", d)
		}
		b.WriteString("\n")
	}
	if res.SetupInstructions != "" {
		b.WriteString(render.Markdown(res.SetupInstructions, m.contentWidth()))
		b.WriteString("\n\n")
	}
	if len(m.snap.Content) > 0 {
		b.WriteString(s.FileHeader.Render("Deployment checklist"))
		b.WriteString("\n")
		for _, item := range m.snap.Content {
			fmt.Fprintf(&b, "  ☐ %s\n", item.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) downloadView() string {
	s := theme.Current().S()
	var b strings.Builder
	fmt.Fprintf(&b, "Artifact: %s\n", s.ListActive.Render(m.snap.ArtifactID))
	fmt.Fprintf(&b, "Destination: %s\n\n", m.opts.OutputDir)
	switch {
	case m.downloading:
		b.WriteString(m.spinner.View() + " Downloading...")
	case m.snap.Completed:
		b.WriteString(s.SuccessText.Render("Done."))
	default:
		b.WriteString(s.Muted.Render("Press enter to download the archive, ctrl+n to finish."))
	}
	return b.String()
}

func (m *Model) hints() string {
	switch m.snap.Step {
	case ctl.StepProcedure:
		return renderHintBar("↑↓", "move", "enter", "select", "ctrl+n", "next", "esc", "quit")
	case ctl.StepTemplate:
		return renderHintBar("↑↓", "move", "enter", "use template", "ctrl+n", "skip", "esc", "back")
	case ctl.StepGenerate:
		if m.busy() {
			return renderHintBar("ctrl+x", "cancel", "ctrl+c", "quit")
		}
		return renderHintBar("ctrl+g", "generate", "tab", "complexity", "ctrl+e", "editor", "ctrl+n", "next", "esc", "back")
	case ctl.StepReview:
		return renderHintBar("↑↓", "scroll", "d", "diff", "s", "save", "ctrl+n", "next", "esc", "back")
	case ctl.StepDownload:
		return renderHintBar("enter", "download", "ctrl+n", "finish", "esc", "back")
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if n <= 3 || len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
