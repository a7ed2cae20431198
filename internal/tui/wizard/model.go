// Package wizard is the terminal front end for the script generation wizard.
// It renders controller snapshots and turns key presses into controller calls.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/export"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/tui/theme"
	ctl "github.com/mark3labs/scriptwiz/internal/wizard"
)

// ErrCancelled is returned by Run when the user quits before completing.
var ErrCancelled = errors.New("wizard cancelled by user")

// Fetcher downloads an artifact location into a directory.
// *api.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// Options configures the adapter.
type Options struct {
	Fetcher    Fetcher
	OutputDir  string
	Complexity api.Complexity
	Locale     string
}

// Model is the bubbletea model for the wizard.
type Model struct {
	ctx  context.Context
	ctrl *ctl.Controller
	cat  *catalog.Catalog
	opts Options

	snap   ctl.Snapshot
	width  int
	height int
	cursor int

	prompt     textarea.Model
	complexity api.Complexity
	spinner    spinner.Model
	viewport   viewport.Model

	pending     bool // generation command dispatched, result not yet back
	downloading bool
	showDiff    bool
	status      string
	statusErr   bool
	cancelled   bool
}

// New creates the adapter for ctrl.
func New(ctx context.Context, ctrl *ctl.Controller, cat *catalog.Catalog, opts Options) *Model {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Complexity == "" {
		opts.Complexity = api.ComplexityStandard
	}

	ta := textarea.New()
	ta.Placeholder = "Describe the script you need...\n\nExample: import a CSV file into the orders table every night."
	ta.CharLimit = 5000
	ta.SetWidth(60)
	ta.SetHeight(6)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(12),
	)

	m := &Model{
		ctx:        ctx,
		ctrl:       ctrl,
		cat:        cat,
		opts:       opts,
		width:      100,
		height:     30,
		prompt:     ta,
		complexity: opts.Complexity,
		spinner:    s,
		viewport:   vp,
	}
	m.refresh()
	return m
}

// Run starts a full-screen program for ctrl and blocks until it exits.
// nav, when not nil, is attached to the program so controller downloads
// reach it.
func Run(ctx context.Context, ctrl *ctl.Controller, cat *catalog.Catalog, nav *Navigator, opts Options) (ctl.Snapshot, error) {
	m := New(ctx, ctrl, cat, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	unsubscribe := ctrl.Subscribe(func(ev ctl.Event) {
		// Update may be the caller, so never block on Send.
		go p.Send(EventMsg{Type: ev.Type})
	})
	defer unsubscribe()
	if nav != nil {
		nav.SetSender(p)
	}

	final, err := p.Run()
	if err != nil {
		return ctrl.Snapshot(), fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return ctrl.Snapshot(), fmt.Errorf("unexpected model type")
	}
	if fm.cancelled {
		return fm.snap, ErrCancelled
	}
	return fm.snap, nil
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case EventMsg:
		m.refresh()
		return m, nil

	case generationDoneMsg:
		m.pending = false
		m.refresh()
		if msg.err == nil && msg.result != nil {
			m.setStatus(fmt.Sprintf("Generated %d scripts (artifact %s)", len(msg.result.Scripts), msg.result.ArtifactID), false)
		}
		return m, nil

	case DownloadRequestedMsg:
		return m, m.fetch(msg.URL)

	case downloadDoneMsg:
		m.downloading = false
		if msg.err != nil {
			m.setStatus("Download failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Downloaded to "+msg.path, false)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus("Save failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Saved scripts to "+msg.dir, false)
		}
		return m, nil

	case promptEditedMsg:
		if msg.err != nil {
			m.setStatus("Editor failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.prompt.SetValue(strings.TrimRight(msg.content, "\n"))
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.snap.Step == ctl.StepGenerate {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.CancelGeneration()
		m.cancelled = !m.snap.Completed
		return tea.Quit
	case "esc":
		if m.snap.Step == ctl.StepProcedure {
			m.cancelled = true
			return tea.Quit
		}
		m.ctrl.GoBack()
		m.afterTransition()
		return nil
	case "ctrl+n":
		return m.next()
	}

	switch m.snap.Step {
	case ctl.StepProcedure:
		return m.handleProcedureKey(msg)
	case ctl.StepTemplate:
		return m.handleTemplateKey(msg)
	case ctl.StepGenerate:
		return m.handleGenerateKey(msg)
	case ctl.StepReview:
		return m.handleReviewKey(msg)
	case ctl.StepDownload:
		return m.handleDownloadKey(msg)
	}
	return nil
}

func (m *Model) handleProcedureKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, len(m.cat.Procedures))
	case "down", "j":
		m.moveCursor(1, len(m.cat.Procedures))
	case "enter", "space":
		if m.cursor < len(m.cat.Procedures) {
			m.ctrl.SelectOption(m.cat.Procedures[m.cursor].ID)
			m.refresh()
		}
	}
	return nil
}

func (m *Model) handleTemplateKey(msg tea.KeyPressMsg) tea.Cmd {
	items := m.snap.Content
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, len(items))
	case "down", "j":
		m.moveCursor(1, len(items))
	case "enter":
		if m.cursor < len(items) {
			m.prompt.SetValue(items[m.cursor].Body)
			m.setStatus("Using template: "+items[m.cursor].Title, false)
		}
		return m.next()
	}
	return nil
}

func (m *Model) handleGenerateKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+g":
		return m.generate()
	case "ctrl+x":
		if m.ctrl.CancelGeneration() {
			m.setStatus("Cancelling...", false)
		}
		return nil
	case "tab":
		m.complexity = m.complexity.Next()
		return nil
	case "ctrl+e":
		return openEditor(m.prompt.Value())
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) handleReviewKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "d":
		if m.snap.Previous != nil {
			m.showDiff = !m.showDiff
			m.renderReview()
		} else {
			m.setStatus("Nothing to compare yet; regenerate to see a diff", false)
		}
		return nil
	case "s":
		return m.save()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) handleDownloadKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() != "enter" || m.downloading {
		return nil
	}
	// A missing artifact surfaces as the snapshot warning.
	_, _ = m.ctrl.DownloadArtifact(m.ctx)
	m.refresh()
	return nil
}

// next runs the controller's forward action and quits once completed.
func (m *Model) next() tea.Cmd {
	if m.busy() {
		return nil
	}
	before := m.snap.Step
	if err := m.ctrl.GoNext(m.ctx); err != nil {
		m.refresh()
		return nil
	}
	m.refresh()
	if m.snap.Completed {
		return tea.Quit
	}
	if m.snap.Step != before {
		m.afterTransition()
	}
	return nil
}

// afterTransition resets per-step UI state for the step just entered.
func (m *Model) afterTransition() {
	m.refresh()
	m.cursor = 0
	m.showDiff = false
	switch m.snap.Step {
	case ctl.StepProcedure:
		for i, p := range m.cat.Procedures {
			if p.ID == m.snap.Selection {
				m.cursor = i
			}
		}
	case ctl.StepGenerate:
		m.prompt.Focus()
	case ctl.StepReview:
		m.renderReview()
	}
	if m.snap.Step != ctl.StepGenerate {
		m.prompt.Blur()
	}
}

// generate dispatches RequestGeneration off the event loop. An empty prompt
// is rejected by the controller without any network call, so it runs inline.
func (m *Model) generate() tea.Cmd {
	if m.busy() {
		m.setStatus(ctl.ErrBusy.Error(), true)
		return nil
	}
	req := api.GenerationRequest{
		Prompt:     m.prompt.Value(),
		Category:   m.snap.Selection,
		Complexity: m.complexity,
		Locale:     m.opts.Locale,
	}
	if strings.TrimSpace(req.Prompt) == "" {
		_, _ = m.ctrl.RequestGeneration(m.ctx, req)
		m.refresh()
		return nil
	}

	m.pending = true
	m.status = ""
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			res, err := ctrl.RequestGeneration(ctx, req)
			return generationDoneMsg{result: res, err: err}
		},
	)
}

func (m *Model) fetch(url string) tea.Cmd {
	if m.opts.Fetcher == nil {
		m.setStatus("Download location: "+url, false)
		return nil
	}
	m.downloading = true
	m.setStatus("Downloading "+url+"...", false)
	ctx, f, dir := m.ctx, m.opts.Fetcher, m.opts.OutputDir
	return func() tea.Msg {
		path, err := f.Fetch(ctx, url, dir)
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m *Model) save() tea.Cmd {
	if m.snap.Result == nil {
		m.setStatus("No scripts to save", true)
		return nil
	}
	res, prompt, dir := m.snap.Result, m.snap.Request.Prompt, m.opts.OutputDir
	return func() tea.Msg {
		out, err := export.WriteScripts(dir, res, prompt)
		return savedMsg{dir: out, err: err}
	}
}

func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
}

func (m *Model) busy() bool {
	return m.pending || m.snap.Busy
}

func (m *Model) setStatus(s string, isErr bool) {
	if isErr {
		logger.Warn("%s", s)
	}
	m.status = s
	m.statusErr = isErr
}

func (m *Model) moveCursor(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

// contentWidth is the usable width inside the modal.
func (m *Model) contentWidth() int {
	w := m.modalWidth() - 6
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) modalWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 110 {
		w = 110
	}
	return w
}

func (m *Model) resize() {
	w := m.contentWidth()
	m.prompt.SetWidth(w)
	m.viewport.SetWidth(w)
	h := m.height - 16
	if h < 6 {
		h = 6
	}
	m.viewport.SetHeight(h)
	if m.snap.Step == ctl.StepReview {
		m.renderReview()
	}
}
