package wizard

import (
	"github.com/mark3labs/scriptwiz/internal/api"
	ctl "github.com/mark3labs/scriptwiz/internal/wizard"
)

// EventMsg forwards a controller event into the program.
type EventMsg struct {
	Type ctl.EventType
}

// DownloadRequestedMsg is sent by the Navigator when the controller hands
// over a download location.
type DownloadRequestedMsg struct {
	URL string
}

// generationDoneMsg carries the outcome of RequestGeneration.
type generationDoneMsg struct {
	result *api.GenerationResult
	err    error
}

// downloadDoneMsg carries the outcome of fetching an artifact.
type downloadDoneMsg struct {
	path string
	err  error
}

// savedMsg carries the outcome of exporting scripts.
type savedMsg struct {
	dir string
	err error
}

// promptEditedMsg carries the prompt text back from $EDITOR.
type promptEditedMsg struct {
	content string
	err     error
}
