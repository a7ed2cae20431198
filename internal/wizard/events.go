package wizard

import (
	"time"

	"github.com/mark3labs/scriptwiz/internal/api"
)

// EventType identifies what changed in the controller.
type EventType string

const (
	EventStepChanged         EventType = "step_changed"
	EventSelectionChanged    EventType = "selection_changed"
	EventContentLoaded       EventType = "content_loaded"
	EventWarning             EventType = "warning"
	EventGenerationRequested EventType = "generation_requested"
	EventGenerationSucceeded EventType = "generation_succeeded"
	EventGenerationFailed    EventType = "generation_failed"
	EventDownloadRequested   EventType = "download_requested"
	EventCompleted           EventType = "completed"
)

// Event describes a state change. State is the snapshot right after it.
type Event struct {
	Type  EventType
	State Snapshot

	// Set on generation events.
	Request  *api.GenerationRequest
	Result   *api.GenerationResult
	Err      error
	Duration time.Duration

	// URL is set on EventDownloadRequested.
	URL string
}

// Listener receives controller events, in order, outside the state lock.
type Listener func(Event)
