package wizard

import (
	"github.com/mark3labs/scriptwiz/internal/api"
)

// Steps of the wizard, in order.
const (
	StepProcedure = iota + 1
	StepTemplate
	StepGenerate
	StepReview
	StepDownload
)

// NumSteps is the number of wizard steps.
const NumSteps = StepDownload

var stepNames = map[int]string{
	StepProcedure: "Procedure",
	StepTemplate:  "Template",
	StepGenerate:  "Generate",
	StepReview:    "Review",
	StepDownload:  "Download",
}

// StepName returns the display name of a step.
func StepName(step int) string {
	if name, ok := stepNames[step]; ok {
		return name
	}
	return "Unknown"
}

// Item is one entry of a step's loaded content: a template or checklist line.
type Item struct {
	Title string
	Body  string
}

// state is the controller-owned wizard state. Only Controller methods touch it.
type state struct {
	step       int
	selection  string
	artifactID string
	completed  bool

	busy    bool
	warning string
	errMsg  string

	result   *api.GenerationResult
	previous *api.GenerationResult
	request  api.GenerationRequest
	content  map[int][]Item
}

// Snapshot is an immutable copy of the wizard state.
type Snapshot struct {
	Step       int
	Selection  string
	ArtifactID string
	Completed  bool

	// Busy is true while a generation request is in flight.
	Busy bool
	// Warning is the last validation or precondition message.
	Warning string
	// Error is the message of the last failed generation.
	Error string

	// Result is the last successful generation, Previous the one before it.
	Result   *api.GenerationResult
	Previous *api.GenerationResult
	// Request is the last accepted generation request.
	Request api.GenerationRequest
	// Content is the loaded content for the current step.
	Content []Item
}

// CanGoNext reports whether the forward gate of the current step is open.
func (s Snapshot) CanGoNext() bool {
	return validate(s.Step, s.Selection, s.ArtifactID) == nil
}

// CanGoBack reports whether a backward transition is possible.
func (s Snapshot) CanGoBack() bool {
	return s.Step > 1
}

func (st *state) snapshot() Snapshot {
	return Snapshot{
		Step:       st.step,
		Selection:  st.selection,
		ArtifactID: st.artifactID,
		Completed:  st.completed,
		Busy:       st.busy,
		Warning:    st.warning,
		Error:      st.errMsg,
		Result:     cloneResult(st.result),
		Previous:   cloneResult(st.previous),
		Request:    st.request,
		Content:    append([]Item(nil), st.content[st.step]...),
	}
}

func cloneResult(r *api.GenerationResult) *api.GenerationResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Scripts = append([]api.Script(nil), r.Scripts...)
	c.Dependencies = append([]string(nil), r.Dependencies...)
	return &c
}

// validate checks the forward gate of step.
func validate(step int, selection, artifactID string) error {
	switch step {
	case StepProcedure:
		if selection == "" {
			return &ValidationError{Step: step, Field: "selection", Message: "select a procedure type to continue"}
		}
	case StepGenerate:
		if artifactID == "" {
			return &ValidationError{Step: step, Field: "artifact", Message: "generate scripts before continuing"}
		}
	}
	return nil
}
