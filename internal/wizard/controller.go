// Package wizard implements the five-step script generation wizard: step
// gating, option selection and the lifecycle of a single in-flight
// generation request. Presentation lives elsewhere and follows along
// through Listener events.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/logger"
)

// DefaultTimeout bounds a generation call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Generation outcomes reported to a Recorder.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeBusy       = "busy"
	OutcomeNetwork    = "network"
	OutcomeServer     = "server"
)

// Generator issues generation requests and knows where artifacts download from.
// *api.Client implements it.
type Generator interface {
	Generate(ctx context.Context, req api.GenerationRequest) (*api.GenerationResult, error)
	DownloadURL(artifactID string) string
}

// Navigator is handed the download location of an artifact.
// Navigate must not block; the controller does not wait for the download.
type Navigator interface {
	Navigate(ctx context.Context, url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string)

func (f NavigatorFunc) Navigate(ctx context.Context, url string) { f(ctx, url) }

// Recorder observes generation attempts.
type Recorder interface {
	ObserveGeneration(outcome string, d time.Duration)
}

// Loader populates a step's content when it is entered.
// It may run more than once for the same step.
type Loader func(ctx context.Context, selection string) ([]Item, error)

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout sets the per-call generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithLoader registers the loader run when step is entered.
func WithLoader(step int, l Loader) Option {
	return func(c *Controller) { c.loaders[step] = l }
}

// WithNavigator sets where download locations go.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.nav = n }
}

// WithRecorder sets the generation metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

// WithOnComplete sets the side effect run by the forward action on the last step.
func WithOnComplete(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(fn func() string) Option {
	return func(c *Controller) { c.newKey = fn }
}

// WithListener subscribes l for the controller's whole lifetime.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.nextSubID++
		c.listeners = append(c.listeners, subscription{id: c.nextSubID, fn: l})
	}
}

type subscription struct {
	id int
	fn Listener
}

// Controller owns the wizard state. All methods are safe for concurrent use.
type Controller struct {
	gen        Generator
	nav        Navigator
	rec        Recorder
	loaders    map[int]Loader
	onComplete func(Snapshot)
	timeout    time.Duration
	newKey     func() string

	mu        sync.Mutex
	st        state
	listeners []subscription
	nextSubID int
	cancel    context.CancelFunc

	// Key and request of the last submission that failed in transport.
	// An identical resubmission reuses the key.
	retryKey string
	retryReq api.GenerationRequest
}

// New creates a controller at step 1 with nothing selected.
func New(gen Generator, opts ...Option) *Controller {
	c := &Controller{
		gen:     gen,
		loaders: make(map[int]Loader),
		timeout: DefaultTimeout,
		newKey:  api.NewIdempotencyKey,
		st: state{
			step:    StepProcedure,
			content: make(map[int][]Item),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a listener and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.listeners = append(c.listeners, subscription{id: id, fn: l})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.listeners {
			if s.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.snapshot()
}

// Validate checks the forward gate of step against the current state.
func (c *Controller) Validate(step int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validate(step, c.st.selection, c.st.artifactID)
}

// GoBack moves one step back. It returns false on the first step.
func (c *Controller) GoBack() bool {
	c.mu.Lock()
	if c.st.step <= StepProcedure {
		c.mu.Unlock()
		return false
	}
	c.st.step--
	c.st.warning = ""
	ev := Event{Type: EventStepChanged, State: c.st.snapshot()}
	c.mu.Unlock()

	logger.Debug("Wizard back to step %d", ev.State.Step)
	c.emit(ev)
	return true
}

// GoNext validates the current step and moves forward, running the entered
// step's loader. On the last step it runs the completion side effect instead.
func (c *Controller) GoNext(ctx context.Context) error {
	c.mu.Lock()
	if err := validate(c.st.step, c.st.selection, c.st.artifactID); err != nil {
		c.st.warning = err.(*ValidationError).Message
		ev := Event{Type: EventWarning, State: c.st.snapshot(), Err: err}
		c.mu.Unlock()

		logger.Debug("Wizard step %d gate closed: %v", ev.State.Step, err)
		c.emit(ev)
		return err
	}

	if c.st.step == NumSteps {
		c.st.completed = true
		c.st.warning = ""
		snap := c.st.snapshot()
		c.mu.Unlock()

		logger.Info("Wizard completed (artifact=%s)", snap.ArtifactID)
		if c.onComplete != nil {
			c.onComplete(snap)
		}
		c.emit(Event{Type: EventCompleted, State: snap})
		return nil
	}

	c.st.step++
	c.st.warning = ""
	entered, selection := c.st.step, c.st.selection
	ev := Event{Type: EventStepChanged, State: c.st.snapshot()}
	c.mu.Unlock()

	logger.Debug("Wizard forward to step %d", entered)
	c.emit(ev)
	c.load(ctx, entered, selection)
	return nil
}

// load runs the loader for step. A failure leaves the step entered and
// surfaces as a warning.
func (c *Controller) load(ctx context.Context, step int, selection string) {
	loader, ok := c.loaders[step]
	if !ok {
		return
	}
	items, err := loader(ctx, selection)

	c.mu.Lock()
	var ev Event
	if err != nil {
		delete(c.st.content, step)
		c.st.warning = fmt.Sprintf("could not load %s: %v", strings.ToLower(StepName(step)), err)
		ev = Event{Type: EventWarning, Err: err}
	} else {
		c.st.content[step] = append([]Item(nil), items...)
		ev = Event{Type: EventContentLoaded}
	}
	ev.State = c.st.snapshot()
	c.mu.Unlock()

	if err != nil {
		logger.Warn("Loading step %d content: %v", step, err)
	}
	c.emit(ev)
}

// SelectOption marks id as the selected option. Ids are not checked against
// any catalog; unknown ids are kept as given.
func (c *Controller) SelectOption(id string) {
	c.mu.Lock()
	c.st.selection = id
	c.st.warning = ""
	ev := Event{Type: EventSelectionChanged, State: c.st.snapshot()}
	c.mu.Unlock()

	c.emit(ev)
}

// RequestGeneration sends req to the generator. Exactly one call is made per
// accepted invocation; none when the prompt is empty or another call is in
// flight. A failure leaves the artifact id untouched.
func (c *Controller) RequestGeneration(ctx context.Context, req api.GenerationRequest) (*api.GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		c.mu.Lock()
		err := &ValidationError{Step: c.st.step, Field: "prompt", Message: "enter a prompt to generate scripts"}
		c.st.warning = err.Message
		ev := Event{Type: EventWarning, State: c.st.snapshot(), Err: err}
		c.mu.Unlock()

		c.observe(OutcomeValidation, 0)
		c.emit(ev)
		return nil, err
	}

	c.mu.Lock()
	if c.st.busy {
		c.mu.Unlock()
		c.observe(OutcomeBusy, 0)
		return nil, ErrBusy
	}

	if req.IdempotencyKey == "" {
		if c.retryKey != "" && req.Equal(c.retryReq) {
			req.IdempotencyKey = c.retryKey
		} else {
			req.IdempotencyKey = c.newKey()
		}
	}

	var callCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.st.busy = true
	c.st.errMsg = ""
	c.st.warning = ""
	c.st.request = req
	started := Event{Type: EventGenerationRequested, State: c.st.snapshot(), Request: &req}
	c.mu.Unlock()

	logger.Info("Requesting generation (category=%q key=%s)", req.Category, req.IdempotencyKey)
	c.emit(started)

	start := time.Now()
	res, err := c.gen.Generate(callCtx, req)
	dur := time.Since(start)
	if err == nil {
		err = checkResult(res)
	}
	if err != nil {
		err = classify(callCtx, err)
	}
	cancel()

	c.mu.Lock()
	c.cancel = nil
	c.st.busy = false

	if err != nil {
		var nerr *api.NetworkError
		if errors.As(err, &nerr) {
			c.retryKey, c.retryReq = req.IdempotencyKey, req
		} else {
			c.retryKey, c.retryReq = "", api.GenerationRequest{}
		}
		c.st.errMsg = displayMessage(err)
		ev := Event{Type: EventGenerationFailed, State: c.st.snapshot(), Request: &req, Err: err, Duration: dur}
		c.mu.Unlock()

		outcome := OutcomeServer
		if nerr != nil {
			outcome = OutcomeNetwork
		}
		logger.Warn("Generation failed after %s: %v", dur, err)
		c.observe(outcome, dur)
		c.emit(ev)
		return nil, err
	}

	c.retryKey, c.retryReq = "", api.GenerationRequest{}
	c.st.previous = c.st.result
	c.st.result = cloneResult(res)
	c.st.artifactID = res.ArtifactID
	ev := Event{Type: EventGenerationSucceeded, State: c.st.snapshot(), Request: &req, Result: cloneResult(res), Duration: dur}
	c.mu.Unlock()

	logger.Info("Generation succeeded: artifact %s, %d scripts in %s", res.ArtifactID, len(res.Scripts), dur)
	c.observe(OutcomeSuccess, dur)
	c.emit(ev)
	return cloneResult(res), nil
}

// CancelGeneration aborts the in-flight generation call, if any.
func (c *Controller) CancelGeneration() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	logger.Debug("Cancelling in-flight generation")
	c.cancel()
	return true
}

// DownloadArtifact hands the artifact's download location to the navigator
// and returns it. It fails with *PreconditionError before any generation
// has succeeded.
func (c *Controller) DownloadArtifact(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.st.artifactID == "" {
		err := &PreconditionError{Op: "download", Message: "no scripts have been generated yet"}
		c.st.warning = err.Message
		ev := Event{Type: EventWarning, State: c.st.snapshot(), Err: err}
		c.mu.Unlock()

		c.emit(ev)
		return "", err
	}
	url := c.gen.DownloadURL(c.st.artifactID)
	c.st.warning = ""
	ev := Event{Type: EventDownloadRequested, State: c.st.snapshot(), URL: url}
	c.mu.Unlock()

	logger.Info("Download requested: %s", url)
	if c.nav != nil {
		c.nav.Navigate(ctx, url)
	}
	c.emit(ev)
	return url, nil
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	subs := append([]subscription(nil), c.listeners...)
	c.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

func (c *Controller) observe(outcome string, d time.Duration) {
	if c.rec != nil {
		c.rec.ObserveGeneration(outcome, d)
	}
}

// checkResult rejects results that could satisfy the gate with nothing.
func checkResult(res *api.GenerationResult) error {
	switch {
	case res == nil:
		return &api.ServerError{Message: "empty response from generator"}
	case !res.Success:
		msg := res.Error
		if msg == "" {
			msg = api.DefaultServerMessage
		}
		return &api.ServerError{Message: msg}
	case res.ArtifactID == "":
		return &api.ServerError{Message: "generator response is missing an artifact id"}
	}
	return nil
}

// classify maps any generator failure onto the api taxonomy. Anything that
// is not already a server or network error is treated as transport.
func classify(ctx context.Context, err error) error {
	var serr *api.ServerError
	var nerr *api.NetworkError
	if errors.As(err, &serr) || errors.As(err, &nerr) {
		return err
	}
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &api.NetworkError{Op: "generate", Err: err, Timeout: timeout}
}

func displayMessage(err error) string {
	var nerr *api.NetworkError
	if errors.As(err, &nerr) && !nerr.Timeout && errors.Is(err, context.Canceled) {
		return "generation cancelled"
	}
	return err.Error()
}
