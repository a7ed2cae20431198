// Package journal records the generation lifecycle into an embedded
// JetStream stream and reduces it back into an artifact history.
// It is an audit log only; wizard state is never restored from it.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "scriptwiz_events"
	subjectPrefix = "scriptwiz"

	TypeGeneration = "generation"
	TypeDownload   = "download"

	ActionRequested = "requested"
	ActionSucceeded = "succeeded"
	ActionFailed    = "failed"
)

// SubjectFor returns the subject an entry is published on,
// e.g. "scriptwiz.generation.succeeded".
func SubjectFor(typ, action string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, typ, action)
}

// Entry is one journal record.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type"`
	Action     string    `json:"action"`
	Key        string    `json:"key,omitempty"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	Prompt     string    `json:"prompt,omitempty"`
	Category   string    `json:"category,omitempty"`
	Complexity string    `json:"complexity,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	Files      []string  `json:"files,omitempty"`
	Error      string    `json:"error,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// Journal is an open event log backed by an in-process NATS server.
type Journal struct {
	ns     *server.Server
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
}

// Open starts the embedded server under dataDir and ensures the stream exists.
func Open(ctx context.Context, dataDir string) (*Journal, error) {
	ns, err := startEmbedded(filepath.Join(dataDir, "journal"))
	if err != nil {
		return nil, fmt.Errorf("starting journal server: %w", err)
	}

	nc, err := connectInProcess(ns)
	if err != nil {
		_ = shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to journal server: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("creating journal stream: %w", err)
	}

	logger.Debug("Journal opened at %s", dataDir)
	return &Journal{ns: ns, nc: nc, js: js, stream: stream}, nil
}

// Close drains the connection and stops the server.
func (j *Journal) Close() error {
	return shutdown(j.nc, j.ns)
}

// Publish appends an entry to the log.
func (j *Journal) Publish(ctx context.Context, e Entry) (*jetstream.PubAck, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding journal entry: %w", err)
	}

	subject := SubjectFor(e.Type, e.Action)
	ack, err := j.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish %s: %v", subject, err)
		return nil, fmt.Errorf("publishing journal entry: %w", err)
	}
	logger.Debug("Journal entry published: %s seq=%d", subject, ack.Sequence)
	return ack, nil
}

// Listener returns a controller listener that journals lifecycle events.
// Publish failures are logged and never reach the wizard.
func (j *Journal) Listener(ctx context.Context) wizard.Listener {
	return func(ev wizard.Event) {
		e, ok := entryFor(ev)
		if !ok {
			return
		}
		if _, err := j.Publish(ctx, e); err != nil {
			logger.Warn("Journal dropped %s.%s: %v", e.Type, e.Action, err)
		}
	}
}

func entryFor(ev wizard.Event) (Entry, bool) {
	var e Entry
	if ev.Request != nil {
		e.Key = ev.Request.IdempotencyKey
		e.Prompt = ev.Request.Prompt
		e.Category = ev.Request.Category
		e.Complexity = string(ev.Request.Complexity)
		e.Locale = ev.Request.Locale
	}

	switch ev.Type {
	case wizard.EventGenerationRequested:
		e.Type, e.Action = TypeGeneration, ActionRequested
	case wizard.EventGenerationSucceeded:
		e.Type, e.Action = TypeGeneration, ActionSucceeded
		if ev.Result != nil {
			e.ArtifactID = ev.Result.ArtifactID
			e.Files = filenames(ev.Result.Scripts)
		}
	case wizard.EventGenerationFailed:
		e.Type, e.Action = TypeGeneration, ActionFailed
		if ev.Err != nil {
			e.Error = ev.Err.Error()
		}
	case wizard.EventDownloadRequested:
		e.Type, e.Action = TypeDownload, ActionRequested
		e.ArtifactID = ev.State.ArtifactID
		e.URL = ev.URL
	default:
		return Entry{}, false
	}
	return e, true
}

func filenames(scripts []api.Script) []string {
	names := make([]string, len(scripts))
	for i, s := range scripts {
		names[i] = s.Filename
	}
	return names
}

// Artifact is a successfully generated artifact as seen by the journal.
type Artifact struct {
	ID         string    `json:"id"`
	Prompt     string    `json:"prompt"`
	Category   string    `json:"category"`
	Complexity string    `json:"complexity"`
	Files      []string  `json:"files"`
	CreatedAt  time.Time `json:"created_at"`
	Downloads  int       `json:"downloads"`
}

// History is the journal reduced to artifacts and attempt counts.
type History struct {
	Artifacts map[string]*Artifact
	Requested int
	Failed    int
}

// Apply folds one entry into the history.
func (h *History) Apply(e Entry) {
	switch {
	case e.Type == TypeGeneration && e.Action == ActionRequested:
		h.Requested++
	case e.Type == TypeGeneration && e.Action == ActionFailed:
		h.Failed++
	case e.Type == TypeGeneration && e.Action == ActionSucceeded:
		if e.ArtifactID == "" {
			return
		}
		h.Artifacts[e.ArtifactID] = &Artifact{
			ID:         e.ArtifactID,
			Prompt:     e.Prompt,
			Category:   e.Category,
			Complexity: e.Complexity,
			Files:      e.Files,
			CreatedAt:  e.Timestamp,
		}
	case e.Type == TypeDownload:
		if a, ok := h.Artifacts[e.ArtifactID]; ok {
			a.Downloads++
		}
	}
}

// Newest returns artifacts ordered newest first.
func (h *History) Newest() []*Artifact {
	out := make([]*Artifact, 0, len(h.Artifacts))
	for _, a := range h.Artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID > out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out
}

// Latest returns the most recent artifact, if any.
func (h *History) Latest() (*Artifact, bool) {
	all := h.Newest()
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// History reads the whole stream and reduces it.
func (j *Journal) History(ctx context.Context) (*History, error) {
	consumer, err := j.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: subjectPrefix + ".>",
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating journal consumer: %w", err)
	}
	defer func() {
		if err := j.stream.DeleteConsumer(context.WithoutCancel(ctx), consumer.CachedInfo().Name); err != nil {
			logger.Debug("Deleting journal consumer: %v", err)
		}
	}()

	h := &History{Artifacts: make(map[string]*Artifact)}

	const batchSize = 500
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var e Entry
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			if e.ID == "" {
				if meta, err := msg.Metadata(); err == nil {
					e.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
				}
			}
			h.Apply(e)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed journal entries", malformed)
	}
	logger.Debug("Journal history: %d artifacts, %d requests, %d failures",
		len(h.Artifacts), h.Requested, h.Failed)
	return h, nil
}
