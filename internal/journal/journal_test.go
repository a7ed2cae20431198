package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSubjectFor(t *testing.T) {
	require.Equal(t, "scriptwiz.generation.succeeded", SubjectFor(TypeGeneration, ActionSucceeded))
}

func TestHistory_Empty(t *testing.T) {
	j := openTestJournal(t)

	h, err := j.History(context.Background())
	require.NoError(t, err)
	require.Empty(t, h.Artifacts)
	_, ok := h.Latest()
	require.False(t, ok)
}

func TestPublishAndHistory(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []Entry{
		{Type: TypeGeneration, Action: ActionRequested, Key: "k1", Prompt: "first"},
		{Type: TypeGeneration, Action: ActionSucceeded, Key: "k1", ArtifactID: "p1", Prompt: "first", Files: []string{"A.cs"}, Timestamp: t0},
		{Type: TypeGeneration, Action: ActionRequested, Key: "k2", Prompt: "second"},
		{Type: TypeGeneration, Action: ActionFailed, Key: "k2", Error: "boom"},
		{Type: TypeGeneration, Action: ActionSucceeded, Key: "k3", ArtifactID: "p2", Prompt: "third", Timestamp: t0.Add(time.Minute)},
		{Type: TypeDownload, Action: ActionRequested, ArtifactID: "p1"},
		{Type: TypeDownload, Action: ActionRequested, ArtifactID: "unknown"},
	}
	for _, e := range entries {
		_, err := j.Publish(ctx, e)
		require.NoError(t, err)
	}

	h, err := j.History(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, h.Requested)
	require.Equal(t, 1, h.Failed)
	require.Len(t, h.Artifacts, 2)
	require.Equal(t, []string{"A.cs"}, h.Artifacts["p1"].Files)
	require.Equal(t, 1, h.Artifacts["p1"].Downloads)

	latest, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, "p2", latest.ID)

	newest := h.Newest()
	require.Equal(t, "p2", newest[0].ID)
	require.Equal(t, "p1", newest[1].ID)
}

func TestHistory_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	j, err := Open(ctx, dir)
	require.NoError(t, err)
	_, err = j.Publish(ctx, Entry{Type: TypeGeneration, Action: ActionSucceeded, ArtifactID: "p1"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, dir)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	h, err := j.History(ctx)
	require.NoError(t, err)
	require.Contains(t, h.Artifacts, "p1")
}

func TestListener(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	listen := j.Listener(ctx)

	req := &api.GenerationRequest{Prompt: "make a report", Category: "report", Complexity: api.ComplexityBasic, IdempotencyKey: "k1"}
	listen(wizard.Event{Type: wizard.EventSelectionChanged})
	listen(wizard.Event{Type: wizard.EventGenerationRequested, Request: req})
	listen(wizard.Event{Type: wizard.EventGenerationFailed, Request: req, Err: errors.New("boom")})
	listen(wizard.Event{Type: wizard.EventGenerationRequested, Request: req})
	listen(wizard.Event{
		Type:    wizard.EventGenerationSucceeded,
		Request: req,
		Result:  &api.GenerationResult{Success: true, ArtifactID: "p9", Scripts: []api.Script{{Filename: "Report.cs"}}},
	})
	listen(wizard.Event{
		Type:  wizard.EventDownloadRequested,
		State: wizard.Snapshot{ArtifactID: "p9"},
		URL:   "http://gen.local/api/download/p9",
	})

	h, err := j.History(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, h.Requested)
	require.Equal(t, 1, h.Failed)

	a := h.Artifacts["p9"]
	require.NotNil(t, a)
	require.Equal(t, "make a report", a.Prompt)
	require.Equal(t, "report", a.Category)
	require.Equal(t, "basic", a.Complexity)
	require.Equal(t, []string{"Report.cs"}, a.Files)
	require.Equal(t, 1, a.Downloads)
}
