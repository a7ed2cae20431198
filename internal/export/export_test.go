package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/stretchr/testify/require"
)

func TestDirName(t *testing.T) {
	tests := []struct {
		prompt, id, want string
	}{
		{"Monthly sales summary", "p1", "monthly-sales-summary-p1"},
		{"Monthly sales summary", "3f2a9c1e-77aa-4b1c", "monthly-sales-summary-3f2a9c1e"},
		{"", "p1", "scripts-p1"},
		{"!!!", "", "scripts"},
		{"Import a semicolon separated CSV file into a SQL Server table", "x", "import-a-semicolon-separated-csv-file-in-x"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, DirName(tt.prompt, tt.id))
		})
	}
}

func TestWriteScripts(t *testing.T) {
	dir := t.TempDir()
	res := &api.GenerationResult{
		Success:    true,
		ArtifactID: "p1",
		Scripts: []api.Script{
			{Filename: "Report.cs", Content: "class Report {}"},
			{Filename: "../../etc/passwd", Content: "nope"},
			{Filename: `..\win\evil.ps1`, Content: "Write-Host"},
			{Filename: "..", Content: "unnamed"},
		},
		SetupInstructions: "Run `dotnet build`.",
		Dependencies:      []string{"dotnet 8"},
	}

	out, err := WriteScripts(dir, res, "Monthly report")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "monthly-report-p1"), out)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"Report.cs", "passwd", "evil.ps1", "script-4.txt", "README.md"}, names)

	data, err := os.ReadFile(filepath.Join(out, "passwd"))
	require.NoError(t, err)
	require.Equal(t, "nope", string(data))

	readme, err := os.ReadFile(filepath.Join(out, "README.md"))
	require.NoError(t, err)
	require.Contains(t, string(readme), "> Monthly report")
	require.Contains(t, string(readme), "- dotnet 8")
	require.Contains(t, string(readme), "Run `dotnet build`.")
}

func TestWriteScripts_NoReadmeWithoutNotes(t *testing.T) {
	res := &api.GenerationResult{ArtifactID: "p2", Scripts: []api.Script{{Filename: "a.py", Content: "pass"}}}
	out, err := WriteScripts(t.TempDir(), res, "x")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "README.md"))
	require.True(t, os.IsNotExist(err))
}

func TestWriteScripts_NilResult(t *testing.T) {
	_, err := WriteScripts(t.TempDir(), nil, "x")
	require.Error(t, err)
}
