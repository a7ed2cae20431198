package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Procedures)
	require.NotEmpty(t, c.Checklist)
	require.Contains(t, c.IDs(), "report")
	require.NotEmpty(t, c.Templates("report"))
}

func TestLabel_FallsBackToRawID(t *testing.T) {
	c := Default()
	require.Equal(t, "Report", c.Label("report"))
	require.Equal(t, "proc_a", c.Label("proc_a"))
	require.Nil(t, c.Templates("proc_a"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "procedures: []\n", "no procedures"},
		{"missing id", "procedures:\n  - label: X\n", "has no id"},
		{"duplicate", "procedures:\n  - id: a\n  - id: ' a '\n", "duplicate procedure id"},
		{"malformed", "procedures: [", "parsing catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
procedures:
  - id: proc_a
    label: Procedure A
    templates:
      - title: T
        prompt: do a
checklist: [one]
`), 0644))

	c, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"proc_a"}, c.IDs())
	require.Equal(t, "Procedure A", c.Label("proc_a"))
	require.Equal(t, []Template{{Title: "T", Prompt: "do a"}}, c.Templates("proc_a"))

	_, err = Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
