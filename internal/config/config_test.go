package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate points both config locations at fresh temp dirs.
// Cannot be combined with t.Parallel() because of t.Setenv and os.Chdir.
func isolate(t *testing.T) (projectDir string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	projectDir = t.TempDir()
	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(projectDir))
	return projectDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := GlobalPath(); got != "/custom/config/scriptwiz/scriptwiz.yml" {
			t.Errorf("GlobalPath() = %v", got)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		if !filepath.IsAbs(got) {
			t.Errorf("GlobalPath() should return absolute path, got %v", got)
		}
		if filepath.Base(got) != "scriptwiz.yml" {
			t.Errorf("GlobalPath() should end with scriptwiz.yml, got %v", got)
		}
	})
}

func TestProjectPath(t *testing.T) {
	if got := ProjectPath(); got != "scriptwiz.yml" {
		t.Errorf("ProjectPath() = %v, want scriptwiz.yml", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.False(t, Exists())
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	global := Defaults()
	global.APIURL = "http://global.example:5000"
	global.Locale = "sv"
	global.Complexity = "basic"
	require.NoError(t, WriteGlobal(global))

	project := Defaults()
	project.APIURL = "http://project.example:5000"
	project.Locale = "sv"
	project.Complexity = "advanced"
	require.NoError(t, WriteProject(project))

	t.Setenv("SCRIPTWIZ_COMPLEXITY", "basic")
	t.Setenv("SCRIPTWIZ_JOURNAL", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, Exists())

	// project beats global
	require.Equal(t, "http://project.example:5000", cfg.APIURL)
	// env beats project
	require.Equal(t, "basic", cfg.Complexity)
	require.True(t, cfg.Journal)
	require.Equal(t, "sv", cfg.Locale)
}

func TestLoad_MalformedGlobal(t *testing.T) {
	isolate(t)

	path := GlobalPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated\n"), 0644))

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading global config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "relative url", mutate: func(c *Config) { c.APIURL = "/api" }, wantErr: "invalid api_url"},
		{name: "ftp url", mutate: func(c *Config) { c.APIURL = "ftp://host" }, wantErr: "scheme must be http"},
		{name: "download path without id", mutate: func(c *Config) { c.DownloadPath = "/api/download" }, wantErr: "must contain {id}"},
		{name: "unknown complexity", mutate: func(c *Config) { c.Complexity = "extreme" }, wantErr: "unknown complexity"},
		{name: "bad timeout", mutate: func(c *Config) { c.Timeout = "soon" }, wantErr: "invalid timeout"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = "0s" }, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.Timeout = "90s"
	require.Equal(t, 90*time.Second, cfg.RequestTimeout())

	cfg.Timeout = "garbage"
	require.Equal(t, 60*time.Second, cfg.RequestTimeout())
}

func TestWriteGlobal_CreatesDirectory(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteGlobal(Defaults()))
	_, err := os.Stat(GlobalPath())
	require.NoError(t, err)
}
