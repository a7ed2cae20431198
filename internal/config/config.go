// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for scriptwiz.
type Config struct {
	APIURL       string `mapstructure:"api_url" yaml:"api_url"`
	GeneratePath string `mapstructure:"generate_path" yaml:"generate_path"`
	DownloadPath string `mapstructure:"download_path" yaml:"download_path"`
	Timeout      string `mapstructure:"timeout" yaml:"timeout"`
	Locale       string `mapstructure:"locale" yaml:"locale"`
	Complexity   string `mapstructure:"complexity" yaml:"complexity"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	Journal      bool   `mapstructure:"journal" yaml:"journal"`
	CatalogFile  string `mapstructure:"catalog_file" yaml:"catalog_file"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFile      string `mapstructure:"log_file" yaml:"log_file"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIURL:       "http://localhost:5000",
		GeneratePath: "/api/generate",
		DownloadPath: "/api/download/{id}",
		Timeout:      "60s",
		Locale:       "en",
		Complexity:   string(api.ComplexityStandard),
		OutputDir:    ".",
		DataDir:      ".scriptwiz",
		LogLevel:     "info",
	}
}

// keys lists every config key, used for defaults and explicit env bindings.
var keys = []string{
	"api_url", "generate_path", "download_path", "timeout", "locale",
	"complexity", "output_dir", "data_dir", "journal", "catalog_file",
	"log_level", "log_file",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("scriptwiz")

	d := Defaults()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("generate_path", d.GeneratePath)
	v.SetDefault("download_path", d.DownloadPath)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("complexity", d.Complexity)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("journal", false)
	v.SetDefault("catalog_file", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("SCRIPTWIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bools and empty strings parse the same way as file values
	for _, key := range keys {
		if err := v.BindEnv(key, "SCRIPTWIZ_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	if !strings.Contains(c.DownloadPath, "{id}") {
		return fmt.Errorf("invalid download_path %q: must contain {id}", c.DownloadPath)
	}
	if _, err := api.ParseComplexity(c.Complexity); err != nil {
		return err
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return nil
}

// RequestTimeout returns the parsed generation timeout, falling back to the default.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/scriptwiz/scriptwiz.yml or $XDG_CONFIG_HOME/scriptwiz/scriptwiz.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scriptwiz", "scriptwiz.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scriptwiz", "scriptwiz.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "scriptwiz.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
