package hooks

// Config is the top-level configuration for hooks loaded from .scriptwiz.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig contains all hook configurations. Each event may run several
// commands, in order.
type HooksConfig struct {
	PostGenerate []*HookConfig `yaml:"post_generate"`
	PostDownload []*HookConfig `yaml:"post_download"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
