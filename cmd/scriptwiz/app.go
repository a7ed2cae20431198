package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/config"
	"github.com/mark3labs/scriptwiz/internal/hooks"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/spf13/cobra"
)

// configFlags override file and env configuration when set.
var configFlags struct {
	apiURL     string
	timeout    string
	locale     string
	complexity string
	outputDir  string
	dataDir    string
	journal    bool
	logLevel   string
}

func registerConfigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&configFlags.apiURL, "api-url", "", "Generator base URL (default: from config)")
	f.StringVar(&configFlags.timeout, "timeout", "", "Generation timeout, e.g. 90s (default: from config)")
	f.StringVarP(&configFlags.locale, "locale", "l", "", "Language code for generated scripts (default: from config)")
	f.StringVarP(&configFlags.complexity, "complexity", "c", "", "basic, standard or advanced (default: from config)")
	f.StringVarP(&configFlags.outputDir, "output-dir", "o", "", "Where downloads and saved scripts go (default: from config)")
	f.StringVar(&configFlags.dataDir, "data-dir", "", "Data directory for the journal (default: from config)")
	f.BoolVar(&configFlags.journal, "journal", false, "Record the generation lifecycle in the journal")
	f.StringVar(&configFlags.logLevel, "log-level", "", "debug, info, warn or error (default: from config)")
}

// loadConfig loads configuration, applies changed flags on top,
// validates it and configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.Default.SetLevel(level)
	} else {
		logger.Warn("Ignoring log level: %v", err)
	}
	if cfg.LogFile != "" {
		if err := logger.Default.SetFile(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
	}
	logger.Debug("Config loaded: api_url=%s timeout=%s journal=%t", cfg.APIURL, cfg.Timeout, cfg.Journal)
	return cfg, nil
}

// applyFlags copies every config flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = configFlags.apiURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = configFlags.timeout
	}
	if flags.Changed("locale") {
		cfg.Locale = configFlags.locale
	}
	if flags.Changed("complexity") {
		cfg.Complexity = configFlags.complexity
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = configFlags.outputDir
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = configFlags.dataDir
	}
	if flags.Changed("journal") {
		cfg.Journal = configFlags.journal
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = configFlags.logLevel
	}
}

func newClient(cfg *config.Config) (*api.Client, error) {
	return api.New(cfg.APIURL,
		api.WithGeneratePath(cfg.GeneratePath),
		api.WithDownloadPath(cfg.DownloadPath),
	)
}

// controllerOptions are the options every controller built by the CLI shares:
// the configured timeout and catalog-backed loaders for the template and
// review steps.
func controllerOptions(cfg *config.Config, cat *catalog.Catalog) []wizard.Option {
	return []wizard.Option{
		wizard.WithTimeout(cfg.RequestTimeout()),
		wizard.WithLoader(wizard.StepTemplate, func(_ context.Context, selection string) ([]wizard.Item, error) {
			var items []wizard.Item
			for _, t := range cat.Templates(selection) {
				items = append(items, wizard.Item{Title: t.Title, Body: t.Prompt})
			}
			return items, nil
		}),
		wizard.WithLoader(wizard.StepReview, func(context.Context, string) ([]wizard.Item, error) {
			items := make([]wizard.Item, len(cat.Checklist))
			for i, c := range cat.Checklist {
				items[i] = wizard.Item{Title: c}
			}
			return items, nil
		}),
	}
}

// withHooks loads the working directory's hooks file and, when it defines
// post_generate hooks, returns opts with a listener running them. The
// returned wait blocks until background hooks have finished.
func withHooks(ctx context.Context, opts []wizard.Option) ([]wizard.Option, *hooks.Config, func(), error) {
	hcfg, err := hooks.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, err
	}
	if hcfg == nil || len(hcfg.Hooks.PostGenerate) == 0 {
		return opts, hcfg, func() {}, nil
	}
	listen, wait := hooks.Listener(ctx, hcfg, ".")
	return append(opts, wizard.WithListener(listen)), hcfg, wait, nil
}

// runPostDownload runs the post_download hooks for a fetched archive and
// prints their output to stderr.
func runPostDownload(ctx context.Context, hcfg *hooks.Config, artifactID, path string) {
	if hcfg == nil || len(hcfg.Hooks.PostDownload) == 0 {
		return
	}
	out, err := hooks.ExecuteAll(ctx, hcfg.Hooks.PostDownload, ".", hooks.Variables{Artifact: artifactID, Path: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "post_download hooks interrupted: %v\n", err)
		return
	}
	if out != "" {
		fmt.Fprint(os.Stderr, out)
	}
}
