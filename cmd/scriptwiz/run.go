package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/journal"
	tuiwizard "github.com/mark3labs/scriptwiz/internal/tui/wizard"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive wizard",
	Long: `Start the full-screen wizard. This is also what running scriptwiz
without a subcommand does.

The wizard always starts at step 1. With journal enabled, generations and
downloads are recorded for 'scriptwiz history'.`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	complexity, err := api.ParseComplexity(cfg.Complexity)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nav := tuiwizard.NewNavigator()
	opts := append(controllerOptions(cfg, cat), wizard.WithNavigator(nav))

	if cfg.Journal {
		j, err := journal.Open(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() {
			if err := j.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing journal: %v\n", err)
			}
		}()
		opts = append(opts, wizard.WithListener(j.Listener(ctx)))
	}

	opts, _, waitHooks, err := withHooks(ctx, opts)
	if err != nil {
		return err
	}
	defer waitHooks()

	ctrl := wizard.New(client, opts...)
	snap, err := tuiwizard.Run(ctx, ctrl, cat, nav, tuiwizard.Options{
		Fetcher:    client,
		OutputDir:  cfg.OutputDir,
		Complexity: complexity,
		Locale:     cfg.Locale,
	})
	if errors.Is(err, tuiwizard.ErrCancelled) {
		fmt.Println("Wizard cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	if snap.Completed {
		fmt.Printf("Done. Artifact %s: %s\n", snap.ArtifactID, client.DownloadURL(snap.ArtifactID))
	}
	return nil
}
