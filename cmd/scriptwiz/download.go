package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/scriptwiz/internal/hooks"
	"github.com/mark3labs/scriptwiz/internal/journal"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [artifact-id]",
	Short: "Download the archive of a generated artifact",
	Long: `Download the archive of a generated artifact into the output directory.

Without an artifact id the most recent artifact recorded in the journal is
used, which requires journal to have been enabled when it was generated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var j *journal.Journal
	if len(args) == 0 || cfg.Journal {
		j, err = journal.Open(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = j.Close() }()
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		h, err := j.History(ctx)
		if err != nil {
			return err
		}
		latest, ok := h.Latest()
		if !ok {
			return fmt.Errorf("no artifacts recorded in %s; pass an artifact id", cfg.DataDir)
		}
		id = latest.ID
		fmt.Fprintf(os.Stderr, "Using latest artifact %s\n", id)
	}

	url := client.DownloadURL(id)
	if j != nil {
		if _, err := j.Publish(ctx, journal.Entry{
			Type:       journal.TypeDownload,
			Action:     journal.ActionRequested,
			ArtifactID: id,
			URL:        url,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	path, err := client.Fetch(ctx, url, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Printf("Downloaded %s to %s\n", id, path)

	hcfg, err := hooks.LoadConfig(".")
	if err != nil {
		return err
	}
	runPostDownload(ctx, hcfg, id, path)
	return nil
}
