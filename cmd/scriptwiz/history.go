package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/scriptwiz/internal/journal"
	"github.com/mark3labs/scriptwiz/internal/tui/theme"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	json  bool
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List artifacts recorded in the journal",
	Long: `List generated artifacts, newest first, as recorded by the journal.
Only runs with journal enabled are recorded.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print artifacts as JSON")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Show at most N artifacts, 0 for all")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	j, err := journal.Open(cmd.Context(), cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	h, err := j.History(cmd.Context())
	if err != nil {
		return err
	}
	artifacts := h.Newest()
	if historyFlags.limit > 0 && len(artifacts) > historyFlags.limit {
		artifacts = artifacts[:historyFlags.limit]
	}

	if historyFlags.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifacts)
	}

	s := theme.Current().S()
	if len(artifacts) == 0 {
		fmt.Println(s.Muted.Render("No artifacts recorded."))
		return nil
	}
	for _, a := range artifacts {
		fmt.Printf("%s  %s  %s\n",
			s.ListActive.Render(a.ID),
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Muted.Render(fmt.Sprintf("%s/%s, %d file(s), %d download(s)", a.Category, a.Complexity, len(a.Files), a.Downloads)))
		if a.Prompt != "" {
			fmt.Printf("    %s\n", s.Description.Render(firstLine(a.Prompt, 72)))
		}
	}
	fmt.Printf("\n%d generation request(s), %d failed\n", h.Requested, h.Failed)
	return nil
}

func firstLine(s string, n int) string {
	s, _, _ = strings.Cut(s, "\n")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
