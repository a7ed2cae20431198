package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █▀▀ █▀█ █ █▀█ ▀█▀ █ █ █ █ ▀█"
	logoText2 = "▄▄█ █▄▄ █▀▄ █ █▀▀  █  ▀▄▀▄▀ █ █▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scriptwiz",
	Short: "Step-by-step wizard for generating deployment scripts",
	RunE:  runWizard,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

scriptwiz walks you through generating deployment scripts with a remote
generator: pick a procedure type, start from a template, write a prompt,
review the generated scripts and download the archive.

Running scriptwiz without a subcommand starts the interactive wizard.`

	registerConfigFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(mcpCmd)
}
