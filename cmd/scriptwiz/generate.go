package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/export"
	"github.com/mark3labs/scriptwiz/internal/journal"
	"github.com/mark3labs/scriptwiz/internal/render"
	"github.com/mark3labs/scriptwiz/internal/tui/theme"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	category string
	prompt   string
	template int
	out      string
	download bool
	plain    bool
	list     bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate scripts without the interactive wizard",
	Long: `Run every wizard step non-interactively: select --category, optionally
start from template --template N (1-based, see 'scriptwiz generate --list'),
generate, then finish.

Scripts are printed to stdout unless --out is given. With --download the
archive is saved to the output directory as well.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.category, "category", "", "Procedure type id (required)")
	generateCmd.Flags().StringVarP(&generateFlags.prompt, "prompt", "p", "", "Prompt, appended to the template prompt when --template is set")
	generateCmd.Flags().IntVarP(&generateFlags.template, "template", "t", 0, "Start from the Nth template of the category")
	generateCmd.Flags().StringVar(&generateFlags.out, "out", "", "Write scripts under this directory instead of printing them")
	generateCmd.Flags().BoolVar(&generateFlags.download, "download", false, "Also download the archive")
	generateCmd.Flags().BoolVar(&generateFlags.plain, "plain", false, "Print scripts without syntax highlighting")
	generateCmd.Flags().BoolVar(&generateFlags.list, "list", false, "List procedure types and templates and exit")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	if generateFlags.list {
		printCatalog(cat)
		return nil
	}

	if generateFlags.category == "" {
		return fmt.Errorf("--category is required (one of: %s)", strings.Join(cat.IDs(), ", "))
	}
	if _, ok := cat.Find(generateFlags.category); !ok {
		return fmt.Errorf("unknown category %q (one of: %s)", generateFlags.category, strings.Join(cat.IDs(), ", "))
	}
	prompt, err := resolvePrompt(cat, generateFlags.category, generateFlags.template, generateFlags.prompt)
	if err != nil {
		return err
	}
	complexity, err := api.ParseComplexity(cfg.Complexity)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var downloadURL string
	opts := append(controllerOptions(cfg, cat), wizard.WithNavigator(wizard.NavigatorFunc(func(_ context.Context, url string) {
		downloadURL = url
	})))
	if cfg.Journal {
		j, err := journal.Open(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = j.Close() }()
		opts = append(opts, wizard.WithListener(j.Listener(ctx)))
	}

	opts, hcfg, waitHooks, err := withHooks(ctx, opts)
	if err != nil {
		return err
	}
	defer waitHooks()

	fmt.Fprintf(os.Stderr, "Generating %s scripts (%s)...\n", cat.Label(generateFlags.category), complexity)
	snap, err := wizard.RunHeadless(ctx, wizard.New(client, opts...), api.GenerationRequest{
		Prompt:     prompt,
		Category:   generateFlags.category,
		Complexity: complexity,
		Locale:     cfg.Locale,
	}, generateFlags.download)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if generateFlags.out != "" {
		dir, err := export.WriteScripts(generateFlags.out, snap.Result, prompt)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d script(s) to %s\n", len(snap.Result.Scripts), dir)
	} else {
		printResult(snap.Result, generateFlags.plain)
	}

	if downloadURL != "" {
		path, err := client.Fetch(ctx, downloadURL, cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		fmt.Printf("Downloaded archive to %s\n", path)
		runPostDownload(ctx, hcfg, snap.ArtifactID, path)
	}
	fmt.Fprintf(os.Stderr, "Artifact %s\n", snap.ArtifactID)
	return nil
}

// resolvePrompt combines the chosen template with the prompt flag.
func resolvePrompt(cat *catalog.Catalog, category string, template int, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if template == 0 {
		if prompt == "" {
			return "", fmt.Errorf("--prompt or --template is required")
		}
		return prompt, nil
	}

	templates := cat.Templates(category)
	if template < 1 || template > len(templates) {
		return "", fmt.Errorf("--template must be between 1 and %d for %s", len(templates), category)
	}
	base := templates[template-1].Prompt
	if prompt == "" {
		return base, nil
	}
	return base + "\n\n" + prompt, nil
}

func printCatalog(cat *catalog.Catalog) {
	s := theme.Current().S()
	for _, p := range cat.Procedures {
		fmt.Printf("%s  %s\n", s.ListActive.Render(p.ID), s.Muted.Render(p.Label))
		for i, t := range p.Templates {
			fmt.Printf("  %d. %s\n", i+1, t.Title)
		}
	}
}

func printResult(res *api.GenerationResult, plain bool) {
	s := theme.Current().S()
	for _, sc := range res.Scripts {
		fmt.Println(s.FileHeader.Render(sc.Filename))
		if plain {
			fmt.Println(sc.Content)
		} else {
			fmt.Println(render.Highlight(sc.Content, sc.Filename))
		}
		fmt.Println()
	}
	if len(res.Dependencies) > 0 {
		fmt.Println(s.FileHeader.Render("Dependencies"))
		for _, d := range res.Dependencies {
			fmt.Printf("  • %s\n", d)
		}
		fmt.Println()
	}
	if res.SetupInstructions != "" {
		if plain {
			fmt.Println(res.SetupInstructions)
		} else {
			fmt.Println(render.Markdown(res.SetupInstructions, 0))
		}
	}
}
