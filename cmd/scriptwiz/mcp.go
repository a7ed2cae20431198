package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/journal"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/mcpserver"
	"github.com/mark3labs/scriptwiz/internal/metrics"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	addr        string
	metricsAddr string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the wizard as MCP tools over HTTP",
	Long: `Serve list-procedures, list-templates, generate-scripts and download-url
as MCP tools on a streamable HTTP endpoint. Each generate-scripts call runs
its own wizard from step 1.

With --metrics-addr, Prometheus metrics are served on /metrics.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", mcpserver.DefaultAddr, "Address to serve MCP on")
	mcpCmd.Flags().StringVar(&mcpFlags.metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (disabled when empty)")
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewPrometheusRecorder()
	opts := append(controllerOptions(cfg, cat), wizard.WithRecorder(rec))
	if cfg.Journal {
		j, err := journal.Open(ctx, cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = j.Close() }()
		opts = append(opts, wizard.WithListener(j.Listener(ctx)))
	}

	opts, _, waitHooks, err := withHooks(ctx, opts)
	if err != nil {
		return err
	}
	defer waitHooks()

	srv := mcpserver.New(client, cat, mcpFlags.addr, opts...)
	if _, err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()
	fmt.Printf("MCP endpoint: %s\n", srv.URL())

	if mcpFlags.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		metricsServer := &http.Server{
			Addr:              mcpFlags.metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
		fmt.Printf("Metrics: http://%s/metrics\n", mcpFlags.metricsAddr)
	}

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	return nil
}
