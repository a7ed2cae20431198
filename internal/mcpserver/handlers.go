package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/scriptwiz/internal/api"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/wizard"
)

type procedureInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Templates   int    `json:"templates"`
}

type generateResponse struct {
	ArtifactID        string       `json:"artifact_id"`
	DownloadURL       string       `json:"download_url"`
	Scripts           []api.Script `json:"scripts"`
	SetupInstructions string       `json:"setup_instructions,omitempty"`
	Dependencies      []string     `json:"dependencies,omitempty"`
}

// handleListProcedures returns the catalog's procedure types as JSON.
func (s *Server) handleListProcedures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := make([]procedureInfo, 0, len(s.cat.Procedures))
	for _, p := range s.cat.Procedures {
		out = append(out, procedureInfo{
			ID:          p.ID,
			Label:       p.Label,
			Description: p.Description,
			Templates:   len(p.Templates),
		})
	}
	return jsonResult(out)
}

// handleListTemplates returns the starter templates of one procedure type.
func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := stringArg(request.GetArguments(), "category")
	if category == "" {
		return mcp.NewToolResultError("missing 'category' parameter"), nil
	}
	if _, ok := s.cat.Find(category); !ok {
		return mcp.NewToolResultError(unknownCategory(category, s.cat.IDs())), nil
	}
	return jsonResult(s.cat.Templates(category))
}

// handleGenerateScripts runs a whole wizard pass for one request.
// Validation and server failures are tool errors, not protocol errors.
func (s *Server) handleGenerateScripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	category := stringArg(args, "category")
	if category == "" {
		return mcp.NewToolResultError("missing 'category' parameter"), nil
	}
	if _, ok := s.cat.Find(category); !ok {
		return mcp.NewToolResultError(unknownCategory(category, s.cat.IDs())), nil
	}

	complexity := api.ComplexityStandard
	if raw := stringArg(args, "complexity"); raw != "" {
		c, err := api.ParseComplexity(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		complexity = c
	}

	locale := stringArg(args, "locale")
	if locale == "" {
		locale = "en"
	}

	req := api.GenerationRequest{
		Prompt:     stringArg(args, "prompt"),
		Category:   category,
		Complexity: complexity,
		Locale:     locale,
	}

	ctrl := wizard.New(s.gen, s.ctrlOpts...)
	snap, err := wizard.RunHeadless(ctx, ctrl, req, false)
	if err != nil {
		logger.Warn("generate-scripts failed: %v", err)
		msg := snap.Error
		if msg == "" {
			msg = err.Error()
		}
		return mcp.NewToolResultError(msg), nil
	}

	logger.Info("generate-scripts produced artifact %s", snap.ArtifactID)
	return jsonResult(generateResponse{
		ArtifactID:        snap.ArtifactID,
		DownloadURL:       s.gen.DownloadURL(snap.ArtifactID),
		Scripts:           snap.Result.Scripts,
		SetupInstructions: snap.Result.SetupInstructions,
		Dependencies:      snap.Result.Dependencies,
	})
}

// handleDownloadURL resolves the download location of an artifact.
func (s *Server) handleDownloadURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(request.GetArguments(), "artifact_id")
	if id == "" {
		return mcp.NewToolResultError("missing 'artifact_id' parameter"), nil
	}
	return mcp.NewToolResultText(s.gen.DownloadURL(id)), nil
}

// stringArg returns a trimmed string argument, or "" when absent or not a string.
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func unknownCategory(id string, known []string) string {
	return fmt.Sprintf("unknown category %q (expected one of: %s)", id, strings.Join(known, ", "))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
