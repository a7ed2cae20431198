package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the wizard tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-procedures",
			mcp.WithDescription("List the procedure types scripts can be generated for"),
		),
		s.handleListProcedures,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-templates",
			mcp.WithDescription("List the starter prompt templates for a procedure type"),
			mcp.WithString("category", mcp.Required(),
				mcp.Description("Procedure type id from list-procedures"),
			),
		),
		s.handleListTemplates,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("generate-scripts",
			mcp.WithDescription("Generate deployment scripts for a procedure type from a prompt"),
			mcp.WithString("category", mcp.Required(),
				mcp.Description("Procedure type id from list-procedures"),
			),
			mcp.WithString("prompt", mcp.Required(),
				mcp.Description("Description of the scripts to generate"),
			),
			mcp.WithString("complexity",
				mcp.Description("basic, standard or advanced (default: standard)"),
				mcp.Enum("basic", "standard", "advanced"),
			),
			mcp.WithString("locale",
				mcp.Description("Language code for generated comments (default: en)"),
			),
		),
		s.handleGenerateScripts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("download-url",
			mcp.WithDescription("Return the archive download URL for a generated artifact"),
			mcp.WithString("artifact_id", mcp.Required(),
				mcp.Description("Artifact id returned by generate-scripts"),
			),
		),
		s.handleDownloadURL,
	)
}
