package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/scriptwiz/internal/catalog"
	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/wizard"
)

// DefaultAddr binds to a random loopback port.
const DefaultAddr = "127.0.0.1:0"

// Server exposes the wizard as MCP tools over streamable HTTP.
// Every generate-scripts call drives its own wizard controller, so
// concurrent tool calls never share a busy flag.
type Server struct {
	gen       wizard.Generator
	cat       *catalog.Catalog
	ctrlOpts  []wizard.Option
	addr      string
	mcpServer *server.MCPServer
	stdServer *http.Server
	port      int
	mu        sync.Mutex
}

// New creates a server. ctrlOpts are applied to every controller it builds.
// The server is not started until Start() is called.
func New(gen wizard.Generator, cat *catalog.Catalog, addr string, ctrlOpts ...wizard.Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		gen:      gen,
		cat:      cat,
		ctrlOpts: ctrlOpts,
		addr:     addr,
	}
}

// Start listens on the configured address and serves in the background.
// Returns the bound port.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"scriptwiz",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	))
	s.stdServer = &http.Server{Handler: mux}

	// Capture for the goroutine so Stop() can clear the field
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server listening on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	s.mcpServer = nil
	return nil
}

// URL returns the HTTP URL for the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
