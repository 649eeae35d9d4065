package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Default HTTP serving limits.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config tunes the server's HTTP mode. The zero value uses the defaults;
// stdio mode ignores it entirely.
type Config struct {
	// ReadHeaderTimeout bounds how long a client may take to send request
	// headers (default: 10s).
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds the graceful drain of in-flight requests when
	// the context is cancelled (default: 5s).
	ShutdownTimeout time.Duration
}

// Server is the MCP server for Lectern.
type Server struct {
	ports  *Ports
	cfg    Config
	server *mcp.Server
}

// NewServer creates an MCP server with the given ports. The version is the
// lectern binary version, reported to MCP clients during initialization.
func NewServer(ports *Ports, version string, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = "dev"
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	impl := &mcp.Implementation{
		Name:    "lectern",
		Version: version,
	}

	s := &Server{
		ports:  ports,
		cfg:    cfg,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs; cancellation
// drains in-flight requests for up to the configured shutdown timeout.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
