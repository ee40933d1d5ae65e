package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates the MCP server the bridge registers its tools on.
func NewServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
}

// Handler exposes s over streamable HTTP. Every request carries the service
// provider and itself as the ambient request of the tool calls it triggers.
func Handler(s *server.MCPServer, provider *services.Provider, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	h := server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			ctx = services.WithProvider(ctx, provider)
			return routing.WithRequest(ctx, r)
		}),
	)
	return corsMiddleware(h, logger)
}

// ServeStdio serves s over in and out until ctx is done. Tool calls see a
// synthetic GET request rooted at baseURL as their ambient request.
func ServeStdio(ctx context.Context, s *server.MCPServer, provider *services.Provider, logger *slog.Logger, baseURL string, in io.Reader, out io.Writer) error {
	if logger == nil {
		logger = logging.NewNop()
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	stdio := server.NewStdioServer(s)
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
		if err != nil {
			logger.Error("Failed to build ambient request", "error", err)
			return services.WithProvider(ctx, provider)
		}
		ctx = services.WithProvider(ctx, provider)
		return routing.WithRequest(ctx, r)
	})
	return stdio.Listen(ctx, in, out)
}

func corsMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id, Mcp-Protocol-Version")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
