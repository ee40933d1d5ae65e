package mcpbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/aretw0/mcpbridge/pkg/adapter"
	httpadapter "github.com/aretw0/mcpbridge/pkg/adapters/http"
	mcpadapter "github.com/aretw0/mcpbridge/pkg/adapters/mcp"
	"github.com/aretw0/mcpbridge/pkg/discovery"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/observability"
	"github.com/aretw0/mcpbridge/pkg/openapi"
	"github.com/aretw0/mcpbridge/pkg/ports"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
)

// Bridge serves one API version as MCP tools.
type Bridge struct {
	name     string
	version  string
	group    string
	baseURL  string
	codec    domain.Codec
	registry prometheus.Registerer
	logger   *slog.Logger

	provider ports.DescriptionProvider
	services *services.Provider
	schemas  *schema.Generator
	metrics  *observability.Metrics
	selected domain.DescriptionGroup
	tools    []domain.Tool
	mcp      *server.MCPServer
}

// Option defines a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithLogger sets a custom structured logger for the bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithName sets the MCP server name (default: "mcpbridge").
func WithName(name string) Option {
	return func(b *Bridge) {
		b.name = name
	}
}

// WithVersion sets the MCP server version (default: Version).
func WithVersion(version string) Option {
	return func(b *Bridge) {
		b.version = version
	}
}

// WithCodec sets the codec used to decode tool arguments and encode HTTP
// responses. A codec registered with the service provider takes precedence
// during tool calls.
func WithCodec(c domain.Codec) Option {
	return func(b *Bridge) {
		b.codec = c
	}
}

// WithGroup exposes the named API version instead of the last one.
func WithGroup(name string) Option {
	return func(b *Bridge) {
		b.group = name
	}
}

// WithRegistry registers the bridge metrics with reg instead of a private registry.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(b *Bridge) {
		b.registry = reg
	}
}

// WithBaseURL sets the URL of the ambient request seen by stdio tool calls
// (default: "http://localhost/").
func WithBaseURL(u string) Option {
	return func(b *Bridge) {
		b.baseURL = u
	}
}

type errReporter interface {
	Err() error
}

// New discovers the tools of provider and registers them on a new MCP server.
// The service provider is shared by every call; New registers the ambient
// request constructor on it.
func New(provider ports.DescriptionProvider, sp *services.Provider, opts ...Option) (*Bridge, error) {
	if provider == nil {
		return nil, fmt.Errorf("description provider is required")
	}
	if sp == nil {
		return nil, domain.ErrMissingServices
	}

	b := &Bridge{
		name:     "mcpbridge",
		version:  Version,
		baseURL:  "http://localhost/",
		codec:    domain.JSONCodec{},
		provider: provider,
		services: sp,
		schemas:  schema.NewGenerator(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}

	if r, ok := provider.(errReporter); ok {
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("invalid api description: %w", err)
		}
	}

	metrics, err := observability.NewMetrics(b.registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	b.metrics = metrics

	if err := sp.AddScoped(routing.NewAmbient); err != nil {
		return nil, err
	}

	cfg := adapter.Config{
		Schemas: b.schemas,
		Codec:   b.codec,
		Links:   routing.NewLinkGenerator(),
		Metrics: b.metrics,
		Logger:  b.logger,
	}
	var dopts []discovery.Option
	if b.group != "" {
		dopts = append(dopts, discovery.WithGroup(b.group))
	}
	b.tools = discovery.Discover(provider, cfg, dopts...)
	b.selected = b.selectGroup()

	b.mcp = mcpadapter.NewServer(b.name, b.version)
	if err := (discovery.Registrar{Server: b.mcp}).RegisterTools(b.tools); err != nil {
		return nil, err
	}

	b.logger.Info("bridge ready", "group", b.selected.Name, "tools", len(b.tools))
	return b, nil
}

func (b *Bridge) selectGroup() domain.DescriptionGroup {
	groups := b.provider.Groups()
	for _, g := range groups {
		if g.Name == b.group {
			return g
		}
	}
	if b.group == "" && len(groups) > 0 {
		return groups[len(groups)-1]
	}
	return domain.DescriptionGroup{}
}

// Tools returns the registered tools.
func (b *Bridge) Tools() []domain.Tool {
	return b.tools
}

// Group returns the exposed API version.
func (b *Bridge) Group() domain.DescriptionGroup {
	return b.selected
}

// MCPServer returns the underlying MCP server.
func (b *Bridge) MCPServer() *server.MCPServer {
	return b.mcp
}

// OpenAPI describes the exposed API version.
func (b *Bridge) OpenAPI() (*openapi3.T, error) {
	return openapi.Build(b.selected, b.schemas, openapi.Info{
		Title:   b.name,
		Version: b.selected.Name,
	})
}

// Handler serves the API natively together with /mcp, the OpenAPI documents,
// /metrics and /healthz.
func (b *Bridge) Handler() (http.Handler, error) {
	doc, err := b.OpenAPI()
	if err != nil {
		return nil, err
	}
	return httpadapter.NewHandler(httpadapter.Config{
		Operations: b.selected.Operations,
		Services:   b.services,
		Codec:      b.codec,
		MCP:        mcpadapter.Handler(b.mcp, b.services, b.logger),
		OpenAPI:    doc,
		Metrics:    b.metrics,
		Logger:     b.logger,
	})
}

// ListenAndServe serves Handler on addr until ctx is done.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	h, err := b.Handler()
	if err != nil {
		return err
	}
	return httpadapter.ListenAndServe(ctx, addr, h, b.logger)
}

// ServeStdio serves MCP over in and out until ctx is done.
func (b *Bridge) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return mcpadapter.ServeStdio(ctx, b.mcp, b.services, b.logger, b.baseURL, in, out)
}
