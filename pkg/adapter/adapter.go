package adapter

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/observability"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/schema"
)

// Config carries the collaborators shared by every generated tool.
// Zero fields fall back to defaults.
type Config struct {
	Schemas *schema.Generator
	Codec   domain.Codec
	Links   *routing.LinkGenerator
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Schemas == nil {
		c.Schemas = schema.Default()
	}
	if c.Codec == nil {
		c.Codec = domain.JSONCodec{}
	}
	if c.Links == nil {
		c.Links = routing.NewLinkGenerator()
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	return c
}

// New builds the tool for op. Schema failures are returned, not swallowed.
func New(op domain.Operation, cfg Config) (domain.Tool, error) {
	if op.Handler == nil {
		return domain.Tool{}, fmt.Errorf("%s: %w", op.ID(), domain.ErrNoHandler)
	}
	cfg = cfg.withDefaults()

	in, err := cfg.Schemas.Input(op.Params)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("%s: input schema: %w", op.ID(), err)
	}
	out, err := cfg.Schemas.Output(op.Responses, op.Returns)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("%s: output schema: %w", op.ID(), err)
	}

	inv := &invoker{
		op:     op,
		cfg:    cfg,
		logger: cfg.Logger.With("tool", op.ToolName()),
		title:  fmt.Sprintf("An error occurred while invoking %s", op.ID()),
	}

	return domain.Tool{
		Name:         op.ToolName(),
		Description:  op.Description,
		InputSchema:  in,
		OutputSchema: out,
		Operation:    op,
		Invoke:       inv.invoke,
	}, nil
}
