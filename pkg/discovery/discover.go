package discovery

import (
	"fmt"

	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/aretw0/mcpbridge/pkg/adapter"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/ports"
)

type options struct {
	group string
}

// Option configures Discover.
type Option func(*options)

// WithGroup selects the description group to expose. By default the last
// group is used.
func WithGroup(name string) Option {
	return func(o *options) {
		o.group = name
	}
}

// Discover builds one tool per handler-backed operation of the selected group.
// An operation whose tool cannot be built, or whose tool name is already
// taken, is logged and skipped.
func Discover(provider ports.DescriptionProvider, cfg adapter.Config, opts ...Option) []domain.Tool {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	group, ok := selectGroup(provider.Groups(), o.group)
	if !ok {
		logger.Warn("no description group to expose", "group", o.group)
		cfg.Metrics.SetTools(0)
		return nil
	}

	tools := make([]domain.Tool, 0, len(group.Operations))
	owners := make(map[string]string, len(group.Operations))
	for _, op := range group.Operations {
		if op.Handler == nil {
			continue
		}

		tool, err := build(op, cfg)
		if err == nil {
			if prev, taken := owners[tool.Name]; taken {
				err = fmt.Errorf("%w: %s is already used by %s", domain.ErrDuplicateTool, tool.Name, prev)
			}
		}
		if err != nil {
			logger.Error("skipping operation", "group", group.Name, "operation", op.ID(), "error", err)
			cfg.Metrics.DiscoveryFailure(op.ID())
			continue
		}

		owners[tool.Name] = op.ID()
		tools = append(tools, tool)
	}

	logger.Debug("discovered tools", "group", group.Name, "count", len(tools))
	cfg.Metrics.SetTools(len(tools))
	return tools
}

func selectGroup(groups []domain.DescriptionGroup, name string) (domain.DescriptionGroup, bool) {
	if name == "" {
		if len(groups) == 0 {
			return domain.DescriptionGroup{}, false
		}
		return groups[len(groups)-1], true
	}
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return domain.DescriptionGroup{}, false
}

func build(op domain.Operation, cfg adapter.Config) (tool domain.Tool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("building tool: panic: %v", r)
		}
	}()
	return adapter.New(op, cfg)
}
