package ports

import (
	"github.com/aretw0/mcpbridge/pkg/domain"
)

// DescriptionProvider enumerates the operations of an API.
// Groups are returned in registration order; discovery uses the last one by default.
type DescriptionProvider interface {
	Groups() []domain.DescriptionGroup
}

// ToolRegistrar receives the tool set produced by discovery.
type ToolRegistrar interface {
	RegisterTools(tools []domain.Tool) error
}
