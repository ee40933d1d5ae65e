package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDescriptionProviderContract verifies that a DescriptionProvider yields
// well formed, stable operation descriptors.
func RunDescriptionProviderContract(t *testing.T, p DescriptionProvider) {
	t.Run("Groups are stable", func(t *testing.T) {
		first := p.Groups()
		second := p.Groups()
		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Name, second[i].Name)
			assert.Equal(t, len(first[i].Operations), len(second[i].Operations))
		}
	})

	t.Run("Operations are well formed", func(t *testing.T) {
		for _, g := range p.Groups() {
			ids := make(map[string]bool)
			for _, op := range g.Operations {
				assert.NotEmpty(t, op.Group, "group of %s", op.ID())
				assert.NotEmpty(t, op.Name, "name of %s", op.ID())
				assert.False(t, ids[op.ID()], "operation %s declared twice in %s", op.ID(), g.Name)
				ids[op.ID()] = true

				if op.Handler == nil {
					continue
				}
				_, ok := op.HTTPMethod()
				assert.True(t, ok, "%s declares no http method", op.ID())
				require.Len(t, op.Params, len(op.Handler.Params()), "parameters of %s", op.ID())
				for i, param := range op.Params {
					assert.NotEmpty(t, param.Name, "parameter %d of %s", i, op.ID())
					assert.Equal(t, op.Handler.Params()[i], param.Type, "parameter %s of %s", param.Name, op.ID())
				}
				assert.Equal(t, op.Handler.Returns(), op.Returns, "return type of %s", op.ID())
			}
		}
	})
}
