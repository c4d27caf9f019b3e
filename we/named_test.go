package we

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type TestAction struct{}

type TestNamedAction struct{}

func (TestNamedAction) TypeName() string {
	return "test:named"
}

func resolvesExplicitName(t *testing.T) {
	assert.Equal(t, "test:named", NameOf(TestNamedAction{}))
}

func resolvesImplicitName(t *testing.T) {
	assert.Equal(t, "we:test-action", NameOf(TestAction{}))
	assert.Equal(t, "we:test-action", NameOf(&TestAction{}))
}

func resolvesBuiltinName(t *testing.T) {
	assert.Equal(t, "int", NameOf(1))
}

func TestNames(t *testing.T) {
	t.Run("resolves explicit name", resolvesExplicitName)
	t.Run("resolves implicit name", resolvesImplicitName)
	t.Run("resolves builtin name", resolvesBuiltinName)
}
