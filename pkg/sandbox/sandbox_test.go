package sandbox_test

import (
	"context"
	"testing"

	"github.com/agentkit/plankernel/pkg/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopExecutorRefusesInvocation(t *testing.T) {
	var exec sandbox.Executor = sandbox.NoopExecutor{}
	_, err := exec.Run(context.Background(), sandbox.Invocation{ModulePath: "anything.wasm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no executor configured")
}
