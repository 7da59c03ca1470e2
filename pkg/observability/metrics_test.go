package observability_test

import (
	"context"
	"testing"

	"github.com/agentkit/plankernel/pkg/observability"
	"github.com/agentkit/plankernel/pkg/planstore"
	"github.com/stretchr/testify/require"
)

func TestPlanMetricsRecordsMutationsAndFailures(t *testing.T) {
	m, err := observability.NewPlanMetrics()
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	m.RecordMutation("add")
	m.RecordMutation("add")
	m.RecordFailure("mark", planstore.KindBlockedBy)

	rm, err := m.Collect(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rm.ScopeMetrics)

	var sawMutations, sawFailures bool
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			switch metric.Name {
			case "planstore.mutations.total":
				sawMutations = true
			case "planstore.failures.total":
				sawFailures = true
			}
		}
	}
	require.True(t, sawMutations)
	require.True(t, sawFailures)
}
