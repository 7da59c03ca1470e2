package report_test

import (
	"bytes"
	"testing"

	"github.com/agentkit/plankernel/pkg/planstore"
	"github.com/agentkit/plankernel/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEventAppendsAndWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	log := report.NewLogWithWriter(&buf)

	require.NoError(t, log.Event("create", "plan:p1", map[string]any{"title": "demo"}))
	require.NoError(t, log.Event("mark", "step:s1", nil))

	events := log.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "create", events[0].Action)
	assert.Contains(t, buf.String(), "\"action\":\"create\"")
}

func TestSummaryRendersStatusCountsAndSteps(t *testing.T) {
	p := &planstore.Plan{
		ID: "p1", Title: "demo", UpdatedAt: "2026-07-31T00:00:00Z",
		Steps: []planstore.Step{
			{ID: "s1", Title: "first", Status: planstore.StatusDone},
			{ID: "s2", Title: "second", Status: planstore.StatusRunning},
		},
	}
	events := []planstore.LogEvent{{EventID: "e1", Type: "create", Version: 1, Timestamp: "2026-07-31T00:00:00Z"}}

	out := report.Summary(p, events)
	assert.Contains(t, out, `Plan "demo" (p1)`)
	assert.Contains(t, out, "1 done, 1 running")
	assert.Contains(t, out, "[s1] done")
	assert.Contains(t, out, "History (1 events)")
}
