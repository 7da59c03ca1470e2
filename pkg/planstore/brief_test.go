package planstore

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBriefRendersDeterministicSections(t *testing.T) {
	s, planID := newTestStore(t)
	p, _, err := s.Add(planID, 1, "research", AddFields{}, "")
	require.NoError(t, err)
	p, err = s.Mark(planID, p.Version, "s1", StatusDone, "", "")
	require.NoError(t, err)
	p, _, err = s.Add(planID, p.Version, "write code", AddFields{Acceptance: "tests pass"}, "s1")
	require.NoError(t, err)
	p, err = s.Mark(planID, p.Version, "s2", StatusRunning, "", "")
	require.NoError(t, err)
	_, _, err = s.Add(planID, p.Version, "review", AddFields{}, "s2")
	require.NoError(t, err)

	plan, err := s.GetPlan(planID)
	require.NoError(t, err)

	result := Brief(&plan, BriefOptions{})
	assert.Equal(t, "s2", result.NowStepID)
	assert.Equal(t, []string{"s1"}, result.DoneStepIDs)
	assert.Equal(t, []string{"s3"}, result.NextStepIDs)
	assert.True(t, strings.HasPrefix(result.MICText, "Goal: ship the thing\n"))
	assert.Contains(t, result.MICText, "Now: [s2] write code")
	assert.Contains(t, result.MICText, "Acceptance: tests pass")
}

func TestBriefNoRunningOrPendingStepReportsNone(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	_, err := s.Mark(planID, 2, "s1", StatusDone, "", "")
	require.NoError(t, err)

	plan, _ := s.GetPlan(planID)
	result := Brief(&plan, BriefOptions{})
	assert.Empty(t, result.NowStepID)
	assert.Contains(t, result.MICText, "Now: <none>")
	assert.NotContains(t, result.MICText, "Acceptance:")
}

// P6: mic_text length never exceeds 4 * token_cap.
func TestPropertyP6BriefRespectsTokenCap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("mic_text length <= 4*token_cap", prop.ForAll(
		func(n int, tokenCap int) bool {
			p := &Plan{ID: "p", Goal: strings.Repeat("x", 50), NextStepOrdinal: 1}
			for i := 0; i < n; i++ {
				id := p.mintStepID()
				p.Steps = append(p.Steps, Step{ID: id, Title: strings.Repeat("y", 20), Status: StatusPending})
			}
			result := Brief(p, BriefOptions{TokenCap: tokenCap})
			return len(result.MICText) <= tokenCap*charsPerToken
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
