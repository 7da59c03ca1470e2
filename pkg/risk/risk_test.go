package risk_test

import (
	"testing"

	"github.com/agentkit/plankernel/pkg/planstore"
	"github.com/agentkit/plankernel/pkg/risk"
	"github.com/stretchr/testify/assert"
)

func TestAssessMapsPriorityToRiskLevel(t *testing.T) {
	p := &planstore.Plan{Steps: []planstore.Step{
		{ID: "s1", Priority: 0},
		{ID: "s2", Priority: 2},
		{ID: "s3", Priority: 5},
	}}
	got := risk.Assess(p)
	assert.Equal(t, risk.Low, got[0].Risk)
	assert.False(t, got[0].NeedReview)
	assert.Equal(t, risk.Medium, got[1].Risk)
	assert.True(t, got[1].NeedReview)
	assert.Equal(t, risk.High, got[2].Risk)
	assert.True(t, got[2].NeedReview)
}

func TestAssessBlockedLowRiskStepStillNeedsReview(t *testing.T) {
	p := &planstore.Plan{Steps: []planstore.Step{
		{ID: "s1", Priority: 0, Blocked: true, BlockReason: "waiting on approval"},
	}}
	got := risk.Assess(p)
	assert.True(t, got[0].NeedReview)
	assert.Contains(t, got[0].Reason, "blocked")
}
