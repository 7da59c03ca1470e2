package planstore

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	s := NewStore()
	p, err := s.CreatePlan("ship the thing", "", "", ModeFull)
	require.NoError(t, err)
	return s, p.ID
}

// S1: sequential adds mint s1, s2, s3 in order.
func TestScenarioS1SequentialAdd(t *testing.T) {
	s, planID := newTestStore(t)

	p, id1, err := s.Add(planID, 1, "first", AddFields{}, "")
	require.NoError(t, err)
	assert.Equal(t, "s1", id1)
	assert.Equal(t, 2, p.Version)

	p, id2, err := s.Add(planID, 2, "second", AddFields{}, "")
	require.NoError(t, err)
	assert.Equal(t, "s2", id2)

	_, id3, err := s.Add(planID, 3, "third", AddFields{}, "")
	require.NoError(t, err)
	assert.Equal(t, "s3", id3)
}

// S2: dep_add that would close a cycle fails with KindCycle and leaves the
// plan (version, deps) untouched.
func TestScenarioS2CycleRejected(t *testing.T) {
	s, planID := newTestStore(t)
	_, _, _ = s.Add(planID, 1, "s1", AddFields{}, "")
	p, _, _ := s.Add(planID, 2, "s2", AddFields{Dependencies: []string{"s1"}}, "")
	require.Equal(t, 3, p.Version)

	_, err := s.DepAdd(planID, 3, "s1", []string{"s2"})
	require.Error(t, err)
	derr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindCycle, derr.Kind)

	after, err := s.GetPlan(planID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Version, "failed mutation must not bump version")
	assert.Empty(t, after.step("s1").Dependencies)
}

// S3: removing a step other steps depend on fails with dependent_steps
// listing the survivors, not the removed id.
func TestScenarioS3RemoveDependentSteps(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	s.Add(planID, 2, "s2", AddFields{Dependencies: []string{"s1"}}, "")

	_, err := s.Remove(planID, 3, []string{"s1"})
	require.Error(t, err)
	derr := err.(*Error)
	assert.Equal(t, KindDependentSteps, derr.Kind)
	assert.Equal(t, []string{"s2"}, derr.Detail["dependent_steps"])
}

// S4: reorder(s3,s2,s1) with s3 depending on s1 conflicts on s3, the first
// violator found walking the plan's original order.
func TestScenarioS4ReorderConflict(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	s.Add(planID, 2, "s2", AddFields{}, "")
	s.Add(planID, 3, "s3", AddFields{Dependencies: []string{"s1"}}, "")

	_, err := s.Reorder(planID, 4, []string{"s3", "s2", "s1"})
	require.Error(t, err)
	derr := err.(*Error)
	assert.Equal(t, KindConflictStep, derr.Kind)
	assert.Equal(t, "s3", derr.Detail["conflict_step"])
}

// S5: a stale expected_version is rejected with version_mismatch and the
// plan is unaffected.
func TestScenarioS5VersionMismatch(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")

	_, err := s.Update(planID, 1, "s1", UpdateFields{})
	require.Error(t, err)
	derr := err.(*Error)
	assert.Equal(t, KindVersionMismatch, derr.Kind)
	assert.Equal(t, 2, derr.Detail["current_version"])
	assert.Equal(t, 1, derr.Detail["expected_version"])
}

// S6: undo restores the exact pre-mutation plan value and is itself
// reversible via redo.
func TestScenarioS6UndoRedo(t *testing.T) {
	s, planID := newTestStore(t)
	before, _ := s.GetPlan(planID)
	p, _, err := s.Add(planID, 1, "s1", AddFields{}, "")
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)

	undone, applied, err := s.Undo(planID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Empty(t, undone.Steps)
	assert.Equal(t, before.Version, undone.Version)

	redone, applied, err := s.Redo(planID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Len(t, redone.Steps, 1)
}

func TestMarkDoneBlockedByUnfinishedDependency(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	s.Add(planID, 2, "s2", AddFields{Dependencies: []string{"s1"}}, "")

	_, err := s.Mark(planID, 3, "s2", StatusDone, "", "")
	require.Error(t, err)
	derr := err.(*Error)
	assert.Equal(t, KindBlockedBy, derr.Kind)
	assert.Equal(t, []string{"s1"}, derr.Detail["blocked_by"])
}

func TestMarkDoneSucceedsOnceDependencySatisfied(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	s.Add(planID, 2, "s2", AddFields{Dependencies: []string{"s1"}}, "")

	p, err := s.Mark(planID, 3, "s1", StatusDone, "", "")
	require.NoError(t, err)
	_, err = s.Mark(planID, p.Version, "s2", StatusDone, "", "")
	require.NoError(t, err)
}

func TestSplitKeepParentBecomesVirtual(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "big task", AddFields{}, "")

	p, children, err := s.Split(planID, 2, "s1", []string{"part a::do a", "part b::do b"}, true)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Len(t, p.Steps, 3)
	assert.True(t, p.step("s1").VirtualParent)
	assert.Equal(t, "part a", p.step(children[0]).Title)
	assert.Equal(t, "do a", p.step(children[0]).Description)
}

func TestMergeUnionsDependenciesAndNeedsAtLeastTwo(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")
	s.Add(planID, 2, "s2", AddFields{Dependencies: []string{"s1"}}, "")
	s.Add(planID, 3, "s3", AddFields{Dependencies: []string{"s1"}, Tags: []string{"urgent"}}, "")

	_, _, err := s.Merge(planID, 4, []string{"s2"}, MergeFields{})
	require.Error(t, err)
	assert.Equal(t, KindNeedAtLeastTwo, err.(*Error).Kind)

	p, mergedID, err := s.Merge(planID, 4, []string{"s2", "s3"}, MergeFields{Title: "combined"})
	require.NoError(t, err)
	merged := p.step(mergedID)
	require.NotNil(t, merged)
	assert.Equal(t, []string{"s1"}, merged.Dependencies)
	assert.Equal(t, []string{"urgent"}, merged.Tags)
}

func TestChecklistLifecycle(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")

	p, err := s.Checklist(planID, 2, "s1", ChecklistAdd, "", "write docs")
	require.NoError(t, err)
	item := p.step("s1").Checklist[0]
	assert.False(t, item.Done)

	p, err = s.Checklist(planID, p.Version, "s1", ChecklistToggle, item.ID, "")
	require.NoError(t, err)
	assert.True(t, p.step("s1").Checklist[0].Done)

	p, err = s.Checklist(planID, p.Version, "s1", ChecklistRemove, item.ID, "")
	require.NoError(t, err)
	assert.Empty(t, p.step("s1").Checklist)
}

func TestUnknownStepNotFound(t *testing.T) {
	s, planID := newTestStore(t)
	_, err := s.Update(planID, 1, "ghost", UpdateFields{})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, err.(*Error).Kind)
}

// --- Property-based tests (gopter) -----------------------------------------

// acyclicPlanGen builds small acyclic plans by only ever depending on
// already-added steps, which can never itself introduce a cycle.
func acyclicPlanGen() gopter.Gen {
	return gen.IntRange(0, 8).Map(func(n int) *Plan {
		p := &Plan{ID: "prop", NextStepOrdinal: 1}
		for i := 0; i < n; i++ {
			id := p.mintStepID()
			var deps []string
			if i > 0 {
				deps = []string{p.Steps[i-1].ID}
			}
			p.Steps = append(p.Steps, Step{ID: id, Dependencies: deps})
		}
		return p
	})
}

// P1: acyclic-by-construction plans never report a cycle.
func TestPropertyP1AcyclicPlansHaveNoCycle(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("acyclic plans never have a cycle", prop.ForAll(
		func(p *Plan) bool {
			return !hasCycle(p)
		},
		acyclicPlanGen(),
	))

	properties.TestingRun(t)
}

// P2: removing any dependency edge from an acyclic plan keeps it acyclic
// (removing edges cannot introduce a cycle).
func TestPropertyP2RemovingEdgesPreservesAcyclicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("dropping all dependencies from one step keeps the plan acyclic", prop.ForAll(
		func(p *Plan) bool {
			if len(p.Steps) == 0 {
				return true
			}
			p.Steps[len(p.Steps)-1].Dependencies = nil
			return !hasCycle(p)
		},
		acyclicPlanGen(),
	))

	properties.TestingRun(t)
}

// R1: Clone round-trips a plan's observable content without aliasing.
func TestPropertyR1CloneRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("clone is value-equal and independently mutable", prop.ForAll(
		func(p *Plan) bool {
			clone := p.Clone()
			if len(clone.Steps) != len(p.Steps) {
				return false
			}
			if len(clone.Steps) == 0 {
				return true
			}
			clone.Steps[0].Title = "mutated"
			return p.Steps[0].Title != "mutated"
		},
		acyclicPlanGen(),
	))

	properties.TestingRun(t)
}

// R2: undo(n) then redo(n) returns to the plan reached before the undo.
func TestPropertyR2UndoRedoRoundTrip(t *testing.T) {
	s, planID := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, _, err := s.Add(planID, i+1, "step", AddFields{}, "")
		require.NoError(t, err)
	}
	before, err := s.GetPlan(planID)
	require.NoError(t, err)

	_, applied, err := s.Undo(planID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, applied)

	after, applied, err := s.Redo(planID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, applied)
	assert.Equal(t, before.Steps, after.Steps)
	assert.Equal(t, before.Version, after.Version)
}

// R3: a failed mutation (stale version) leaves the undo stack depth
// unchanged.
func TestPropertyR3FailedMutationLeavesUndoStackDepth(t *testing.T) {
	s, planID := newTestStore(t)
	s.Add(planID, 1, "s1", AddFields{}, "")

	rec := s.plans[planID]
	depthBefore := len(rec.UndoStack)

	_, err := s.Update(planID, 999, "s1", UpdateFields{Title: strPtr("x")})
	require.Error(t, err)

	assert.Equal(t, depthBefore, len(rec.UndoStack))
}

func strPtr(s string) *string { return &s }
