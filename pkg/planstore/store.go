package planstore

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/agentkit/plankernel/pkg/canonicalize"
	"github.com/agentkit/plankernel/pkg/ids"
)

// defaultUndoCap bounds the undo/redo rings when none is configured. The
// depth is an implementation choice; FIFO eviction of the oldest entry
// keeps memory bounded for long-lived plans.
const defaultUndoCap = 64

// Metrics is the subset of instrumentation the store reports through.
// NewStore's default is a no-op so the store works without an otel
// provider configured; see pkg/observability for the otel-backed one.
type Metrics interface {
	RecordMutation(op string)
	RecordFailure(op string, kind Kind)
}

type noopMetrics struct{}

func (noopMetrics) RecordMutation(string)     {}
func (noopMetrics) RecordFailure(string, Kind) {}

// Store is the process-wide, single-threaded-cooperative home of all plans.
// A single mutex around the whole state object is sufficient: there is no
// suspension point inside any operation, so holding it for an entire
// operation cannot deadlock or starve other goroutines for long.
type Store struct {
	mu      sync.Mutex
	plans   map[string]*PlanRecord
	undoCap int
	metrics Metrics
	log     *slog.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithUndoCap overrides the default undo/redo ring depth.
func WithUndoCap(n int) Option {
	return func(s *Store) { s.undoCap = n }
}

// WithMetrics wires an instrumentation sink (see pkg/observability).
func WithMetrics(m Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger overrides the default slog.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		plans:   make(map[string]*PlanRecord),
		undoCap: defaultUndoCap,
		metrics: noopMetrics{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) getRecord(planID string) (*PlanRecord, error) {
	rec, ok := s.plans[planID]
	if !ok {
		return nil, errNotFound("plan", planID)
	}
	return rec, nil
}

func pushBounded(stack []Plan, v Plan, cap int) []Plan {
	stack = append(stack, v)
	if cap > 0 && len(stack) > cap {
		stack = stack[len(stack)-cap:]
	}
	return stack
}

// commit implements the transaction protocol common to every
// structural mutation: fence the version, push a pre-image, apply, and roll
// back to the pre-image on any error from apply (post-condition failure or
// an error discovered mid-mutation) without appending an event.
func (s *Store) commit(planID string, expectedVersion int, op string, apply func(p *Plan) error) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.getRecord(planID)
	if err != nil {
		return Plan{}, err
	}
	if rec.Plan.Version != expectedVersion {
		s.metrics.RecordFailure(op, KindVersionMismatch)
		return Plan{}, errVersionMismatch(planID, rec.Plan.Version, expectedVersion)
	}

	pre := rec.Plan.Clone()
	rec.UndoStack = pushBounded(rec.UndoStack, pre, s.undoCap)
	rec.RedoStack = nil

	if applyErr := apply(&rec.Plan); applyErr != nil {
		rec.UndoStack = rec.UndoStack[:len(rec.UndoStack)-1]
		rec.Plan = pre
		if derr, ok := applyErr.(*Error); ok {
			s.metrics.RecordFailure(op, derr.Kind)
		}
		s.log.Debug("planstore: mutation rolled back", "plan_id", planID, "op", op, "error", applyErr)
		return Plan{}, applyErr
	}

	rec.Plan.Version++
	rec.Plan.UpdatedAt = ids.NowISO8601()
	rec.Events = append(rec.Events, LogEvent{
		EventID:   ids.RandomID("evt_"),
		Type:      op,
		Timestamp: rec.Plan.UpdatedAt,
		Version:   rec.Plan.Version,
	})
	s.metrics.RecordMutation(op)
	return rec.Plan.Clone(), nil
}

// CreatePlan creates a new plan. No version fence applies to creation.
func (s *Store) CreatePlan(goal, title, planID string, mode Mode) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if planID == "" {
		planID = ids.RandomID("plan_")
	}
	if _, exists := s.plans[planID]; exists {
		return Plan{}, newError("already_exists", map[string]any{"plan_id": planID})
	}
	if title == "" {
		title = goal
	}
	if mode == "" {
		mode = ModeFull
	}

	now := ids.NowISO8601()
	plan := Plan{
		ID:              planID,
		Title:           title,
		Goal:            goal,
		Mode:            mode,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
		NextStepOrdinal: 1,
	}
	rec := &PlanRecord{Plan: plan}
	rec.Events = append(rec.Events, LogEvent{
		EventID:   ids.RandomID("evt_"),
		Type:      "create",
		Timestamp: now,
		Version:   1,
	})
	s.plans[planID] = rec
	s.metrics.RecordMutation("create")
	return plan.Clone(), nil
}

// UpdateFields carries the optional per-call assignments for Update. A nil
// pointer means "leave unchanged".
type UpdateFields struct {
	Title         *string
	Description   *string
	Priority      *int
	Owner         *string
	Acceptance    *string
	EstimateHours *float64
	AddTags       []string
	RemoveTags    []string
}

// Update applies field-level changes to a step. These are the "structural"
// mutations: total, never partially applied.
func (s *Store) Update(planID string, expectedVersion int, stepID string, f UpdateFields) (Plan, error) {
	return s.commit(planID, expectedVersion, "update", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		if f.Title != nil {
			step.Title = *f.Title
		}
		if f.Description != nil {
			step.Description = *f.Description
		}
		if f.Priority != nil {
			step.Priority = *f.Priority
		}
		if f.Owner != nil {
			step.Owner = *f.Owner
		}
		if f.Acceptance != nil {
			step.Acceptance = *f.Acceptance
		}
		if f.EstimateHours != nil {
			step.EstimateHours = f.EstimateHours
		}
		if len(f.AddTags) > 0 {
			step.Tags = appendDedupe(step.Tags, f.AddTags)
		}
		if len(f.RemoveTags) > 0 {
			step.Tags = subtract(step.Tags, f.RemoveTags)
		}
		return nil
	})
}

// AddFields carries the optional fields accepted by Add.
type AddFields struct {
	Description   string
	Owner         string
	Acceptance    string
	Priority      int
	EstimateHours *float64
	Tags          []string
	Dependencies  []string
}

// Add mints a new step and inserts it after `after` (or at the tail if
// after is empty). Fails with KindCycle if the new step's dependencies
// would introduce one.
func (s *Store) Add(planID string, expectedVersion int, title string, f AddFields, after string) (Plan, string, error) {
	var newID string
	plan, err := s.commit(planID, expectedVersion, "add", func(p *Plan) error {
		insertAt := len(p.Steps)
		if after != "" {
			idx, ok := p.stepIndex(after)
			if !ok {
				return errNotFound("step", after)
			}
			insertAt = idx + 1
		}
		newID = p.mintStepID()
		step := Step{
			ID:            newID,
			Title:         title,
			Description:   f.Description,
			Status:        StatusPending,
			Priority:      f.Priority,
			Owner:         f.Owner,
			Acceptance:    f.Acceptance,
			EstimateHours: f.EstimateHours,
			Tags:          dedupePreserveOrder(f.Tags),
			Dependencies:  dedupePreserveOrder(f.Dependencies),
		}
		tail := append([]Step(nil), p.Steps[insertAt:]...)
		p.Steps = append(append(p.Steps[:insertAt], step), tail...)

		if hasCycle(p) {
			return errCycle(findCycle(p))
		}
		return nil
	})
	if err != nil {
		return Plan{}, "", err
	}
	return plan, newID, nil
}

// Remove deletes the given steps, scrubbing them from every remaining
// step's dependency list. Fails with KindDependentSteps if any remaining
// step depends on one being removed.
func (s *Store) Remove(planID string, expectedVersion int, stepIDs []string) (Plan, error) {
	return s.commit(planID, expectedVersion, "remove", func(p *Plan) error {
		removeSet := make(map[string]bool, len(stepIDs))
		for _, id := range stepIDs {
			if !p.hasStep(id) {
				return errNotFound("step", id)
			}
			removeSet[id] = true
		}

		var dependents []string
		for _, step := range p.Steps {
			if removeSet[step.ID] {
				continue
			}
			for _, dep := range step.Dependencies {
				if removeSet[dep] {
					dependents = append(dependents, step.ID)
					break
				}
			}
		}
		if len(dependents) > 0 {
			return errDependentSteps(dependents)
		}

		newSteps := make([]Step, 0, len(p.Steps)-len(stepIDs))
		for _, step := range p.Steps {
			if removeSet[step.ID] {
				continue
			}
			step.Dependencies = subtract(step.Dependencies, stepIDs)
			newSteps = append(newSteps, step)
		}
		p.Steps = newSteps
		return nil
	})
}

// Reorder reindexes the plan's step sequence to `order`, a permutation of
// the current step id set. Fails with KindConflictStep if the new order
// would place a step before one of its (present) dependencies.
func (s *Store) Reorder(planID string, expectedVersion int, order []string) (Plan, error) {
	return s.commit(planID, expectedVersion, "reorder", func(p *Plan) error {
		if len(order) != len(p.Steps) {
			return newError(KindOrderLengthMismatch, map[string]any{
				"got": len(order), "want": len(p.Steps),
			})
		}
		position := make(map[string]int, len(order))
		for i, id := range order {
			if !p.hasStep(id) {
				return errNotFound("step", id)
			}
			if _, dup := position[id]; dup {
				return newError(KindOrderLengthMismatch, map[string]any{"duplicate": id})
			}
			position[id] = i
		}

		for _, step := range p.Steps {
			for _, dep := range step.Dependencies {
				if !p.hasStep(dep) {
					continue
				}
				if position[dep] > position[step.ID] {
					return errConflictStep(step.ID)
				}
			}
		}

		newSteps := make([]Step, len(order))
		for i, id := range order {
			newSteps[i] = *p.step(id)
		}
		p.Steps = newSteps
		return nil
	})
}

// depOp identifies the dependency-list mutation kind for depMutate.
type depOp int

const (
	DepSetOp depOp = iota
	DepAddOp
	DepRemoveOp
)

func (s *Store) depMutate(planID string, expectedVersion int, op depOp, eventType, stepID string, deps []string) (Plan, error) {
	return s.commit(planID, expectedVersion, eventType, func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		switch op {
		case DepSetOp:
			step.Dependencies = dedupePreserveOrder(deps)
		case DepAddOp:
			step.Dependencies = appendDedupe(step.Dependencies, deps)
		case DepRemoveOp:
			step.Dependencies = subtract(step.Dependencies, deps)
		}
		// Missing dep targets are tolerated; only cycles trip
		// the fence.
		if hasCycle(p) {
			return errCycle(findCycle(p))
		}
		return nil
	})
}

func (s *Store) DepSet(planID string, expectedVersion int, stepID string, deps []string) (Plan, error) {
	return s.depMutate(planID, expectedVersion, DepSetOp, "dep_set", stepID, deps)
}

func (s *Store) DepAdd(planID string, expectedVersion int, stepID string, deps []string) (Plan, error) {
	return s.depMutate(planID, expectedVersion, DepAddOp, "dep_add", stepID, deps)
}

func (s *Store) DepRemove(planID string, expectedVersion int, stepID string, deps []string) (Plan, error) {
	return s.depMutate(planID, expectedVersion, DepRemoveOp, "dep_remove", stepID, deps)
}

// splitChildSpec parses "title::description" into its parts.
func splitChildSpec(spec string) (title, description string) {
	parts := strings.SplitN(spec, "::", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// Split breaks a step into child steps inserted immediately after it. If
// keepParent is set the original becomes a virtual grouping node;
// otherwise it is removed (children inherit no dependencies automatically).
func (s *Store) Split(planID string, expectedVersion int, stepID string, children []string, keepParent bool) (Plan, []string, error) {
	if len(children) == 0 {
		return Plan{}, nil, newError(KindMissingArgument, map[string]any{"field": "children"})
	}
	var childIDs []string
	plan, err := s.commit(planID, expectedVersion, "split", func(p *Plan) error {
		idx, ok := p.stepIndex(stepID)
		if !ok {
			return errNotFound("step", stepID)
		}
		original := p.Steps[idx]

		newChildren := make([]Step, 0, len(children))
		for _, spec := range children {
			title, desc := splitChildSpec(spec)
			childID := p.mintStepID()
			childIDs = append(childIDs, childID)
			newChildren = append(newChildren, Step{
				ID:          childID,
				Title:       title,
				Description: desc,
				Status:      StatusPending,
				ParentID:    original.ID,
			})
		}

		tail := append([]Step(nil), p.Steps[idx+1:]...)
		p.Steps = append(append(p.Steps[:idx+1], newChildren...), tail...)

		if keepParent {
			p.Steps[idx].VirtualParent = true
			p.Steps[idx].Status = StatusPending
		} else {
			p.Steps = append(p.Steps[:idx], p.Steps[idx+1:]...)
		}
		return nil
	})
	if err != nil {
		return Plan{}, nil, err
	}
	return plan, childIDs, nil
}

// MergeFields carries the optional fields for the merged step; Title
// defaults to "Merged step" when empty.
type MergeFields struct {
	Title       string
	Description string
	Priority    int
	Owner       string
	Acceptance  string
}

// Merge combines two or more steps into one, unioning their dependencies,
// tags, artifacts, and links. Notes and checklists are intentionally
// dropped.
func (s *Store) Merge(planID string, expectedVersion int, stepIDs []string, f MergeFields) (Plan, string, error) {
	if len(stepIDs) < 2 {
		return Plan{}, "", newError(KindNeedAtLeastTwo, nil)
	}
	var newID string
	plan, err := s.commit(planID, expectedVersion, "merge", func(p *Plan) error {
		removeSet := make(map[string]bool, len(stepIDs))
		firstIdx := -1
		var deps, tags, artifacts, links []string
		for _, id := range stepIDs {
			idx, ok := p.stepIndex(id)
			if !ok {
				return errNotFound("step", id)
			}
			if firstIdx == -1 || idx < firstIdx {
				firstIdx = idx
			}
			removeSet[id] = true
			src := p.Steps[idx]
			deps = append(deps, src.Dependencies...)
			tags = append(tags, src.Tags...)
			artifacts = append(artifacts, src.Artifacts...)
			links = append(links, src.Links...)
		}

		title := f.Title
		if title == "" {
			title = "Merged step"
		}
		newID = p.mintStepID()
		merged := Step{
			ID:           newID,
			Title:        title,
			Description:  f.Description,
			Priority:     f.Priority,
			Owner:        f.Owner,
			Acceptance:   f.Acceptance,
			Status:       StatusPending,
			Dependencies: unionSorted(deps),
			Tags:         unionSorted(tags),
			Artifacts:    unionSorted(artifacts),
			Links:        unionSorted(links),
		}

		newSteps := make([]Step, 0, len(p.Steps)-len(stepIDs)+1)
		inserted := false
		for i, step := range p.Steps {
			if removeSet[step.ID] {
				if i == firstIdx && !inserted {
					newSteps = append(newSteps, merged)
					inserted = true
				}
				continue
			}
			newSteps = append(newSteps, step)
		}
		if !inserted {
			newSteps = append(newSteps, merged)
		}
		p.Steps = newSteps
		return nil
	})
	if err != nil {
		return Plan{}, "", err
	}
	return plan, newID, nil
}

// Mark sets a step's status, refusing to mark "done" while a dependency is
// unsatisfied.
func (s *Store) Mark(planID string, expectedVersion int, stepID string, status Status, reason, artifact string) (Plan, error) {
	return s.commit(planID, expectedVersion, "mark", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		if status == StatusDone {
			var blockedBy []string
			for _, dep := range step.Dependencies {
				depStep := p.step(dep)
				if depStep == nil {
					continue
				}
				if depStep.Status != StatusDone {
					blockedBy = append(blockedBy, dep)
				}
			}
			if len(blockedBy) > 0 {
				return errBlockedBy(blockedBy)
			}
		}
		step.Status = status
		if reason != "" {
			step.Notes = append(step.Notes, StepNote{
				ID:        ids.RandomID("note_"),
				Text:      reason,
				Timestamp: ids.NowISO8601(),
			})
		}
		if artifact != "" {
			step.Artifacts = appendDedupe(step.Artifacts, []string{artifact})
		}
		return nil
	})
}

// ChecklistOp identifies which checklist mutation Checklist performs.
type ChecklistOp string

const (
	ChecklistAdd    ChecklistOp = "add"
	ChecklistRemove ChecklistOp = "remove"
	ChecklistToggle ChecklistOp = "toggle"
	ChecklistRename ChecklistOp = "rename"
)

// Checklist mutates a step's checklist. add mints an id and appends; remove
// drops an item (silent if missing); toggle flips done (not_found if
// missing); rename updates text (not_found if missing).
func (s *Store) Checklist(planID string, expectedVersion int, stepID string, op ChecklistOp, itemID, text string) (Plan, error) {
	return s.commit(planID, expectedVersion, "checklist", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		now := ids.NowISO8601()
		switch op {
		case ChecklistAdd:
			if text == "" {
				return newError(KindMissingArgument, map[string]any{"field": "text"})
			}
			step.Checklist = append(step.Checklist, ChecklistItem{
				ID: ids.RandomID("chk_"), Text: text, CreatedAt: now, UpdatedAt: now,
			})
		case ChecklistRemove:
			out := step.Checklist[:0]
			for _, it := range step.Checklist {
				if it.ID != itemID {
					out = append(out, it)
				}
			}
			step.Checklist = out
		case ChecklistToggle:
			idx := -1
			for i, it := range step.Checklist {
				if it.ID == itemID {
					idx = i
					break
				}
			}
			if idx == -1 {
				return errNotFound("checklist_item", itemID)
			}
			step.Checklist[idx].Done = !step.Checklist[idx].Done
			step.Checklist[idx].UpdatedAt = now
		case ChecklistRename:
			idx := -1
			for i, it := range step.Checklist {
				if it.ID == itemID {
					idx = i
					break
				}
			}
			if idx == -1 {
				return errNotFound("checklist_item", itemID)
			}
			step.Checklist[idx].Text = text
			step.Checklist[idx].UpdatedAt = now
		default:
			return newError(KindUnknownOp, map[string]any{"op": string(op)})
		}
		return nil
	})
}

// Annotate appends a note and set-unions/set-minuses artifacts and links.
func (s *Store) Annotate(planID string, expectedVersion int, stepID, note string, artifactsAdd, artifactsRemove, linksAdd []string) (Plan, error) {
	return s.commit(planID, expectedVersion, "annotate", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		if note != "" {
			step.Notes = append(step.Notes, StepNote{
				ID: ids.RandomID("note_"), Text: note, Timestamp: ids.NowISO8601(),
			})
		}
		if len(artifactsAdd) > 0 {
			step.Artifacts = appendDedupe(step.Artifacts, artifactsAdd)
		}
		if len(artifactsRemove) > 0 {
			step.Artifacts = subtract(step.Artifacts, artifactsRemove)
		}
		if len(linksAdd) > 0 {
			step.Links = appendDedupe(step.Links, linksAdd)
		}
		return nil
	})
}

// Block marks a step blocked with a reason. It does not affect Status.
func (s *Store) Block(planID string, expectedVersion int, stepID, reason string) (Plan, error) {
	return s.commit(planID, expectedVersion, "block", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		step.Blocked = true
		step.BlockReason = reason
		return nil
	})
}

// Unblock clears a step's blocked flag and reason.
func (s *Store) Unblock(planID string, expectedVersion int, stepID string) (Plan, error) {
	return s.commit(planID, expectedVersion, "unblock", func(p *Plan) error {
		step := p.step(stepID)
		if step == nil {
			return errNotFound("step", stepID)
		}
		step.Blocked = false
		step.BlockReason = ""
		return nil
	})
}

// Snapshot deep-copies the plan into a new PlanSnapshot. No version fence,
// no undo push, no version bump.
func (s *Store) Snapshot(planID, reason string) (PlanSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return PlanSnapshot{}, err
	}
	plan := rec.Plan.Clone()
	fingerprint, err := canonicalize.Hash(plan)
	if err != nil {
		return PlanSnapshot{}, fmt.Errorf("planstore: snapshot fingerprint: %w", err)
	}
	snap := PlanSnapshot{
		SnapshotID:  ids.RandomID("snap_"),
		Reason:      reason,
		CreatedAt:   ids.NowISO8601(),
		Plan:        plan,
		Fingerprint: fingerprint,
	}
	rec.Snapshots = append(rec.Snapshots, snap)
	return snap, nil
}

// History returns events in reverse chronological order, truncated to
// limit (0 or unset returns all).
func (s *Store) History(planID string, limit int) ([]LogEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return nil, err
	}
	out := make([]LogEvent, len(rec.Events))
	for i, e := range rec.Events {
		out[len(rec.Events)-1-i] = e
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Undo pops up to `steps` entries from the undo stack, pushing the current
// plan to the redo stack each time. Returns the applied count, which may be
// less than requested if the stack is exhausted.
func (s *Store) Undo(planID string, steps int) (Plan, int, error) {
	if steps <= 0 {
		steps = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return Plan{}, 0, err
	}
	applied := 0
	for i := 0; i < steps && len(rec.UndoStack) > 0; i++ {
		popped := rec.UndoStack[len(rec.UndoStack)-1]
		rec.UndoStack = rec.UndoStack[:len(rec.UndoStack)-1]
		rec.RedoStack = append(rec.RedoStack, rec.Plan.Clone())
		rec.Plan = popped
		applied++
	}
	return rec.Plan.Clone(), applied, nil
}

// Redo is the mirror of Undo.
func (s *Store) Redo(planID string, steps int) (Plan, int, error) {
	if steps <= 0 {
		steps = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return Plan{}, 0, err
	}
	applied := 0
	for i := 0; i < steps && len(rec.RedoStack) > 0; i++ {
		popped := rec.RedoStack[len(rec.RedoStack)-1]
		rec.RedoStack = rec.RedoStack[:len(rec.RedoStack)-1]
		rec.UndoStack = append(rec.UndoStack, rec.Plan.Clone())
		rec.Plan = popped
		applied++
	}
	return rec.Plan.Clone(), applied, nil
}

// signalTypes is the closed set Signal's type field is restricted to.
var signalTypes = map[string]bool{
	"START": true, "COMPLETE": true, "BLOCKED": true, "SWITCH": true, "REPLAN_REQUEST": true,
}

// Signal appends an advisory, out-of-band notification. No version bump, no
// undo push.
func (s *Store) Signal(planID, sigType, stepID, note, artifact, reason string) error {
	if !signalTypes[sigType] {
		return newError("invalid_signal_type", map[string]any{"type": sigType})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return err
	}
	rec.Signals = append(rec.Signals, SignalRecord{
		Timestamp: ids.NowISO8601(),
		Type:      sigType,
		StepID:    stepID,
		Note:      note,
		Artifact:  artifact,
		Reason:    reason,
	})
	return nil
}

// GetPlan returns a deep copy of the current plan value.
func (s *Store) GetPlan(planID string) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return Plan{}, err
	}
	return rec.Plan.Clone(), nil
}

// Signals returns the plan's advisory signal log.
func (s *Store) Signals(planID string) ([]SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return nil, err
	}
	return append([]SignalRecord(nil), rec.Signals...), nil
}

// Snapshots returns the plan's accumulated snapshot list.
func (s *Store) Snapshots(planID string) ([]PlanSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getRecord(planID)
	if err != nil {
		return nil, err
	}
	return append([]PlanSnapshot(nil), rec.Snapshots...), nil
}

func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("Store{plans=%d}", len(s.plans))
}
