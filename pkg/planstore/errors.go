package planstore

import "fmt"

// Kind is the structured failure discriminant carried in every domain
// error. Exit code 2 in the CLI envelope maps 1:1 to a non-empty Kind.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindVersionMismatch     Kind = "version_mismatch"
	KindCycle               Kind = "cycle"
	KindDependentSteps      Kind = "dependent_steps"
	KindConflictStep        Kind = "conflict_step"
	KindBlockedBy           Kind = "blocked_by"
	KindOrderLengthMismatch Kind = "order_length_mismatch"
	KindUnknownOp           Kind = "unknown_op"
	KindNeedAtLeastTwo      Kind = "need_at_least_two"
	KindMissingArgument     Kind = "missing_argument"
)

// Error is the structured domain failure returned by every Plan Store
// operation that can fail post-validation. Detail carries the kind-specific
// payload (e.g. {current_version, expected_version} for KindVersionMismatch)
// using the snake_case field names the external JSON envelope requires.
type Error struct {
	Kind   Kind
	Detail map[string]any
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("planstore: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("planstore: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, detail map[string]any) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func errNotFound(what, id string) *Error {
	return newError(KindNotFound, map[string]any{"entity": what, "id": id})
}

func errVersionMismatch(planID string, current, expected int) *Error {
	return newError(KindVersionMismatch, map[string]any{
		"plan_id":          planID,
		"current_version":  current,
		"expected_version": expected,
	})
}

func errCycle(cycle []string) *Error {
	return newError(KindCycle, map[string]any{"cycle": cycle})
}

func errDependentSteps(ids []string) *Error {
	return newError(KindDependentSteps, map[string]any{"dependent_steps": ids})
}

func errConflictStep(id string) *Error {
	return newError(KindConflictStep, map[string]any{"conflict_step": id})
}

func errBlockedBy(ids []string) *Error {
	return newError(KindBlockedBy, map[string]any{"blocked_by": ids})
}
