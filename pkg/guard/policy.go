// Package guard evaluates named CEL policies against fs/shell/net
// operations, producing an allow/deny/require_snapshot verdict.
package guard

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// Verdict is the outcome of evaluating a policy document against an input.
type Verdict string

const (
	VerdictAllow          Verdict = "allow"
	VerdictDeny           Verdict = "deny"
	VerdictRequireSnapshot Verdict = "require_snapshot"
)

// Rule is one named CEL policy: Expr must evaluate to a bool over `input`.
// When it evaluates true, Then is the verdict; rules are tried in document
// order and the first match wins. A policy with no matching rule allows by
// default.
type Rule struct {
	Name string  `yaml:"name"`
	Expr string  `yaml:"expr"`
	Then Verdict `yaml:"then"`
}

// Policy is a named, ordered rule table for one guard kind (fs/shell/net).
type Policy struct {
	Kind  string `yaml:"kind"`
	Rules []Rule `yaml:"rules"`
}

// LoadPolicyYAML parses a guard policy document.
func LoadPolicyYAML(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("guard: parse policy: %w", err)
	}
	return &p, nil
}

// Decision is the result of evaluating a Policy against an input.
type Decision struct {
	Allowed         bool    `json:"allowed"`
	RequireSnapshot bool    `json:"require_snapshot"`
	Reason          string  `json:"reason"`
	Rule            string  `json:"rule,omitempty"`
}

// compiledRule pairs a Rule with its compiled CEL program.
type compiledRule struct {
	Rule
	program cel.Program
}

// Evaluator compiles a Policy's rules once at construction and evaluates
// them per call, grounded on the kernel's celdp.Evaluator compile-once
// pattern.
type Evaluator struct {
	env   *cel.Env
	rules []compiledRule
	kind  string
}

// NewEvaluator compiles every rule in p against an `input` map[string]any
// variable.
func NewEvaluator(p *Policy) (*Evaluator, error) {
	env, err := cel.NewEnv(cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("guard: new cel env: %w", err)
	}

	e := &Evaluator{env: env, kind: p.Kind}
	for _, r := range p.Rules {
		ast, issues := env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("guard: compile rule %q: %w", r.Name, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("guard: program rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, compiledRule{Rule: r, program: prg})
	}
	return e, nil
}

// Evaluate runs the rule table against input in order, returning the first
// matching rule's verdict. No match allows by default.
func (e *Evaluator) Evaluate(input map[string]any) (Decision, error) {
	for _, r := range e.rules {
		out, _, err := r.program.Eval(map[string]any{"input": input})
		if err != nil {
			return Decision{}, fmt.Errorf("guard: eval rule %q: %w", r.Name, err)
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}
		switch r.Then {
		case VerdictDeny:
			return Decision{Allowed: false, Reason: fmt.Sprintf("denied by rule %q", r.Name), Rule: r.Name}, nil
		case VerdictRequireSnapshot:
			return Decision{Allowed: true, RequireSnapshot: true, Reason: fmt.Sprintf("rule %q requires a snapshot first", r.Name), Rule: r.Name}, nil
		default:
			return Decision{Allowed: true, Reason: fmt.Sprintf("allowed by rule %q", r.Name), Rule: r.Name}, nil
		}
	}
	return Decision{Allowed: true, Reason: "no rule matched, default allow"}, nil
}

// FSGuard evaluates a filesystem read/write against the compiled fs policy.
func (e *Evaluator) FSGuard(op, path string, size int64) (Decision, error) {
	return e.Evaluate(map[string]any{"op": op, "path": path, "size": size})
}

// ShellGuard evaluates a shell command against the compiled shell policy.
func (e *Evaluator) ShellGuard(command string) (Decision, error) {
	return e.Evaluate(map[string]any{"command": command})
}

// NetGuard evaluates an outbound host against the compiled net policy.
func (e *Evaluator) NetGuard(host string) (Decision, error) {
	return e.Evaluate(map[string]any{"host": host})
}
