// Package risk provides pure derivations over a plan's step data: a risk
// level per step and whether it needs human review before proceeding.
package risk

import (
	"fmt"

	"github.com/agentkit/plankernel/pkg/planstore"
)

// Level categorizes a step's risk, same naming as the kernel's
// risk-weighted budget enforcer.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Assessment is one step's derived risk posture.
type Assessment struct {
	StepID     string `json:"step_id"`
	Risk       Level  `json:"risk"`
	NeedReview bool   `json:"need_review"`
	Reason     string `json:"reason"`
}

// Assess assigns each step a risk level from its priority (>=3 high, ==2
// medium, else low) and flags it for review when risk is not low or the
// step is blocked.
func Assess(p *planstore.Plan) []Assessment {
	out := make([]Assessment, 0, len(p.Steps))
	for _, step := range p.Steps {
		level := levelForPriority(step.Priority)
		needReview := level != Low || step.Blocked
		out = append(out, Assessment{
			StepID:     step.ID,
			Risk:       level,
			NeedReview: needReview,
			Reason:     reviewReason(level, step),
		})
	}
	return out
}

func levelForPriority(priority int) Level {
	switch {
	case priority >= 3:
		return High
	case priority == 2:
		return Medium
	default:
		return Low
	}
}

func reviewReason(level Level, step planstore.Step) string {
	switch {
	case step.Blocked && level != Low:
		return fmt.Sprintf("priority %d (risk=%s) and step is blocked: %s", step.Priority, level, step.BlockReason)
	case step.Blocked:
		return fmt.Sprintf("step is blocked: %s", step.BlockReason)
	case level != Low:
		return fmt.Sprintf("priority %d maps to risk=%s", step.Priority, level)
	default:
		return ""
	}
}
