package planstore

import (
	"fmt"
	"strings"
)

// BriefResult is the deterministic summarization of a plan's current state,
// bounded by a character-budget proxy for a downstream token cap.
type BriefResult struct {
	MICText     string   `json:"mic_text"`
	NowStepID   string   `json:"now_step_id,omitempty"`
	DoneStepIDs []string `json:"done_step_ids"`
	NextStepIDs []string `json:"next_step_ids"`
}

const (
	defaultKDone    = 3
	defaultKNext    = 3
	defaultTokenCap = 200
	charsPerToken   = 4
)

// BriefOptions configures Brief; zero values fall back to package defaults
// (k_done=3, k_next=3, token_cap=200).
type BriefOptions struct {
	KDone    int
	KNext    int
	TokenCap int
}

// Brief renders the plan's "Most Important Context" summary: what's
// blocked, what's recently done, what's running or up next, and the
// acceptance criteria of the step in focus.
func Brief(p *Plan, opts BriefOptions) BriefResult {
	kDone := opts.KDone
	if kDone <= 0 {
		kDone = defaultKDone
	}
	kNext := opts.KNext
	if kNext <= 0 {
		kNext = defaultKNext
	}
	tokenCap := opts.TokenCap
	if tokenCap <= 0 {
		tokenCap = defaultTokenCap
	}

	var blockers []string
	for _, s := range p.Steps {
		if s.Status == StatusBlocked || s.Blocked {
			blockers = append(blockers, s.ID)
		}
	}

	var done []string
	for _, s := range p.Steps {
		if s.Status == StatusDone {
			done = append(done, s.ID)
		}
	}
	if len(done) > kDone {
		done = done[len(done)-kDone:]
	}

	nowIdx := -1
	for i, s := range p.Steps {
		if s.Status == StatusRunning {
			nowIdx = i
			break
		}
	}
	if nowIdx == -1 {
		for i, s := range p.Steps {
			if s.Status == StatusPending {
				nowIdx = i
				break
			}
		}
	}

	var next []string
	if nowIdx != -1 {
		for i := nowIdx + 1; i < len(p.Steps) && len(next) < kNext; i++ {
			if p.Steps[i].Status == StatusPending {
				next = append(next, p.Steps[i].ID)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	if nowIdx == -1 {
		b.WriteString("Now: <none>\n")
	} else {
		now := p.Steps[nowIdx]
		fmt.Fprintf(&b, "Now: [%s] %s\n", now.ID, now.Title)
	}
	fmt.Fprintf(&b, "Done: %s\n", strings.Join(done, ","))
	fmt.Fprintf(&b, "Next: %s\n", strings.Join(next, ","))
	fmt.Fprintf(&b, "Blockers: %s\n", strings.Join(blockers, ","))
	if nowIdx != -1 {
		fmt.Fprintf(&b, "Acceptance: %s\n", p.Steps[nowIdx].Acceptance)
	}

	text := b.String()
	maxChars := tokenCap * charsPerToken
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	result := BriefResult{
		MICText:     text,
		DoneStepIDs: done,
		NextStepIDs: next,
	}
	if nowIdx != -1 {
		result.NowStepID = p.Steps[nowIdx].ID
	}
	return result
}

// Brief is the Store-bound convenience wrapper most callers use.
func (s *Store) Brief(planID string, opts BriefOptions) (BriefResult, error) {
	plan, err := s.GetPlan(planID)
	if err != nil {
		return BriefResult{}, err
	}
	return Brief(&plan, opts), nil
}
