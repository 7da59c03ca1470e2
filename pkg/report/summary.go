package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/agentkit/plankernel/pkg/ids"
	"github.com/agentkit/plankernel/pkg/planstore"
)

// Summary renders a plain-text roll-up of a plan's steps and its event
// history: counts by status, humanized timestamps, and a per-step line.
func Summary(p *planstore.Plan, events []planstore.LogEvent) string {
	var b strings.Builder

	counts := map[planstore.Status]int{}
	for _, s := range p.Steps {
		counts[s.Status]++
	}

	fmt.Fprintf(&b, "Plan %q (%s)\n", p.Title, p.ID)
	fmt.Fprintf(&b, "Steps: %s total, %d done, %d running, %d pending, %d blocked\n",
		humanize.Comma(int64(len(p.Steps))),
		counts[planstore.StatusDone], counts[planstore.StatusRunning],
		counts[planstore.StatusPending], counts[planstore.StatusBlocked])

	if updated, err := ids.ParseISO8601(p.UpdatedAt); err == nil {
		fmt.Fprintf(&b, "Last updated %s\n", humanize.Time(updated))
	}

	b.WriteString("\nSteps:\n")
	for _, s := range p.Steps {
		fmt.Fprintf(&b, "  [%s] %-8s %s\n", s.ID, s.Status, s.Title)
	}

	if len(events) > 0 {
		fmt.Fprintf(&b, "\nHistory (%s events):\n", humanize.Comma(int64(len(events))))
		for _, e := range events {
			fmt.Fprintf(&b, "  v%d %s %s\n", e.Version, e.Type, e.Timestamp)
		}
	}

	return b.String()
}

// elapsedSince renders the time since start as a humanized relative
// duration such as "3 minutes ago".
func elapsedSince(start time.Time) string {
	return humanize.RelTime(start, time.Now(), "ago", "from now")
}
