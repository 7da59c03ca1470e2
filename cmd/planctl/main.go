// Command planctl is a thin CLI adapter over the Plan Store. It encodes no
// domain logic of its own: each subcommand parses its flags and calls
// straight through to a planstore.Store method, then renders the
// {"ok":true,"data":...} / {"ok":false,"error":{...}} envelope.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentkit/plankernel/pkg/observability"
	"github.com/agentkit/plankernel/pkg/planstore"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// store is process-lifetime state; planctl is meant for scripted,
// single-invocation use in tests and local development, not a long-lived
// server.
var store = newStore()

func newStore() *planstore.Store {
	metrics, err := observability.NewPlanMetrics()
	if err != nil {
		return planstore.NewStore()
	}
	return planstore.NewStore(planstore.WithMetrics(metrics))
}

// Run is the CLI entrypoint, separated from main for testability.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, "usage: planctl <command> [flags]")
		return 1
	}

	switch args[1] {
	case "create-plan":
		return runCreatePlan(args[2:], stdout, stderr)
	case "add":
		return runAdd(args[2:], stdout, stderr)
	case "update":
		return runUpdate(args[2:], stdout, stderr)
	case "remove":
		return runRemove(args[2:], stdout, stderr)
	case "reorder":
		return runReorder(args[2:], stdout, stderr)
	case "dep-set", "dep-add", "dep-remove":
		return runDep(args[1], args[2:], stdout, stderr)
	case "mark":
		return runMark(args[2:], stdout, stderr)
	case "undo":
		return runUndo(args[2:], stdout, stderr)
	case "redo":
		return runRedo(args[2:], stdout, stderr)
	case "brief":
		return runBrief(args[2:], stdout, stderr)
	case "history":
		return runHistory(args[2:], stdout, stderr)
	case "split":
		return runSplit(args[2:], stdout, stderr)
	case "merge":
		return runMerge(args[2:], stdout, stderr)
	case "checklist":
		return runChecklist(args[2:], stdout, stderr)
	case "annotate":
		return runAnnotate(args[2:], stdout, stderr)
	case "block":
		return runBlock(args[2:], stdout, stderr, true)
	case "unblock":
		return runBlock(args[2:], stdout, stderr, false)
	case "snapshot":
		return runSnapshot(args[2:], stdout, stderr)
	case "signal":
		return runSignal(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "planctl <command> [flags]")
	fmt.Fprintln(w, "commands: create-plan, add, update, remove, reorder, dep-set, dep-add, dep-remove, mark, undo, redo, brief, history, split, merge, checklist, annotate, block, unblock, snapshot, signal")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// envelope emits the success/failure JSON shape and returns the exit
// code: 0 on success, 2 on a structured domain failure.
func envelope(w io.Writer, data any, err error) int {
	if err != nil {
		if derr, ok := err.(*planstore.Error); ok {
			body := map[string]any{"ok": false, "error": mergeKind(derr)}
			enc, _ := json.Marshal(body)
			fmt.Fprintln(w, string(enc))
			return 2
		}
		fmt.Fprintf(w, `{"ok":false,"error":{"kind":"internal","message":%q}}`+"\n", err.Error())
		return 2
	}
	body := map[string]any{"ok": true, "data": data}
	enc, _ := json.Marshal(body)
	fmt.Fprintln(w, string(enc))
	return 0
}

func mergeKind(e *planstore.Error) map[string]any {
	out := map[string]any{"kind": string(e.Kind)}
	for k, v := range e.Detail {
		out[k] = v
	}
	return out
}

func runCreatePlan(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("create-plan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	goal := fs.String("goal", "", "plan goal")
	title := fs.String("title", "", "plan title")
	planID := fs.String("plan", "", "caller-supplied plan id")
	mode := fs.String("mode", "full", "minimal|full")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, err := store.CreatePlan(*goal, *title, *planID, planstore.Mode(*mode))
	return envelope(stdout, p, err)
}

func runAdd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	title := fs.String("title", "", "step title")
	description := fs.String("description", "", "step description")
	owner := fs.String("owner", "", "step owner")
	acceptance := fs.String("acceptance", "", "acceptance criteria")
	priority := fs.Int("priority", 0, "step priority")
	depends := fs.String("depends", "", "comma-separated dependency ids")
	tags := fs.String("tags", "", "comma-separated tags")
	after := fs.String("after", "", "insert after this step id")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, id, err := store.Add(*planID, *expected, *title, planstore.AddFields{
		Description: *description, Owner: *owner, Acceptance: *acceptance,
		Priority: *priority, Dependencies: splitCSV(*depends), Tags: splitCSV(*tags),
	}, *after)
	if err != nil {
		return envelope(stdout, nil, err)
	}
	return envelope(stdout, map[string]any{"plan": p, "step_id": id}, nil)
}

func runUpdate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	fields := planstore.UpdateFields{}
	if *title != "" {
		fields.Title = title
	}
	if *description != "" {
		fields.Description = description
	}
	p, err := store.Update(*planID, *expected, *step, fields)
	return envelope(stdout, p, err)
}

func runRemove(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	steps := fs.String("steps", "", "comma-separated step ids")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, err := store.Remove(*planID, *expected, splitCSV(*steps))
	return envelope(stdout, p, err)
}

func runReorder(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reorder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	order := fs.String("order", "", "comma-separated step id order")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, err := store.Reorder(*planID, *expected, splitCSV(*order))
	return envelope(stdout, p, err)
}

func runDep(cmd string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	deps := fs.String("deps", "", "comma-separated dependency ids")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	var p planstore.Plan
	var err error
	switch cmd {
	case "dep-set":
		p, err = store.DepSet(*planID, *expected, *step, splitCSV(*deps))
	case "dep-add":
		p, err = store.DepAdd(*planID, *expected, *step, splitCSV(*deps))
	case "dep-remove":
		p, err = store.DepRemove(*planID, *expected, *step, splitCSV(*deps))
	}
	return envelope(stdout, p, err)
}

func runMark(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	status := fs.String("status", "", "pending|running|done|blocked")
	reason := fs.String("reason", "", "note text")
	artifact := fs.String("artifact", "", "artifact reference")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, err := store.Mark(*planID, *expected, *step, planstore.Status(*status), *reason, *artifact)
	return envelope(stdout, p, err)
}

func runUndo(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("undo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	steps := fs.Int("steps", 1, "number of steps to undo")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, applied, err := store.Undo(*planID, *steps)
	if err != nil {
		return envelope(stdout, nil, err)
	}
	return envelope(stdout, map[string]any{"plan": p, "applied": applied}, nil)
}

func runRedo(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("redo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	steps := fs.Int("steps", 1, "number of steps to redo")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, applied, err := store.Redo(*planID, *steps)
	if err != nil {
		return envelope(stdout, nil, err)
	}
	return envelope(stdout, map[string]any{"plan": p, "applied": applied}, nil)
}

func runBrief(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("brief", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	kDone := fs.Int("k-done", 3, "max done ids")
	kNext := fs.Int("k-next", 3, "max next ids")
	tokenCap := fs.Int("token-cap", 200, "char-budget proxy for tokens")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	b, err := store.Brief(*planID, planstore.BriefOptions{KDone: *kDone, KNext: *kNext, TokenCap: *tokenCap})
	return envelope(stdout, b, err)
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	limit := fs.Int("limit", 0, "max events (0 = all)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	events, err := store.History(*planID, *limit)
	return envelope(stdout, events, err)
}

// childFlags collects repeatable --child "title::desc" flags.
type childFlags []string

func (c *childFlags) String() string { return strings.Join(*c, ",") }
func (c *childFlags) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func runSplit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id to split")
	keepParent := fs.Bool("keep-parent", false, "retain the original step as a virtual parent")
	var children childFlags
	fs.Var(&children, "child", `child spec "title::description", repeatable`)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, ids, err := store.Split(*planID, *expected, *step, children, *keepParent)
	if err != nil {
		return envelope(stdout, nil, err)
	}
	return envelope(stdout, map[string]any{"plan": p, "child_step_ids": ids}, nil)
}

func runMerge(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	steps := fs.String("steps", "", "comma-separated step ids to merge")
	title := fs.String("title", "", "merged step title")
	description := fs.String("description", "", "merged step description")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, id, err := store.Merge(*planID, *expected, splitCSV(*steps), planstore.MergeFields{
		Title: *title, Description: *description,
	})
	if err != nil {
		return envelope(stdout, nil, err)
	}
	return envelope(stdout, map[string]any{"plan": p, "step_id": id}, nil)
}

func runChecklist(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("checklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	op := fs.String("op", "", "add|remove|toggle|rename")
	item := fs.String("item", "", "checklist item id")
	text := fs.String("text", "", "checklist item text")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	var checklistOp planstore.ChecklistOp
	switch *op {
	case "add":
		checklistOp = planstore.ChecklistAdd
	case "remove":
		checklistOp = planstore.ChecklistRemove
	case "toggle":
		checklistOp = planstore.ChecklistToggle
	case "rename":
		checklistOp = planstore.ChecklistRename
	default:
		return envelope(stdout, nil, &planstore.Error{Kind: planstore.KindUnknownOp, Detail: map[string]any{"op": *op}})
	}
	p, err := store.Checklist(*planID, *expected, *step, checklistOp, *item, *text)
	return envelope(stdout, p, err)
}

func runAnnotate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	note := fs.String("note", "", "note text")
	artifactsAdd := fs.String("artifacts-add", "", "comma-separated artifacts to add")
	artifactsRemove := fs.String("artifacts-remove", "", "comma-separated artifacts to remove")
	linksAdd := fs.String("links-add", "", "comma-separated links to add")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	p, err := store.Annotate(*planID, *expected, *step, *note,
		splitCSV(*artifactsAdd), splitCSV(*artifactsRemove), splitCSV(*linksAdd))
	return envelope(stdout, p, err)
}

func runBlock(args []string, stdout, stderr io.Writer, block bool) int {
	name := "unblock"
	if block {
		name = "block"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	expected := fs.Int("expected-version", 0, "expected version")
	step := fs.String("step", "", "step id")
	reason := fs.String("reason", "", "block reason")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	var p planstore.Plan
	var err error
	if block {
		p, err = store.Block(*planID, *expected, *step, *reason)
	} else {
		p, err = store.Unblock(*planID, *expected, *step)
	}
	return envelope(stdout, p, err)
}

func runSnapshot(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	reason := fs.String("reason", "", "snapshot reason")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	snap, err := store.Snapshot(*planID, *reason)
	return envelope(stdout, snap, err)
}

func runSignal(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("signal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planID := fs.String("plan", "", "plan id")
	sigType := fs.String("type", "", "START|COMPLETE|BLOCKED|SWITCH|REPLAN_REQUEST")
	step := fs.String("step", "", "step id")
	note := fs.String("note", "", "note text")
	artifact := fs.String("artifact", "", "artifact reference")
	reason := fs.String("reason", "", "reason text")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	err := store.Signal(*planID, *sigType, *step, *note, *artifact, *reason)
	return envelope(stdout, map[string]any{"plan_id": *planID}, err)
}
