// Package context holds the Context Store: a per-task scoped bag of
// captured entries that can be pinned and packed into a character-bounded
// brief for downstream consumers.
package context

import (
	"sort"
	"sync"

	"github.com/agentkit/plankernel/pkg/ids"
)

// EntryType classifies a captured context entry for pack_for_mic priority
// ordering.
type EntryType string

const (
	EntryNote        EntryType = "note"
	EntryDecision    EntryType = "decision"
	EntryArtifactRef EntryType = "artifact_ref"
	EntryExternal    EntryType = "external"
)

// Entry is one captured piece of context.
type Entry struct {
	ID        string
	Task      string
	Type      EntryType
	Text      string
	Pinned    bool
	CreatedAt string
}

// Scope restricts which entries pack_for_mic considers for a task: allow/
// deny path-ish prefixes and an allowed type set.
type Scope struct {
	Allow []string
	Deny  []string
	Types []EntryType
}

func (s Scope) allowsType(t EntryType) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, want := range s.Types {
		if want == t {
			return true
		}
	}
	return false
}

func matchesAny(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && len(text) >= len(p) && text[:len(p)] == p {
			return true
		}
	}
	return false
}

// Store holds scopes and captured entries for many tasks.
type Store struct {
	mu      sync.Mutex
	scopes  map[string]Scope
	entries map[string][]Entry // task -> entries in capture order
}

func NewStore() *Store {
	return &Store{
		scopes:  make(map[string]Scope),
		entries: make(map[string][]Entry),
	}
}

// SetScope installs the allow/deny/type filter used by PackForMIC for a
// task. Replaces any previous scope for that task.
func (s *Store) SetScope(task string, allow, deny []string, types []EntryType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[task] = Scope{Allow: allow, Deny: deny, Types: types}
}

// Capture appends an entry and returns its minted id.
func (s *Store) Capture(task string, typ EntryType, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ids.RandomID("ctx_")
	s.entries[task] = append(s.entries[task], Entry{
		ID:        id,
		Task:      task,
		Type:      typ,
		Text:      text,
		CreatedAt: ids.NowISO8601(),
	})
	return id
}

// Pin sets the pinned flag on the given entry ids (searched across all
// tasks) and returns the ids actually found and affected.
func (s *Store) Pin(entryIDs []string, pinned bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		want[id] = true
	}
	var affected []string
	for task, list := range s.entries {
		for i := range list {
			if want[list[i].ID] {
				list[i].Pinned = pinned
				affected = append(affected, list[i].ID)
			}
		}
		s.entries[task] = list
	}
	return affected
}

// typePriority returns the index of t in priority (lower = higher
// priority); unlisted types sort after all listed ones, stable among
// themselves.
func typePriority(t EntryType, priority []EntryType) int {
	for i, p := range priority {
		if p == t {
			return i
		}
	}
	return len(priority)
}

// PackForMIC renders entries for task, filtered by scope, ordered by
// (type priority, pinned first, recency), concatenating entry text until
// tokenCap*4 characters are used. Returns the packed text and the ids of
// entries that made it in.
func (s *Store) PackForMIC(task string, tokenCap int, typePriorityOrder []EntryType) (string, []string) {
	s.mu.Lock()
	scope := s.scopes[task]
	all := append([]Entry(nil), s.entries[task]...)
	s.mu.Unlock()

	var candidates []Entry
	for _, e := range all {
		if !scope.allowsType(e.Type) {
			continue
		}
		if len(scope.Deny) > 0 && matchesAny(e.Text, scope.Deny) {
			continue
		}
		if len(scope.Allow) > 0 && !matchesAny(e.Text, scope.Allow) {
			continue
		}
		candidates = append(candidates, e)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := typePriority(candidates[i].Type, typePriorityOrder), typePriority(candidates[j].Type, typePriorityOrder)
		if pi != pj {
			return pi < pj
		}
		if candidates[i].Pinned != candidates[j].Pinned {
			return candidates[i].Pinned
		}
		return candidates[i].CreatedAt > candidates[j].CreatedAt
	})

	maxChars := tokenCap * 4
	var used []string
	var textLen int
	var chunks []string
	for _, e := range candidates {
		chunk := e.Text
		if textLen+len(chunk)+1 > maxChars {
			break
		}
		chunks = append(chunks, chunk)
		used = append(used, e.ID)
		textLen += len(chunk) + 1
	}

	text := joinLines(chunks)
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, used
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
