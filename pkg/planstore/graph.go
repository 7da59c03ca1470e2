package planstore

// color marks DFS visitation state for cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored
)

// hasCycle reports whether the dependency graph step -> each dep has any
// directed cycle. Edges whose target is not present in the plan are
// ignored: missing dependency targets are tolerated elsewhere and are not
// this function's concern. O(V+E), does not mutate.
func hasCycle(p *Plan) bool {
	colors := make(map[string]color, len(p.Steps))
	for _, s := range p.Steps {
		if colors[s.ID] == white {
			if dfsHasCycle(p, s.ID, colors) {
				return true
			}
		}
	}
	return false
}

func dfsHasCycle(p *Plan, id string, colors map[string]color) bool {
	colors[id] = gray
	step := p.step(id)
	if step != nil {
		for _, dep := range step.Dependencies {
			if !p.hasStep(dep) {
				continue
			}
			switch colors[dep] {
			case gray:
				return true
			case white:
				if dfsHasCycle(p, dep, colors) {
					return true
				}
			}
		}
	}
	colors[id] = black
	return false
}

// findCycle returns one representative cycle (ids in traversal order) if
// the dependency graph has one, or nil otherwise.
func findCycle(p *Plan) []string {
	colors := make(map[string]color, len(p.Steps))
	for _, s := range p.Steps {
		if colors[s.ID] == white {
			var stack []string
			if cyc := dfsFindCycle(p, s.ID, colors, &stack); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

func dfsFindCycle(p *Plan, id string, colors map[string]color, stack *[]string) []string {
	colors[id] = gray
	*stack = append(*stack, id)

	step := p.step(id)
	if step != nil {
		for _, dep := range step.Dependencies {
			if !p.hasStep(dep) {
				continue
			}
			switch colors[dep] {
			case gray:
				// Found the back edge: slice the stack from dep's first
				// occurrence to build the cycle in traversal order.
				for i, v := range *stack {
					if v == dep {
						cyc := append([]string(nil), (*stack)[i:]...)
						return cyc
					}
				}
				return []string{dep}
			case white:
				if cyc := dfsFindCycle(p, dep, colors, stack); cyc != nil {
					return cyc
				}
			}
		}
	}

	colors[id] = black
	*stack = (*stack)[:len(*stack)-1]
	return nil
}
