// Package scheduler answers the execution-readiness query for the
// orchestrating host. There is no scheduling loop here: the host drives
// execution, calling Ready as steps complete — possibly across restarts —
// and these functions are pure over the (graph, completed-set) pair.
package scheduler

import "github.com/me/tomoflow/pkg/model"

// Ready returns the ids of steps whose entire dependency set is contained in
// completed, excluding steps already completed. Results come back in the
// graph's topological-tiebreak order, so repeated queries against the same
// snapshot are identical.
func Ready(g *model.WorkflowGraph, completed map[string]bool) []string {
	ready := []string{}
	for _, id := range g.Order {
		if completed[id] {
			continue
		}
		ok := true
		for _, dep := range g.Dependencies(id) {
			if !completed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	return ready
}

// CompletedSet builds the lookup set for Ready from a completed-id list.
// Unknown ids are dropped: a host reporting a step the graph never had is
// not allowed to unblock anything.
func CompletedSet(g *model.WorkflowGraph, ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.Node(id) != nil {
			set[id] = true
		}
	}
	return set
}

// Done reports whether every step of the graph is completed.
func Done(g *model.WorkflowGraph, completed map[string]bool) bool {
	for _, n := range g.Nodes {
		if !completed[n.ID] {
			return false
		}
	}
	return true
}
