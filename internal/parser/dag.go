package parser

import (
	"sort"
	"strings"

	"github.com/me/tomoflow/pkg/model"
	"github.com/me/tomoflow/pkg/template"
)

// Build constructs a WorkflowGraph from parsed step nodes. It is pure: no
// I/O, no execution, and all four structural errors are raised here, before
// anything could run.
//
// Order of checks: duplicate ids, then per-step edge derivation with
// dangling-reference and socket validation, then cycle detection. A failed
// build returns no partial graph.
func (p *Parser) Build(nodes []*model.StepNode) (*model.WorkflowGraph, error) {
	index := make(map[string]*model.StepNode, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			return nil, &model.DuplicateIDError{ID: n.ID}
		}
		index[n.ID] = n
	}

	edges := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		deps, err := p.dependencies(n, index)
		if err != nil {
			return nil, err
		}
		edges[n.ID] = deps
	}

	order, err := topoSort(nodes, edges)
	if err != nil {
		return nil, err
	}

	return model.NewWorkflowGraph(nodes, edges, order), nil
}

// dependencies derives a node's upstream ids: explicit prerequisites plus
// every producer referenced from its parameter values. The result is
// deduplicated and ordered by the producer's document position.
func (p *Parser) dependencies(n *model.StepNode, index map[string]*model.StepNode) ([]string, error) {
	seen := make(map[string]bool)
	var deps []string

	// Rebuilding the same nodes must not accumulate references.
	n.References = nil

	for _, pre := range n.Prerequisites {
		if _, ok := index[pre]; !ok {
			return nil, &model.DanglingReferenceError{StepID: n.ID, Ref: pre}
		}
		if pre == n.ID {
			// A self-edge is the smallest possible cycle.
			return nil, &model.CyclicDependencyError{Cycle: []string{n.ID}}
		}
		if !seen[pre] {
			seen[pre] = true
			deps = append(deps, pre)
		}
	}

	for _, param := range n.Record.Params {
		if param.Name == template.KeyPrerequisites {
			continue
		}
		refs, err := p.resolveParam(n, param.Name, param.Value, index)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			n.References = append(n.References, ref)
			if ref.ProducerID == n.ID {
				return nil, &model.CyclicDependencyError{Cycle: []string{n.ID}}
			}
			if !seen[ref.ProducerID] {
				seen[ref.ProducerID] = true
				deps = append(deps, ref.ProducerID)
			}
		}
	}

	sort.Slice(deps, func(i, j int) bool {
		return index[deps[i]].DocPos < index[deps[j]].DocPos
	})
	return deps, nil
}

// resolveParam walks a parameter value, recursing into lists and maps, and
// returns the references found in its strings.
func (p *Parser) resolveParam(n *model.StepNode, name string, v template.Value, index map[string]*model.StepNode) ([]model.OutputReference, error) {
	switch v.Kind {
	case template.KindString:
		producerID, outputName, ok := SplitReference(v.Str)
		if !ok {
			return nil, nil
		}
		producer, exists := index[producerID]
		if !exists {
			return nil, &model.DanglingReferenceError{StepID: n.ID, Ref: v.Str}
		}
		if outputName != "" {
			if err := p.checkSocket(n, producer, outputName); err != nil {
				return nil, err
			}
		}
		return []model.OutputReference{{
			ProducerID: producerID,
			OutputName: outputName,
			Param:      name,
			Raw:        v.Str,
		}}, nil

	case template.KindList:
		var refs []model.OutputReference
		for _, c := range v.List {
			sub, err := p.resolveParam(n, name, c, index)
			if err != nil {
				return nil, err
			}
			refs = append(refs, sub...)
		}
		return refs, nil

	case template.KindMap:
		var refs []model.OutputReference
		for _, f := range v.Fields {
			sub, err := p.resolveParam(n, name, f.Value, index)
			if err != nil {
				return nil, err
			}
			refs = append(refs, sub...)
		}
		return refs, nil

	default:
		return nil, nil
	}
}

// checkSocket validates an output name against the producer's declared
// sockets. Types absent from the registry cannot be verified; those log a
// warning instead of failing, so templates using unregistered tool plugins
// still load.
func (p *Parser) checkSocket(n *model.StepNode, producer *model.StepNode, outputName string) error {
	st, known := p.registry.Lookup(producer.TypeName)
	if !known {
		p.logger.Warn("cannot verify output socket: step type not registered",
			"step", n.ID, "producer", producer.ID, "type", producer.TypeName, "socket", outputName)
		return nil
	}
	if !st.HasOutput(itemBase(outputName)) {
		return &model.UnknownOutputSocketError{
			StepID:     n.ID,
			ProducerID: producer.ID,
			TypeName:   producer.TypeName,
			Socket:     outputName,
		}
	}
	return nil
}

// itemBase strips a trailing dotted item index ("outputTiltSeries.1" ->
// "outputTiltSeries"); single items of a set are addressed this way.
func itemBase(socket string) string {
	if i := strings.LastIndexByte(socket, '.'); i > 0 && isDigits(socket[i+1:]) {
		return socket[:i]
	}
	return socket
}

// topoSort runs Kahn's algorithm over the derived edges. Ties break by
// ascending document position, so two builds of the same document always
// schedule identically. An incomplete order means a cycle; the cycle path is
// recovered by depth-first search for the error message.
func topoSort(nodes []*model.StepNode, edges map[string][]string) ([]string, error) {
	docPos := make(map[string]int, len(nodes))
	for _, n := range nodes {
		docPos[n.ID] = n.DocPos
	}

	forward := make(map[string][]string, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = len(edges[n.ID])
		for _, dep := range edges[n.ID] {
			forward[dep] = append(forward[dep], n.ID)
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	byDocPos := func(ids []string) {
		sort.Slice(ids, func(i, j int) bool { return docPos[ids[i]] < docPos[ids[j]] })
	}
	byDocPos(queue)

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, succ := range forward[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
		byDocPos(queue)
	}

	if len(order) != len(nodes) {
		return nil, &model.CyclicDependencyError{Cycle: findCycle(nodes, edges)}
	}
	return order, nil
}

// findCycle extracts one cycle from the edge set by DFS with a recursion
// stack, visiting nodes in document order for a deterministic report.
func findCycle(nodes []*model.StepNode, edges map[string][]string) []string {
	const (
		white = iota // unvisited
		grey         // on the recursion stack
		black        // done
	)
	color := make(map[string]int, len(nodes))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)
		for _, dep := range edges[id] {
			switch color[dep] {
			case grey:
				// Back-edge: the cycle is the stack suffix from dep.
				for i, s := range stack {
					if s == dep {
						cycle = append(cycle, stack[i:]...)
						return true
					}
				}
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range nodes {
		if color[n.ID] == white && visit(n.ID) {
			break
		}
	}
	return cycle
}
