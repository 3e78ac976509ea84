// Package graph builds an adjacency index over an automation graph document and answers
// the structural queries used by validation and execution.
package graph

import (
	"errors"
	"fmt"

	"github.com/dukex/talentflow/pkg/models"
)

var (
	ErrMalformedGraph   = errors.New("malformed graph")
	ErrNoTrigger        = errors.New("graph has no trigger node")
	ErrMultipleTriggers = errors.New("graph has more than one trigger node")
	ErrCycle            = errors.New("graph contains a cycle")
	ErrUnknownNode      = errors.New("unknown node")
)

// MalformedGraphError reports input that cannot be indexed at all: duplicate node ids or
// edges that reference nodes missing from the graph.
type MalformedGraphError struct {
	NodeID string
	Reason string
}

func (e *MalformedGraphError) Error() string {
	if e.NodeID == "" {
		return "malformed graph: " + e.Reason
	}

	return fmt.Sprintf("malformed graph: %s (node %q)", e.Reason, e.NodeID)
}

func (e *MalformedGraphError) Is(target error) bool {
	return target == ErrMalformedGraph
}

// IsMalformed checks if err is a MalformedGraphError.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedGraph)
}

type edgeKey struct {
	source int
	target int
}

// Graph is an immutable adjacency index. Node slots follow the document order and
// outgoing lists follow edge insertion order.
type Graph struct {
	nodes []*models.Node
	index map[string]int
	edges []models.Edge
	out   [][]int
	in    [][]int
}

// New indexes nodes and edges. Duplicate edges collapse into the first occurrence.
func New(nodes []*models.Node, edges []models.Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]*models.Node, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
		out:   make([][]int, len(nodes)),
		in:    make([][]int, len(nodes)),
	}

	for _, node := range nodes {
		if node == nil {
			return nil, &MalformedGraphError{Reason: "nil node"}
		}

		if node.ID == "" {
			return nil, &MalformedGraphError{Reason: "node id is required"}
		}

		if _, exists := g.index[node.ID]; exists {
			return nil, &MalformedGraphError{NodeID: node.ID, Reason: "duplicate node id"}
		}

		g.index[node.ID] = len(g.nodes)
		g.nodes = append(g.nodes, node)
	}

	seen := make(map[edgeKey]struct{}, len(edges))

	for _, edge := range edges {
		source, ok := g.index[edge.Source]
		if !ok {
			return nil, &MalformedGraphError{NodeID: edge.Source, Reason: "edge source does not exist"}
		}

		target, ok := g.index[edge.Target]
		if !ok {
			return nil, &MalformedGraphError{NodeID: edge.Target, Reason: "edge target does not exist"}
		}

		key := edgeKey{source: source, target: target}
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		g.edges = append(g.edges, edge)
		g.out[source] = append(g.out[source], target)
		g.in[target] = append(g.in[target], source)
	}

	return g, nil
}

// FromDocument indexes a stored graph document.
func FromDocument(doc *models.Graph) (*Graph, error) {
	return New(doc.Nodes, doc.Edges)
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in document order.
func (g *Graph) Nodes() []*models.Node {
	nodes := make([]*models.Node, len(g.nodes))
	copy(nodes, g.nodes)

	return nodes
}

// Edges returns the distinct edges in insertion order.
func (g *Graph) Edges() []models.Edge {
	edges := make([]models.Edge, len(g.edges))
	copy(edges, g.edges)

	return edges
}

func (g *Graph) Node(id string) (*models.Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}

	return g.nodes[i], true
}

// Successors returns the direct successors of id in edge insertion order.
func (g *Graph) Successors(id string) []*models.Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}

	return g.collect(g.out[i])
}

// Predecessors returns the direct predecessors of id in edge insertion order.
func (g *Graph) Predecessors(id string) []*models.Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}

	return g.collect(g.in[i])
}

// OutDegree returns the number of distinct outgoing edges of id.
func (g *Graph) OutDegree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}

	return len(g.out[i])
}

// TriggerNodes returns every trigger-kind node in document order.
func (g *Graph) TriggerNodes() []*models.Node {
	var triggers []*models.Node

	for _, node := range g.nodes {
		if node.IsTrigger() {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// TriggerNode returns the single trigger node.
func (g *Graph) TriggerNode() (*models.Node, error) {
	triggers := g.TriggerNodes()

	switch len(triggers) {
	case 0:
		return nil, ErrNoTrigger
	case 1:
		return triggers[0], nil
	default:
		return nil, ErrMultipleTriggers
	}
}

// ReachableFrom returns the nodes reachable from id by following at least one edge, in
// breadth-first order. id itself is included only when it sits on a cycle.
func (g *Graph) ReachableFrom(id string) []*models.Node {
	start, ok := g.index[id]
	if !ok {
		return nil
	}

	visited := g.reach(start)
	order := make([]int, 0, len(visited))

	queue := append([]int(nil), g.out[start]...)
	emitted := make(map[int]bool, len(visited))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if emitted[current] {
			continue
		}

		emitted[current] = true
		order = append(order, current)
		queue = append(queue, g.out[current]...)
	}

	return g.collect(order)
}

// Reaches reports whether to is reachable from from.
func (g *Graph) Reaches(from, to string) bool {
	start, ok := g.index[from]
	if !ok {
		return false
	}

	target, ok := g.index[to]
	if !ok {
		return false
	}

	_, found := g.reach(start)[target]

	return found
}

// IsAcyclic reports whether the subgraph of action nodes has no cycle, self-loops included.
func (g *Graph) IsAcyclic() bool {
	for i, targets := range g.out {
		if !g.nodes[i].IsAction() {
			continue
		}

		for _, target := range targets {
			if target == i {
				return false
			}
		}
	}

	_, found := g.FindBackEdge()

	return !found
}

// FindBackEdge runs a depth-first search over action nodes in document order and returns the
// first edge that closes a cycle. Self-loops are not considered here.
func (g *Graph) FindBackEdge() (models.Edge, bool) {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make([]int, len(g.nodes))

	var visit func(i int) (models.Edge, bool)

	visit = func(i int) (models.Edge, bool) {
		state[i] = inProgress

		for _, target := range g.out[i] {
			if target == i || !g.nodes[target].IsAction() {
				continue
			}

			switch state[target] {
			case inProgress:
				return models.Edge{Source: g.nodes[i].ID, Target: g.nodes[target].ID}, true
			case unvisited:
				if edge, found := visit(target); found {
					return edge, true
				}
			}
		}

		state[i] = done

		return models.Edge{}, false
	}

	for i, node := range g.nodes {
		if !node.IsAction() || state[i] != unvisited {
			continue
		}

		if edge, found := visit(i); found {
			return edge, true
		}
	}

	return models.Edge{}, false
}

// TopologicalOrder returns the nodes reachable from id in breadth-first topological order:
// a node is emitted once every reachable predecessor has been emitted, and ready nodes are
// taken in the order their last predecessor listed them. id itself is not part of the result.
func (g *Graph) TopologicalOrder(id string) ([]*models.Node, error) {
	start, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	reachable := g.reach(start)
	delete(reachable, start)

	pending := make(map[int]int, len(reachable))

	for node := range reachable {
		for _, source := range g.in[node] {
			if _, ok := reachable[source]; ok || source == start {
				pending[node]++
			}
		}
	}

	order := make([]int, 0, len(reachable))
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != start {
			order = append(order, current)
		}

		for _, target := range g.out[current] {
			if _, ok := reachable[target]; !ok {
				continue
			}

			pending[target]--
			if pending[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	if len(order) != len(reachable) {
		return g.collect(order), ErrCycle
	}

	return g.collect(order), nil
}

func (g *Graph) reach(start int) map[int]struct{} {
	visited := make(map[int]struct{})
	stack := append([]int(nil), g.out[start]...)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}

		visited[current] = struct{}{}
		stack = append(stack, g.out[current]...)
	}

	return visited
}

func (g *Graph) collect(indexes []int) []*models.Node {
	nodes := make([]*models.Node, 0, len(indexes))
	for _, i := range indexes {
		nodes = append(nodes, g.nodes[i])
	}

	return nodes
}
