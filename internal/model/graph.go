// SPDX-License-Identifier: MPL-2.0

package model

type (
	// Graph is the directed parent graph over model ids, used to pre-check
	// for inheritance cycles and to order full-table resolution parents-first.
	// An edge from P to M means P is M's parent and must resolve before M.
	Graph struct {
		// adjacency maps each model to the models that inherit from it.
		adjacency map[ID][]ID
		// nodes tracks all models in insertion order; feeding ids in sorted
		// order makes the resolution order deterministic.
		nodes []ID
		// nodeSet provides O(1) node existence lookup.
		nodeSet map[ID]bool
	}
)

// NewGraph creates an empty parent graph.
func NewGraph() *Graph {
	return &Graph{
		adjacency: make(map[ID][]ID),
		nodeSet:   make(map[ID]bool),
	}
}

// AddModel adds a model with no recorded parent. Adding an existing id is a
// no-op.
func (g *Graph) AddModel(id ID) {
	if g.nodeSet[id] {
		return
	}
	g.nodeSet[id] = true
	g.nodes = append(g.nodes, id)
}

// AddInheritance records that child inherits from parent. Both ids are
// implicitly added.
func (g *Graph) AddInheritance(parent, child ID) {
	g.AddModel(parent)
	g.AddModel(child)
	g.adjacency[parent] = append(g.adjacency[parent], child)
}

// ResolutionOrder returns an order in which every parent appears before all
// models inheriting from it, using Kahn's algorithm. Models at the same
// depth keep insertion order. Returns CyclicModelInheritanceError when the
// parent graph contains a cycle.
func (g *Graph) ResolutionOrder() ([]ID, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[ID]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, children := range g.adjacency {
		for _, child := range children {
			inDegree[child]++
		}
	}

	queue := make([]ID, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var order []ID
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, child := range g.adjacency[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != len(g.nodes) {
		// Models still carrying in-degree sit on (or behind) a cycle.
		var chain []ID
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				chain = append(chain, node)
			}
		}
		return nil, &CyclicModelInheritanceError{Chain: chain}
	}

	return order, nil
}
