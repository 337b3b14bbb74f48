package effects

// NodeIndex builds an id -> node lookup. Later entries win on duplicate ids.
func NodeIndex(nodes ...[]Node) map[string]Node {
	size := 0
	for _, batch := range nodes {
		size += len(batch)
	}
	idx := make(map[string]Node, size)
	for _, batch := range nodes {
		for _, n := range batch {
			idx[n.ID] = n
		}
	}
	return idx
}

// FilterEdges keeps edges whose endpoints are both known and returns the
// rest as dropped.
func FilterEdges(edges []Edge, known map[string]Node) (kept, dropped []Edge) {
	kept = make([]Edge, 0, len(edges))
	for _, e := range edges {
		_, fromOK := known[e.From]
		_, toOK := known[e.To]
		if fromOK && toOK {
			kept = append(kept, e)
			continue
		}
		dropped = append(dropped, e)
	}
	return kept, dropped
}

// Concat assembles a graph from stage outputs. Inputs are never mutated.
func Concat(graphs ...Graph) Graph {
	var out Graph
	for _, g := range graphs {
		out.Nodes = append(out.Nodes, g.Nodes...)
		out.Edges = append(out.Edges, g.Edges...)
	}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return out
}

// ByOrder groups nodes by their order, preserving input order within a group.
func ByOrder(nodes []Node) map[int][]Node {
	groups := make(map[int][]Node, 3)
	for _, n := range nodes {
		groups[n.Order] = append(groups[n.Order], n)
	}
	return groups
}

// Validate checks every node and that every edge endpoint is a known node.
func (g Graph) Validate() error {
	if err := ValidateNodes(g.Nodes); err != nil {
		return err
	}
	known := NodeIndex(g.Nodes)
	for _, e := range g.Edges {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, ok := known[e.From]; !ok {
			return &ValidationError{Subject: "edge", Errors: []FieldError{{Field: "From", Tag: "known_node", Value: e.From, Message: "From references an unknown effect " + e.From}}}
		}
		if _, ok := known[e.To]; !ok {
			return &ValidationError{Subject: "edge", Errors: []FieldError{{Field: "To", Tag: "known_node", Value: e.To, Message: "To references an unknown effect " + e.To}}}
		}
	}
	return nil
}
