package sankey

// assignColumns gives every node a column by frontier propagation and
// returns the number of columns.
//
// The first frontier is every node. Each step stamps the current column on
// the frontier and moves to the targets of its outgoing links, deduplicated
// within that step only. A node reached again from a later frontier is simply
// overwritten, so it ends on the length of the longest path that reaches it.
// Sinks are then pushed to the last column.
//
// An acyclic graph empties its frontier after at most len(nodes) steps; a
// longer run means a cycle and yields ErrCyclicGraph.
func assignColumns(nodes []Node, links []Link) (int, error) {
	frontier := make([]int, len(nodes))
	for i := range frontier {
		frontier[i] = i
	}

	column := 0
	seen := make([]int, len(nodes)) // step+1 at which a node was queued
	for len(frontier) > 0 {
		if column >= len(nodes) {
			return 0, ErrCyclicGraph
		}
		var next []int
		for _, n := range frontier {
			nodes[n].Column = column
			for _, l := range nodes[n].Outgoing {
				t := links[l].Target
				if seen[t] != column+1 {
					seen[t] = column + 1
					next = append(next, t)
				}
			}
		}
		frontier = next
		column++
	}

	moveSinksRight(nodes, column)
	return column, nil
}

// moveSinksRight aligns every node without outgoing links on the last column.
func moveSinksRight(nodes []Node, columns int) {
	for i := range nodes {
		if len(nodes[i].Outgoing) == 0 {
			nodes[i].Column = columns - 1
		}
	}
}

// scaleColumns converts columns to pixel x positions so that column 0 sits at
// x = 0 and the last column ends flush with the right edge. A single column
// has nothing to spread and stays at x = 0.
func scaleColumns(nodes []Node, columns int, width, nodeWidth float64) {
	var kx float64
	if columns > 1 {
		kx = (width - nodeWidth) / float64(columns-1)
	}
	for i := range nodes {
		nodes[i].X = float64(nodes[i].Column) * kx
		nodes[i].DX = nodeWidth
	}
}
