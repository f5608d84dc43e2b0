package sankey

import (
	"cmp"
	"slices"
)

// routeLinks orders every node's links by the vertical position of the node
// at the other end and stacks them, producing SY for outgoing links and TY
// for incoming links. Sorting is stable so ties keep input order.
func routeLinks(nodes []Node, links []Link) {
	byTarget := func(a, b int) int {
		return cmp.Compare(nodes[links[a].Target].Y, nodes[links[b].Target].Y)
	}
	bySource := func(a, b int) int {
		return cmp.Compare(nodes[links[a].Source].Y, nodes[links[b].Source].Y)
	}
	for i := range nodes {
		slices.SortStableFunc(nodes[i].Outgoing, byTarget)
		slices.SortStableFunc(nodes[i].Incoming, bySource)
	}

	for i := range nodes {
		var sy, ty float64
		for _, l := range nodes[i].Outgoing {
			links[l].SY = sy
			sy += links[l].DY
		}
		for _, l := range nodes[i].Incoming {
			links[l].TY = ty
			ty += links[l].DY
		}
	}
}
