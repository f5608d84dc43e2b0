package sankey

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// groupByColumn returns node indices grouped by column in ascending column
// order. Within a column, nodes keep their input order. Empty columns are
// skipped.
func groupByColumn(nodes []Node, columns int) [][]int {
	groups := make([][]int, columns)
	for i := range nodes {
		c := nodes[i].Column
		groups[c] = append(groups[c], i)
	}
	return slices.DeleteFunc(groups, func(g []int) bool { return len(g) == 0 })
}

// verticalScale returns the pixels-per-unit factor allowed by the most
// crowded column. Columns with no value carry no constraint. With no
// constraint at all, or when padding alone overflows the height, the scale
// is zero. A column whose total overflows float64 fails with ErrInvalidValue.
func verticalScale(nodes []Node, groups [][]int, height, padding float64) (float64, error) {
	ky := math.Inf(1)
	for c, g := range groups {
		var total float64
		for _, n := range g {
			total += nodes[n].Value
		}
		if math.IsInf(total, 0) {
			return 0, fmt.Errorf("column %d: total value overflows: %w", c, ErrInvalidValue)
		}
		if total <= 0 {
			continue
		}
		ky = min(ky, (height-float64(len(g)-1)*padding)/total)
	}
	if math.IsInf(ky, 1) || ky < 0 {
		return 0, nil
	}
	return ky, nil
}

// initializeDepths sizes every node and link with the global scale and seeds
// each node's y with its index inside its column. The seed is not a legal
// position; resolveCollisions turns it into one.
func initializeDepths(nodes []Node, links []Link, groups [][]int, ky float64) {
	for _, g := range groups {
		for i, n := range g {
			nodes[n].Y = float64(i)
			nodes[n].DY = nodes[n].Value * ky
		}
	}
	for i := range links {
		links[i].DY = links[i].Value * ky
	}
}

// resolveCollisions removes vertical overlap inside every column.
//
// Nodes are sorted by y (stably, and the group keeps that order for the next
// call), then swept top-down pushing each node below the previous one plus
// padding. If the column now ends below height, the last node is pulled back
// up to the bottom edge and a bottom-up sweep pushes overlapping nodes up.
// Non-overlap always holds afterwards; staying inside [0, height] only holds
// for columns whose nodes and padding fit.
func resolveCollisions(nodes []Node, groups [][]int, height, padding float64) {
	for _, g := range groups {
		sortByY(nodes, g)

		y0 := 0.0
		for _, n := range g {
			node := &nodes[n]
			if dy := y0 - node.Y; dy > 0 {
				node.Y += dy
			}
			y0 = node.Y + node.DY + padding
		}

		dy := y0 - padding - height
		if dy <= 0 {
			continue
		}
		last := &nodes[g[len(g)-1]]
		last.Y -= dy
		y0 = last.Y

		for i := len(g) - 2; i >= 0; i-- {
			node := &nodes[g[i]]
			if dy := node.Y + node.DY + padding - y0; dy > 0 {
				node.Y -= dy
			}
			y0 = node.Y
		}
	}
}

// sortByY stably orders node indices by their top edge.
func sortByY(nodes []Node, idx []int) {
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(nodes[a].Y, nodes[b].Y)
	})
}
