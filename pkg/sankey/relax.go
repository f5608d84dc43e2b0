package sankey

import "math"

// alphaDecay is applied to the relaxation step before every iteration.
const alphaDecay = 0.99

// relaxer moves nodes toward the weighted centre of their neighbours while
// keeping each column legal.
type relaxer struct {
	nodes   []Node
	links   []Link
	groups  [][]int
	height  float64
	padding float64
}

// run performs iterations rounds of right-to-left and left-to-right
// relaxation, resolving collisions after each pass. Alpha starts at 1 and is
// decayed before each round; both passes of a round share it.
func (r *relaxer) run(iterations int) {
	alpha := 1.0
	for ; iterations > 0; iterations-- {
		alpha *= alphaDecay
		r.relaxRightToLeft(alpha)
		resolveCollisions(r.nodes, r.groups, r.height, r.padding)
		r.relaxLeftToRight(alpha)
		resolveCollisions(r.nodes, r.groups, r.height, r.padding)
	}
}

// relaxRightToLeft pulls nodes with outgoing links toward their targets,
// visiting columns from the rightmost.
func (r *relaxer) relaxRightToLeft(alpha float64) {
	for c := len(r.groups) - 1; c >= 0; c-- {
		for _, n := range r.groups[c] {
			node := &r.nodes[n]
			if y, ok := r.weightedCenter(node.Outgoing, func(l *Link) int { return l.Target }); ok {
				node.Y += (y - node.Center()) * alpha
			}
		}
	}
}

// relaxLeftToRight pulls nodes with incoming links toward their sources,
// visiting columns from the leftmost.
func (r *relaxer) relaxLeftToRight(alpha float64) {
	for _, g := range r.groups {
		for _, n := range g {
			node := &r.nodes[n]
			if y, ok := r.weightedCenter(node.Incoming, func(l *Link) int { return l.Source }); ok {
				node.Y += (y - node.Center()) * alpha
			}
		}
	}
}

// weightedCenter averages the centres of the nodes at the far end of links,
// weighted by link value. It reports false when the links carry no value.
func (r *relaxer) weightedCenter(links []int, end func(*Link) int) (float64, bool) {
	var weighted, total float64
	for _, i := range links {
		l := &r.links[i]
		weighted += r.nodes[end(l)].Center() * l.Value
		total += l.Value
	}
	if total == 0 {
		return 0, false
	}
	if !math.IsInf(weighted, 0) {
		return weighted / total, true
	}
	// Very large values overflow the weighted sum; normalise each weight.
	weighted = 0
	for _, i := range links {
		l := &r.links[i]
		weighted += r.nodes[end(l)].Center() * (l.Value / total)
	}
	return weighted, true
}
