package sankey

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func chain() Input {
	return Input{
		Nodes: []NodeInput{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Links: []LinkInput{
			{Source: At(0), Target: At(1), Value: 10},
			{Source: ByID("B"), Target: ByID("C"), Value: 10},
		},
	}
}

func energy() Input {
	ids := []string{"coal", "gas", "oil", "power", "industry", "homes", "losses", "transport"}
	nodes := make([]NodeInput, len(ids))
	for i, id := range ids {
		nodes[i] = NodeInput{ID: id, Name: id}
	}
	link := func(s, t string, v float64) LinkInput {
		return LinkInput{Source: ByID(s), Target: ByID(t), Value: v}
	}
	return Input{
		Nodes: nodes,
		Links: []LinkInput{
			link("coal", "power", 30),
			link("gas", "power", 20),
			link("gas", "homes", 10),
			link("oil", "transport", 25),
			link("oil", "industry", 5),
			link("power", "industry", 15),
			link("power", "homes", 20),
			link("power", "losses", 15),
		},
	}
}

func TestBuildChain(t *testing.T) {
	l, err := Build(chain(), 300, 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if l.Columns != 3 {
		t.Errorf("Columns = %d, want 3", l.Columns)
	}
	wantX := []float64{0, 145, 290}
	for i, n := range l.Nodes {
		if n.Column != i {
			t.Errorf("%s.Column = %d, want %d", n.ID, n.Column, i)
		}
		if !near(n.X, wantX[i]) {
			t.Errorf("%s.X = %v, want %v", n.ID, n.X, wantX[i])
		}
		if n.DX != DefaultNodeWidth {
			t.Errorf("%s.DX = %v, want %v", n.ID, n.DX, DefaultNodeWidth)
		}
		if !near(n.DY, 100) {
			t.Errorf("%s.DY = %v, want 100", n.ID, n.DY)
		}
		if !near(n.Y, 0) {
			t.Errorf("%s.Y = %v, want 0", n.ID, n.Y)
		}
	}
	for i, lk := range l.Links {
		if lk.SY != 0 || lk.TY != 0 {
			t.Errorf("link %d: SY, TY = %v, %v, want 0, 0", i, lk.SY, lk.TY)
		}
		if !near(lk.DY, 100) {
			t.Errorf("link %d: DY = %v, want 100", i, lk.DY)
		}
	}
	if l.Links[1].Source != 1 || l.Links[1].Target != 2 {
		t.Errorf("link 1 = %d->%d, want 1->2", l.Links[1].Source, l.Links[1].Target)
	}
}

func TestBuildTwoIntoOne(t *testing.T) {
	in := Input{
		Nodes: []NodeInput{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Links: []LinkInput{
			{Source: At(0), Target: At(2), Value: 5},
			{Source: At(1), Target: At(2), Value: 15},
		},
	}
	l, err := Build(in, 100, 30)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !near(l.Scale, 1) {
		t.Fatalf("Scale = %v, want 1", l.Scale)
	}
	if c := l.Nodes[2]; !near(c.DY, 20*l.Scale) {
		t.Errorf("C.DY = %v, want %v", c.DY, 20*l.Scale)
	}
	// B is the heavier source and settles above A.
	if got := l.Links[1].TY; got != 0 {
		t.Errorf("B->C TY = %v, want 0", got)
	}
	if got := l.Links[0].TY; !near(got, 15) {
		t.Errorf("A->C TY = %v, want 15", got)
	}
	if got := l.Nodes[2].Incoming; !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("C.Incoming = %v, want [1 0]", got)
	}
}

func TestBuildProperties(t *testing.T) {
	in := energy()
	for _, iters := range []int{0, 1, 32, 100} {
		l, err := Build(in, 960, 500, WithIterations(iters), WithNodePadding(12))
		if err != nil {
			t.Fatalf("Build(iterations=%d) error = %v", iters, err)
		}
		checkLayout(t, l)
	}
}

func checkLayout(t *testing.T, l *Layout) {
	t.Helper()

	for i, n := range l.Nodes {
		if !near(n.DY, n.Value*l.Scale) {
			t.Errorf("node %d: DY = %v, want %v", i, n.DY, n.Value*l.Scale)
		}
		if len(n.Outgoing) == 0 && n.Column != l.Columns-1 {
			t.Errorf("sink %d: Column = %d, want %d", i, n.Column, l.Columns-1)
		}
		if len(n.Outgoing) > 0 && n.Column >= l.Columns-1 {
			t.Errorf("node %d with outgoing links in last column", i)
		}
		if n.Y < -eps || n.Y+n.DY > l.Height+eps {
			t.Errorf("node %d: span [%v, %v] outside [0, %v]", i, n.Y, n.Y+n.DY, l.Height)
		}
	}
	for i, lk := range l.Links {
		if !near(lk.DY, lk.Value*l.Scale) {
			t.Errorf("link %d: DY = %v, want %v", i, lk.DY, lk.Value*l.Scale)
		}
	}

	for c, col := range l.ColumnNodes() {
		if len(col) == 0 {
			t.Errorf("column %d is empty", c)
		}
		for i := 1; i < len(col); i++ {
			prev, cur := l.Nodes[col[i-1]], l.Nodes[col[i]]
			if prev.Y+prev.DY > cur.Y+eps {
				t.Errorf("column %d: %s [%v, %v] overlaps %s at %v",
					c, prev.ID, prev.Y, prev.Y+prev.DY, cur.ID, cur.Y)
			}
		}
	}

	for i, n := range l.Nodes {
		var sy float64
		for _, li := range n.Outgoing {
			if !near(l.Links[li].SY, sy) {
				t.Errorf("node %d: link %d SY = %v, want %v", i, li, l.Links[li].SY, sy)
			}
			sy += l.Links[li].DY
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(energy(), 800, 400)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, err := Build(energy(), 800, 400)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatal("Build() produced different layouts for identical input")
		}
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	in := chain()
	in.Nodes[0].Meta = Metadata{"color": "red"}
	in.Links[0].Meta = Metadata{"label": "a-b"}

	before := Input{
		Nodes: []NodeInput{{ID: "A", Meta: Metadata{"color": "red"}}, {ID: "B"}, {ID: "C"}},
		Links: []LinkInput{
			{Source: At(0), Target: At(1), Value: 10, Meta: Metadata{"label": "a-b"}},
			{Source: ByID("B"), Target: ByID("C"), Value: 10},
		},
	}

	l, err := Build(in, 300, 100)
	if err != nil {
		t.Fatal(err)
	}
	l.Nodes[0].Meta["color"] = "blue"
	l.Links[0].Meta["label"] = "changed"

	if !reflect.DeepEqual(in, before) {
		t.Errorf("input changed: %+v", in)
	}
	if l.Nodes[0].Meta["color"] != "blue" {
		t.Errorf("Meta not carried into layout")
	}
}

func TestBuildEmpty(t *testing.T) {
	l, err := Build(Input{}, 100, 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(l.Nodes) != 0 || len(l.Links) != 0 || l.Columns != 0 {
		t.Errorf("Build(empty) = %+v, want empty layout", l)
	}
	if top, bottom := l.Bounds(); top != 0 || bottom != 0 {
		t.Errorf("Bounds() = %v, %v, want 0, 0", top, bottom)
	}
}

func TestBuildSingleColumn(t *testing.T) {
	in := Input{Nodes: []NodeInput{{ID: "a"}, {ID: "b"}}}
	l, err := Build(in, 100, 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if l.Columns != 1 {
		t.Errorf("Columns = %d, want 1", l.Columns)
	}
	if l.Scale != 0 {
		t.Errorf("Scale = %v, want 0", l.Scale)
	}
	for _, n := range l.Nodes {
		if n.X != 0 || n.Column != 0 {
			t.Errorf("%s at column %d x %v, want 0, 0", n.ID, n.Column, n.X)
		}
	}
	if l.Nodes[1].Y < l.Nodes[0].Y+DefaultNodePadding-eps {
		t.Errorf("b.Y = %v, want at least %v", l.Nodes[1].Y, l.Nodes[0].Y+DefaultNodePadding)
	}
}

func TestBuildZeroValueLinks(t *testing.T) {
	in := chain()
	in.Links[0].Value = 0
	in.Links[1].Value = 0
	l, err := Build(in, 300, 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, n := range l.Nodes {
		if math.IsNaN(n.Y) || math.IsNaN(n.DY) {
			t.Errorf("%s: Y, DY = %v, %v, want finite", n.ID, n.Y, n.DY)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	cyclic := Input{
		Nodes: []NodeInput{{}, {}},
		Links: []LinkInput{
			{Source: At(0), Target: At(1), Value: 1},
			{Source: At(1), Target: At(0), Value: 1},
		},
	}
	overflow := func(links ...LinkInput) Input {
		return Input{Nodes: make([]NodeInput, 4), Links: links}
	}
	withValue := func(v float64) Input {
		in := chain()
		in.Links[1].Value = v
		return in
	}
	withRef := func(r Ref) Input {
		in := chain()
		in.Links[0].Target = r
		return in
	}

	tests := []struct {
		name   string
		in     Input
		w, h   float64
		opts   []Option
		target error
	}{
		{"index out of range", withRef(At(3)), 100, 100, nil, ErrInvalidReference},
		{"negative index", withRef(At(-1)), 100, 100, nil, ErrInvalidReference},
		{"unknown id", withRef(ByID("Z")), 100, 100, nil, ErrInvalidReference},
		{"negative value", withValue(-1), 100, 100, nil, ErrInvalidValue},
		{"NaN value", withValue(math.NaN()), 100, 100, nil, ErrInvalidValue},
		{"infinite value", withValue(math.Inf(1)), 100, 100, nil, ErrInvalidValue},
		{"zero width", chain(), 0, 100, nil, ErrInvalidSize},
		{"negative height", chain(), 100, -5, nil, ErrInvalidSize},
		{"NaN height", chain(), 100, math.NaN(), nil, ErrInvalidSize},
		{"infinite width", chain(), math.Inf(1), 100, nil, ErrInvalidSize},
		{"negative node width", chain(), 100, 100, []Option{WithNodeWidth(-1)}, ErrInvalidOption},
		{"node width over width", chain(), 100, 100, []Option{WithNodeWidth(101)}, ErrInvalidOption},
		{"NaN padding", chain(), 100, 100, []Option{WithNodePadding(math.NaN())}, ErrInvalidOption},
		{"negative iterations", chain(), 100, 100, []Option{WithIterations(-1)}, ErrInvalidOption},
		{"duplicate id", Input{Nodes: []NodeInput{{ID: "x"}, {ID: "x"}}}, 100, 100, nil, ErrDuplicateNodeID},
		{"cycle", cyclic, 100, 100, nil, ErrCyclicGraph},
		{"node value overflow", overflow(
			LinkInput{Source: At(0), Target: At(2), Value: 1e308},
			LinkInput{Source: At(1), Target: At(2), Value: 1e308},
		), 100, 100, nil, ErrInvalidValue},
		{"column total overflow", overflow(
			LinkInput{Source: At(0), Target: At(2), Value: 1e308},
			LinkInput{Source: At(1), Target: At(3), Value: 1e308},
		), 100, 100, nil, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.in, tt.w, tt.h, tt.opts...)
			if !errors.Is(err, tt.target) {
				t.Errorf("Build() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestBuildOptions(t *testing.T) {
	l, err := Build(chain(), 300, 100, WithNodeWidth(20), WithNodePadding(0), WithIterations(0))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if l.NodeWidth != 20 || l.NodePadding != 0 || l.Iterations != 0 {
		t.Errorf("options = %v, %v, %d, want 20, 0, 0", l.NodeWidth, l.NodePadding, l.Iterations)
	}
	if got := l.Nodes[2].X; !near(got, 280) {
		t.Errorf("C.X = %v, want 280", got)
	}
}

func TestBounds(t *testing.T) {
	l, err := Build(energy(), 960, 500)
	if err != nil {
		t.Fatal(err)
	}
	top, bottom := l.Bounds()
	if top < -eps || bottom > l.Height+eps || top > bottom {
		t.Errorf("Bounds() = %v, %v, want within [0, %v]", top, bottom, l.Height)
	}
}

func TestLinkPaths(t *testing.T) {
	l, err := Build(chain(), 300, 100)
	if err != nil {
		t.Fatal(err)
	}

	paths, err := l.LinkPaths(DefaultCurvature)
	if err != nil {
		t.Fatalf("LinkPaths() error = %v", err)
	}
	want := LinkPath{
		SourceX: 10, SourceY: 50,
		TargetX: 145, TargetY: 50,
		SourceControlX: 77.5, TargetControlX: 77.5,
		Width: 100,
	}
	if paths[0] != want {
		t.Errorf("LinkPaths()[0] = %+v, want %+v", paths[0], want)
	}

	paths, err = l.LinkPaths(0)
	if err != nil {
		t.Fatal(err)
	}
	if paths[1].SourceControlX != 155 || paths[1].TargetControlX != 290 {
		t.Errorf("curvature 0 controls = %v, %v, want 155, 290",
			paths[1].SourceControlX, paths[1].TargetControlX)
	}

	for _, c := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := l.LinkPaths(c); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("LinkPaths(%v) error = %v, want ErrInvalidOption", c, err)
		}
	}
}

func TestBuildHugeValuesStayFinite(t *testing.T) {
	in := Input{
		Nodes: make([]NodeInput, 3),
		Links: []LinkInput{
			{Source: At(0), Target: At(2), Value: 1e308},
			{Source: At(1), Target: At(2), Value: 1e307},
		},
	}
	l, err := Build(in, 300, 500)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	for i, n := range l.Nodes {
		if !finite(n.Y) || !finite(n.DY) {
			t.Errorf("node %d: y = %v, dy = %v, want finite", i, n.Y, n.DY)
		}
	}
	for i, lk := range l.Links {
		if !finite(lk.DY) || !finite(lk.SY) || !finite(lk.TY) {
			t.Errorf("link %d: dy = %v, sy = %v, ty = %v, want finite", i, lk.DY, lk.SY, lk.TY)
		}
	}
}
