package layout

import (
	"strings"
	"testing"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

func TestBuildDOT(t *testing.T) {
	d := chart(node("root", ""), node("child", "root"))
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	dot := buildDOT(d, opts)

	// Sizes are fixed in inches (units / 72) so dot only places.
	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"ranksep=0.8333;",
		"nodesep=0.5556;",
		`node [shape=box, fixedsize=true, label=""];`,
		`"root" [width=2.2222, height=1.1111];`,
		`"child" [width=2.2222, height=1.1111];`,
		`"root" -> "child";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestParsePositions(t *testing.T) {
	d := chart(node("a", ""), node("b", "a"))

	// Trimmed dot -Tdot output: bb is the layout's bounding box, node pos
	// attributes are centers with y pointing up.
	out := `digraph G {
	graph [bb="0,0,300,200",
		rankdir=TB
	];
	node [label="\N"];
	"a"	 [height=1.1111,
		pos="150,160",
		width=2.2222];
	"b"	 [height=1.1111,
		pos="80,40",
		width=2.2222];
	"a" -> "b"	 [pos="e,100,60 140,130 120,100 110,80 100,60"];
}
`

	centers, err := parsePositions(out, d)
	if err != nil {
		t.Fatalf("parsePositions: %v", err)
	}

	// y flips against the bounding-box height of 200.
	if centers["a"] != (geo.Point{X: 150, Y: 40}) {
		t.Errorf("a = %+v", centers["a"])
	}
	if centers["b"] != (geo.Point{X: 80, Y: 160}) {
		t.Errorf("b = %+v", centers["b"])
	}
}

func TestParsePositionsUnquotedIDs(t *testing.T) {
	d := chart(node("a", ""))

	out := `digraph G {
	graph [bb="0,0,100,100"];
	a	 [height=1.1111, pos="50,50", width=2.2222];
}
`
	centers, err := parsePositions(out, d)
	if err != nil {
		t.Fatalf("parsePositions: %v", err)
	}
	if centers["a"] != (geo.Point{X: 50, Y: 50}) {
		t.Errorf("a = %+v", centers["a"])
	}
}

func TestParsePositionsMissingNode(t *testing.T) {
	d := chart(node("a", ""), node("b", "a"))

	out := `digraph G {
	graph [bb="0,0,100,100"];
	"a" [pos="50,50"];
}
`
	_, err := parsePositions(out, d)
	if err == nil {
		t.Fatal("expected error for missing node position")
	}
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("code = %v", errors.GetCode(err))
	}
}

func TestParsePositionsNoBoundingBox(t *testing.T) {
	_, err := parsePositions("digraph G {}", chart(node("a", "")))
	if err == nil {
		t.Fatal("expected error for missing bounding box")
	}
}

func TestUnquoteID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`"quoted"`, "quoted"},
		{`"with \"escapes\""`, `with "escapes"`},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		if got := unquoteID(tt.in); got != tt.want {
			t.Errorf("unquoteID(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
