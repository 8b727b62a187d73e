package njtree

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/table"
)

// square builds a symmetric distance matrix from the upper triangle.
func square(ids []string, upper map[[2]string]float64) *table.Matrix {
	n := len(ids)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i, a := range ids {
		for j, b := range ids {
			if i == j {
				continue
			}
			if v, ok := upper[[2]string{a, b}]; ok {
				values[i][j] = v
				values[j][i] = v
			}
		}
	}
	return table.NewMatrix(ids, ids, values)
}

func TestBuildGroupsCloseMembers(t *testing.T) {
	// g1/g2 are near each other and far from g3/g4.
	ids := []string{"g1", "g2", "g3", "g4"}
	dm := square(ids, map[[2]string]float64{
		{"g1", "g2"}: 0.1,
		{"g1", "g3"}: 1.0,
		{"g1", "g4"}: 1.0,
		{"g2", "g3"}: 1.0,
		{"g2", "g4"}: 1.0,
		{"g3", "g4"}: 0.1,
	})

	tree, err := Build(ids, dm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	order := tree.LeafOrder()
	if len(order) != 4 {
		t.Fatalf("LeafOrder = %v", order)
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	if diff := pos["g1"] - pos["g2"]; diff != 1 && diff != -1 {
		t.Errorf("g1/g2 not adjacent in %v", order)
	}
	if diff := pos["g3"] - pos["g4"]; diff != 1 && diff != -1 {
		t.Errorf("g3/g4 not adjacent in %v", order)
	}
}

func TestBuildDeterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	dm := square(ids, map[[2]string]float64{
		{"a", "b"}: 5, {"a", "c"}: 9, {"a", "d"}: 9, {"a", "e"}: 8,
		{"b", "c"}: 10, {"b", "d"}: 10, {"b", "e"}: 9,
		{"c", "d"}: 8, {"c", "e"}: 7,
		{"d", "e"}: 3,
	})

	first, err := Build(ids, dm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Build(ids, dm)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !reflect.DeepEqual(first.LeafOrder(), again.LeafOrder()) {
			t.Fatalf("run %d: leaf order %v != %v", i, again.LeafOrder(), first.LeafOrder())
		}
	}
}

func TestBuildTooFew(t *testing.T) {
	dm := square([]string{"only"}, nil)
	_, err := Build([]string{"only"}, dm)
	if !errors.Is(err, errors.ErrCodeTooFewMembers) {
		t.Errorf("err = %v, want TOO_FEW_MEMBERS", err)
	}
}

func TestBuildUnknownMember(t *testing.T) {
	ids := []string{"g1", "g2"}
	dm := square(ids, map[[2]string]float64{{"g1", "g2"}: 1})
	_, err := Build([]string{"g1", "g2", "g3"}, dm)
	if !errors.Is(err, errors.ErrCodeUnknownMember) {
		t.Errorf("err = %v, want UNKNOWN_MEMBER", err)
	}
}

func TestLayoutCoordinates(t *testing.T) {
	ids := []string{"g1", "g2", "g3"}
	dm := square(ids, map[[2]string]float64{
		{"g1", "g2"}: 0.2,
		{"g1", "g3"}: 1.0,
		{"g2", "g3"}: 1.0,
	})

	tree, err := Build(ids, dm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Leaves occupy integer y positions 0..n-1 in leaf order.
	xs, ys, text := tree.Segments()
	if len(xs) != len(ys) || len(xs) != len(text) {
		t.Fatalf("segment slices misaligned: %d/%d/%d", len(xs), len(ys), len(text))
	}
	if tree.MaxDepth() <= 0 {
		t.Errorf("MaxDepth = %v, want > 0", tree.MaxDepth())
	}

	// Hover text appears at branch tips and names leaves.
	var named int
	for _, s := range text {
		if strings.Contains(s, "branch length") {
			named++
		}
	}
	if named == 0 {
		t.Error("no hover text emitted")
	}

	// Extensions stay within the layout extent.
	ex, ey := tree.Extensions()
	if len(ex) != len(ey) {
		t.Fatalf("extension slices misaligned")
	}
	for _, x := range ex {
		if !math.IsNaN(x) && x > tree.MaxDepth() {
			t.Errorf("extension x %v exceeds max depth %v", x, tree.MaxDepth())
		}
	}
}

func TestToDOT(t *testing.T) {
	ids := []string{"g1", "g2", "g3"}
	dm := square(ids, map[[2]string]float64{
		{"g1", "g2"}: 0.2,
		{"g1", "g3"}: 1.0,
		{"g2", "g3"}: 1.0,
	})
	tree, err := Build(ids, dm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dot := tree.ToDOT()
	if !strings.HasPrefix(dot, "graph tree {") {
		t.Errorf("dot header = %q", dot[:20])
	}
	for _, id := range ids {
		if !strings.Contains(dot, `"`+id+`"`) {
			t.Errorf("dot missing leaf %q", id)
		}
	}
	if !strings.Contains(dot, "--") {
		t.Error("dot missing edges")
	}
}
