package diagram

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// newPropStore builds a deterministic store for property runs.
func newPropStore() *Store {
	var n int
	s, err := New("prop", Options{
		NewID: func() string { n++; return fmt.Sprintf("p%d", n) },
		Now:   func() time.Time { return time.Unix(0, 0).UTC() },
	})
	if err != nil {
		panic(err)
	}
	return s
}

// applyOps drives a store through a scripted mix of mutations. Each op
// value selects an operation; targets are picked from the live node set.
func applyOps(s *Store, ops []int) {
	for i, op := range ops {
		nodes := s.Nodes()
		pick := func() string {
			if len(nodes) == 0 {
				return ""
			}
			return nodes[i%len(nodes)].ID
		}
		switch op % 6 {
		case 0:
			s.AddRoot()
		case 1:
			s.AddChild(pick())
		case 2:
			s.AddSibling(pick())
		case 3:
			title := fmt.Sprintf("title-%d", i)
			s.Update(pick(), Patch{Title: &title})
		case 4:
			s.Delete(pick())
		case 5:
			s.SetPositions([]PositionUpdate{{ID: pick(), X: float64(i * 10), Y: float64(i * 7)}})
		}
	}
}

func TestStoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("edges are a pure function of nodes", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			first := DeriveEdges(s.Nodes(), s.opts.Edges)
			second := DeriveEdges(s.Nodes(), s.opts.Edges)
			if !reflect.DeepEqual(first, second) {
				return false
			}
			return reflect.DeepEqual(first, s.Edges())
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("no edge references a missing node", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			for _, e := range s.Edges() {
				if _, ok := s.Node(e.Source); !ok {
					return false
				}
				if _, ok := s.Node(e.Target); !ok {
					return false
				}
				if e.ID != EdgeID(e.Source, e.Target) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("no node references a missing parent", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			for _, n := range s.Nodes() {
				if n.ParentID == "" {
					continue
				}
				if _, ok := s.Node(n.ParentID); !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("parent chains terminate at a root", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			for _, n := range s.Nodes() {
				steps := 0
				cur := n
				for cur.ParentID != "" {
					next, ok := s.Node(cur.ParentID)
					if !ok {
						return false
					}
					cur = next
					steps++
					if steps > s.Len() {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	// Short scripts only: longer ones evict the initial snapshot once the
	// history cap is reached, after which full undo lands on the oldest
	// retained state instead.
	properties.Property("full undo restores the initial state", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			initial := s.Save()
			applyOps(s, ops)
			for s.Undo() {
			}
			got := s.Save()
			return reflect.DeepEqual(got.Nodes, initial.Nodes) &&
				reflect.DeepEqual(got.Edges, initial.Edges)
		},
		gen.SliceOfN(30, gen.IntRange(0, 5)),
	))

	properties.Property("undo then full redo restores the final state", prop.ForAll(
		func(ops []int, back int) bool {
			s := newPropStore()
			applyOps(s, ops)
			final := s.Save()
			for i := 0; i < back && s.Undo(); i++ {
			}
			for s.Redo() {
			}
			got := s.Save()
			return reflect.DeepEqual(got.Nodes, final.Nodes) &&
				reflect.DeepEqual(got.Edges, final.Edges)
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.IntRange(0, 60),
	))

	properties.Property("history never exceeds its limit", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			return s.HistoryLen() <= DefaultHistoryLimit
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("selection only references live ids", prop.ForAll(
		func(ops []int) bool {
			s := newPropStore()
			applyOps(s, ops)
			for _, id := range s.Selection() {
				if _, ok := s.Node(id); !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
