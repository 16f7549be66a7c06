package scheduler

import (
	"log/slog"
	"testing"

	"github.com/me/tomoflow/internal/parser"
	"github.com/me/tomoflow/internal/schema"
	"github.com/me/tomoflow/pkg/model"
)

func loadGraph(t *testing.T, doc string) *model.WorkflowGraph {
	t.Helper()
	p := parser.New(slog.New(slog.DiscardHandler), schema.Builtin())
	g, err := p.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

const chainDoc = `[
    {"object.className": "ProtImportTs", "object.id": "2", "filesPath": "/data"},
    {"object.className": "ProtTsAlign", "object.id": "3", "in": "2.TiltSeries"},
    {"object.className": "ProtTsReconstruct", "object.id": "73", "in": "3.TiltSeries"}
]`

func TestReady_ChainProgression(t *testing.T) {
	g := loadGraph(t, chainDoc)

	steps := []struct {
		completed []string
		want      []string
	}{
		{nil, []string{"2"}},
		{[]string{"2"}, []string{"3"}},
		{[]string{"2", "3"}, []string{"73"}},
		{[]string{"2", "3", "73"}, []string{}},
	}

	for _, tt := range steps {
		got := Ready(g, CompletedSet(g, tt.completed))
		if len(got) != len(tt.want) {
			t.Fatalf("Ready(completed=%v) = %v, want %v", tt.completed, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Ready(completed=%v) = %v, want %v", tt.completed, got, tt.want)
			}
		}
	}
}

func TestReady_Idempotent(t *testing.T) {
	g := loadGraph(t, chainDoc)
	set := CompletedSet(g, []string{"2"})

	first := Ready(g, set)
	second := Ready(g, set)
	if len(first) != len(second) {
		t.Fatalf("repeated query differs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated query differs: %v vs %v", first, second)
		}
	}
}

func TestReady_ParallelBranches(t *testing.T) {
	doc := `[
        {"object.className": "ProtImportTs", "object.id": "1", "filesPath": "/a"},
        {"object.className": "ProtTsAlign", "object.id": "4", "in": "1.TiltSeries"},
        {"object.className": "ProtImportTomograms", "object.id": "2", "filesPath": "/b"},
        {"object.className": "ProtTomoPicking", "object.id": "6", "in": "2.Tomograms"}
    ]`
	g := loadGraph(t, doc)

	// Both roots ready at the start, in document order.
	got := Ready(g, nil)
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("Ready({}) = %v, want [1 2]", got)
	}

	// Completing one branch unblocks only its consumer.
	got = Ready(g, CompletedSet(g, []string{"2"}))
	if len(got) != 2 || got[0] != "1" || got[1] != "6" {
		t.Errorf("Ready({2}) = %v, want [1 6]", got)
	}
}

func TestReady_CompletedNeverReappears(t *testing.T) {
	g := loadGraph(t, chainDoc)

	completed := map[string]bool{}
	seen := map[string]int{}
	for !Done(g, completed) {
		ready := Ready(g, completed)
		if len(ready) == 0 {
			t.Fatal("progress stalled before completion")
		}
		for _, id := range ready {
			seen[id]++
			completed[id] = true
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("step %s reported ready %d times", id, count)
		}
	}
}

func TestCompletedSet_DropsUnknownIDs(t *testing.T) {
	g := loadGraph(t, chainDoc)
	set := CompletedSet(g, []string{"2", "999"})
	if set["999"] {
		t.Error("unknown id must not enter the completed set")
	}
	if !set["2"] {
		t.Error("known id missing")
	}
}
