package block

import (
	"strings"
	"testing"
)

func TestParseSequence(t *testing.T) {
	data := []byte(`[
		{"kind": "set", "params": {"var": "counter", "value": 0}},
		{"kind": "loop", "params": {"count": 3}, "children": [
			{"kind": "add", "params": {"var": "counter", "delta": 1}}
		]}
	]`)

	seq, err := ParseSequence(data, NewRegistry(), DefaultRules())
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("expected 2 top-level blocks, got %d", len(seq))
	}
	if seq.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", seq.NodeCount())
	}
	// IDs assigned on load
	if seq[0].ID == "" || seq[1].Children[0].ID == "" {
		t.Error("expected IDs assigned to all blocks")
	}
}

func TestParseSequence_RejectsBeforeAnythingRuns(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not-json", `{"kind":`},
		{"bad-kind", `[{"kind": "fly", "params": {}}]`},
		{"bad-params", `[{"kind": "move", "params": {"steps": "many"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSequence([]byte(tt.data), NewRegistry(), DefaultRules()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEncodeSequence_RoundTripsThroughParse(t *testing.T) {
	seq := Sequence{mk(KindLoop, map[string]any{"count": float64(2)},
		mk(KindMove, map[string]any{"steps": float64(1)}))}
	if err := ValidateSequence(seq, NewRegistry(), DefaultRules()); err != nil {
		t.Fatalf("ValidateSequence: %v", err)
	}

	encoded, err := EncodeSequence(seq)
	if err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	back, err := ParseSequence([]byte(encoded), NewRegistry(), DefaultRules())
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if back.NodeCount() != seq.NodeCount() {
		t.Fatalf("node count changed: %d != %d", back.NodeCount(), seq.NodeCount())
	}
	if back[0].Children[0].ID != seq[0].Children[0].ID {
		t.Error("block IDs not preserved through encode/parse")
	}
}

func TestToDOT(t *testing.T) {
	seq := Sequence{
		mk(KindSet, map[string]any{"var": "x", "value": float64(0)}),
		mk(KindLoop, map[string]any{"count": float64(2)},
			mk(KindAdd, map[string]any{"var": "x", "delta": float64(1)})),
	}
	if err := ValidateSequence(seq, NewRegistry(), DefaultRules()); err != nil {
		t.Fatalf("ValidateSequence: %v", err)
	}

	dot, err := ToDOT(seq, "program")
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	if !strings.Contains(dot, "digraph") {
		t.Errorf("expected a digraph, got:\n%s", dot)
	}
	if !strings.Contains(dot, "loop") {
		t.Errorf("expected loop node in DOT output:\n%s", dot)
	}
}
