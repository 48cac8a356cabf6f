package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func mkResults(categories ...string) []*core.Result {
	out := make([]*core.Result, 0, len(categories))
	for i, cate := range categories {
		out = append(out, core.NewResult(&core.Candidate{
			ID:       string(rune('a' + i)),
			Category: cate,
		}))
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   int
		want int
	}{
		{"truncates", 2, 5, 2},
		{"shorter list untouched", 10, 3, 3},
		{"zero disables truncation", 0, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mkResults(make([]string, tt.in)...)
			node := &TopNNode{N: tt.n}
			out, err := node.Process(context.Background(), nil, in)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tt.want {
				t.Fatalf("got %d results, want %d", len(out), tt.want)
			}
		})
	}
}

func TestDiversityNode(t *testing.T) {
	node := &DiversityNode{MaxPerCategory: 2}

	in := mkResults("shoes", "shoes", "shoes", "bags", "shoes", "bags")
	out, err := node.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	counts := make(map[string]int)
	for _, r := range out {
		counts[r.Candidate.Category]++
	}
	if counts["shoes"] != 2 || counts["bags"] != 2 {
		t.Fatalf("per-category counts = %v, want 2 each", counts)
	}
	// relative order preserved: first two shoes survive
	if out[0].Candidate.ID != "a" || out[1].Candidate.ID != "b" {
		t.Fatalf("order changed: %q, %q", out[0].Candidate.ID, out[1].Candidate.ID)
	}

	// uncategorized results are never capped
	blank := mkResults("", "", "", "")
	out, err = (&DiversityNode{MaxPerCategory: 1}).Process(context.Background(), nil, blank)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("got %d uncategorized results, want all 4", len(out))
	}
}
