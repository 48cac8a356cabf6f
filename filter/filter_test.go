package filter

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func wrap(candidates ...*core.Candidate) []*core.Result {
	out := make([]*core.Result, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, core.NewResult(c))
	}
	return out
}

func TestBlacklistFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{NewBlacklistFilter([]string{"banned"})}}
	rctx := &core.RankContext{Query: &core.QueryContext{Text: "q"}}

	out, err := node.Process(context.Background(), rctx, wrap(
		&core.Candidate{ID: "ok"},
		&core.Candidate{ID: "banned"},
	))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].Candidate.ID != "ok" {
		t.Fatalf("got %v, want only the unlisted candidate", out)
	}
}

func TestAvailabilityFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&AvailabilityFilter{}}}

	us := &core.Candidate{ID: "us-only", Regions: []string{"US"}}
	global := &core.Candidate{ID: "global"}

	// with geo context the out-of-region candidate is removed
	geoCtx := &core.RankContext{
		Query: &core.QueryContext{Text: "q"},
		Geo:   &core.GeoContext{Country: "DE"},
	}
	out, err := node.Process(context.Background(), geoCtx, wrap(us, global))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].Candidate.ID != "global" {
		t.Fatalf("got %d results, want only the global candidate", len(out))
	}

	// without geo context nothing is filtered
	noGeo := &core.RankContext{Query: &core.QueryContext{Text: "q"}}
	out, err = node.Process(context.Background(), noGeo, wrap(us, global))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 without geo context", len(out))
	}
}

func TestPriceRangeFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&PriceRangeFilter{}}}
	rctx := &core.RankContext{
		Query: &core.QueryContext{Text: "q", PriceMin: 20, PriceMax: 100},
	}

	out, err := node.Process(context.Background(), rctx, wrap(
		&core.Candidate{ID: "cheap", Price: 10},
		&core.Candidate{ID: "fits", Price: 50},
		&core.Candidate{ID: "expensive", Price: 500},
	))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].Candidate.ID != "fits" {
		t.Fatalf("got %v, want only the in-range candidate", out)
	}
}
