package rank

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func testScoring() core.ScoringParams {
	return core.ScoringParams{
		LogisticSteepness:  10,
		LogisticMidpoint:   0.5,
		ViewCap:            10000,
		PurchaseCap:        1000,
		ReviewCap:          500,
		ConversionRateNorm: 0.20,
		AddToCartRateNorm:  0.30,
		ReturnRateNorm:     0.10,
	}
}

func testVariants() []core.Variant {
	return []core.Variant{
		{Name: "similarity_first", Proportion: 0.5, Weights: core.Weights{
			Similarity: 0.7, Business: 0.2, Personalization: 0.1,
		}},
		{Name: "business_first", Proportion: 0.5, Weights: core.Weights{
			Similarity: 0.3, Business: 0.5, Personalization: 0.2,
		}},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testVariants(), testSubWeights(), testScoring())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	bad := []core.Variant{
		{Name: "broken", Weights: core.Weights{Similarity: 0.5, Business: 0.2}},
	}
	if _, err := NewEngine(bad, testSubWeights(), testScoring()); !core.IsInvalidConfig(err) {
		t.Fatalf("NewEngine with bad weights: err = %v, want INVALID_CONFIG", err)
	}

	badSub := testSubWeights()
	badSub.Business.Popularity = 0.9
	if _, err := NewEngine(testVariants(), badSub, testScoring()); !core.IsInvalidConfig(err) {
		t.Fatalf("NewEngine with bad sub-weights: err = %v, want INVALID_CONFIG", err)
	}

	if _, err := NewEngine(testVariants(), testSubWeights(), core.ScoringParams{}); !core.IsInvalidConfig(err) {
		t.Fatal("NewEngine with zero scoring params: want INVALID_CONFIG")
	}
}

func TestRank_MissingQuery(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Rank(context.Background(), nil, nil); !core.IsInvalidInput(err) {
		t.Fatalf("nil rctx: err = %v, want INVALID_INPUT", err)
	}
	if _, err := e.Rank(context.Background(), &core.RankContext{SessionID: "s1"}, nil); !core.IsInvalidInput(err) {
		t.Fatal("nil query: want INVALID_INPUT")
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	e := newTestEngine(t)
	rctx := &core.RankContext{SessionID: "s1", Query: &core.QueryContext{Text: "camera"}}

	results, err := e.Rank(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	if rctx.Variant == "" {
		t.Fatal("variant not resolved on empty candidate list")
	}
}

func TestRank_SimilarityFirstOrdersByRelevance(t *testing.T) {
	e := newTestEngine(t)

	relevant := &core.Candidate{
		ID:    "relevant",
		Title: "Wireless Headphones",
	}
	popular := &core.Candidate{
		ID:              "popular",
		Title:           "Garden Hose",
		PopularityScore: 1,
		ViewCount:       10000,
		PurchaseCount:   1000,
		Rating:          5,
		ReviewCount:     500,
		StockQuantity:   100,
		ConversionRate:  0.2,
		AddToCartRate:   0.3,
	}

	rctx := &core.RankContext{
		SessionID: "s1",
		Variant:   "similarity_first",
		Query:     &core.QueryContext{Text: "wireless headphones"},
	}

	results, err := e.Rank(context.Background(), rctx, []*core.Candidate{popular, relevant})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Candidate.ID != "relevant" {
		t.Fatalf("top result = %q, want the relevant candidate under similarity_first", results[0].Candidate.ID)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("results not sorted by score descending")
	}

	for _, r := range results {
		if r.Breakdown == nil {
			t.Fatalf("result %q has no breakdown", r.Candidate.ID)
		}
		if _, ok := r.Labels["variant"]; !ok {
			t.Fatalf("result %q has no variant label", r.Candidate.ID)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	candidates := []*core.Candidate{
		{ID: "c", Title: "Blue Running Shoes", StockQuantity: 20, PopularityScore: 0.4},
		{ID: "a", Title: "Red Running Shoes", StockQuantity: 5, PopularityScore: 0.9},
		{ID: "b", Title: "Trail Running Shoes", StockQuantity: 80, PopularityScore: 0.1},
	}

	makeCtx := func() *core.RankContext {
		return &core.RankContext{
			SessionID: "session-42",
			Query:     &core.QueryContext{Text: "running shoes"},
		}
	}

	first, err := e.Rank(context.Background(), makeCtx(), candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Rank(context.Background(), makeCtx(), candidates)
		if err != nil {
			t.Fatalf("Rank: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d results, want %d", i, len(again), len(first))
		}
		for j := range first {
			if first[j].Candidate.ID != again[j].Candidate.ID {
				t.Fatalf("run %d: order differs at position %d: %q vs %q",
					i, j, first[j].Candidate.ID, again[j].Candidate.ID)
			}
			if first[j].Score != again[j].Score {
				t.Fatalf("run %d: score differs for %q", i, first[j].Candidate.ID)
			}
		}
	}
}

func TestRank_TieBreakByID(t *testing.T) {
	e := newTestEngine(t)

	// identical candidates except for ID must produce identical scores
	twin := func(id string) *core.Candidate {
		return &core.Candidate{ID: id, Title: "Desk Lamp", StockQuantity: 20}
	}

	rctx := &core.RankContext{
		SessionID: "s1",
		Query:     &core.QueryContext{Text: "desk lamp"},
	}
	results, err := e.Rank(context.Background(), rctx, []*core.Candidate{twin("b"), twin("a")})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("twin scores differ: %v vs %v", results[0].Score, results[1].Score)
	}
	if results[0].Candidate.ID != "a" || results[1].Candidate.ID != "b" {
		t.Fatalf("tie not broken by ID ascending: got %q, %q",
			results[0].Candidate.ID, results[1].Candidate.ID)
	}
}

func TestRank_VariantOverrideAndAssignment(t *testing.T) {
	e := newTestEngine(t)
	query := &core.QueryContext{Text: "camera"}

	forced := &core.RankContext{SessionID: "s1", Variant: "business_first", Query: query}
	if _, err := e.Rank(context.Background(), forced, nil); err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if forced.Variant != "business_first" {
		t.Fatalf("variant = %q, want forced business_first", forced.Variant)
	}

	// same session always resolves to the same variant
	assigned := ""
	for i := 0; i < 5; i++ {
		rctx := &core.RankContext{SessionID: "sticky-session", Query: query}
		if _, err := e.Rank(context.Background(), rctx, nil); err != nil {
			t.Fatalf("Rank: %v", err)
		}
		if assigned == "" {
			assigned = rctx.Variant
		} else if rctx.Variant != assigned {
			t.Fatalf("variant changed across requests: %q vs %q", assigned, rctx.Variant)
		}
	}
}

func TestRank_CanceledContextReturnsPartial(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rctx := &core.RankContext{
		SessionID: "s1",
		Query:     &core.QueryContext{Text: "camera"},
	}
	candidates := []*core.Candidate{
		{ID: "a", Title: "Camera"},
		{ID: "b", Title: "Camera Bag"},
	}

	results, err := e.Rank(ctx, rctx, candidates)
	if err != nil {
		t.Fatalf("deadline must not fail the request, got %v", err)
	}
	if len(results) > len(candidates) {
		t.Fatalf("got %d results for %d candidates", len(results), len(candidates))
	}
}

func TestRank_AnonymousAndNoGeo(t *testing.T) {
	e := newTestEngine(t)

	rctx := &core.RankContext{
		SessionID: "s1",
		Variant:   "business_first",
		Query:     &core.QueryContext{Text: "camera"},
	}
	results, err := e.Rank(context.Background(), rctx, []*core.Candidate{
		{ID: "a", Title: "Camera", StockQuantity: 10},
	})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	b := results[0].Breakdown
	if b.EffectiveWeights.Personalization != 0 || b.EffectiveWeights.Geographic != 0 {
		t.Fatalf("effective weights = %+v, want personalization and geographic zeroed", b.EffectiveWeights)
	}
	sum := b.EffectiveWeights.Sum()
	if sum < 1-core.WeightEpsilon || sum > 1+core.WeightEpsilon {
		t.Fatalf("effective weights sum to %v, want 1.0", sum)
	}
	if b.Personalization != 0 {
		t.Fatalf("personalization category = %v, want 0 for anonymous request", b.Personalization)
	}
}
