package rank

import (
	"math"
	"testing"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/scorer"
)

func testSubWeights() core.SubWeights {
	return core.SubWeights{
		Similarity: core.SimilaritySubWeights{
			Visual: 0.4, Textual: 0.3, Categorical: 0.2, Behavioral: 0.1,
		},
		Business: core.BusinessSubWeights{
			Popularity: 0.35, Stock: 0.25, Price: 0.20, Conversion: 0.20,
		},
		Personalization: core.PersonalizationSubWeights{
			Preference: 0.4, Behavioral: 0.2, Session: 0.2, Temporal: 0.2,
		},
	}
}

func TestEffectiveWeights_Redistribution(t *testing.T) {
	base := core.Weights{Similarity: 0.4, Business: 0.3, Personalization: 0.2, Geographic: 0.1}

	tests := []struct {
		name    string
		hasUser bool
		hasGeo  bool
		want    core.Weights
	}{
		{
			name:    "everything applicable keeps weights as is",
			hasUser: true,
			hasGeo:  true,
			want:    base,
		},
		{
			name:    "no user redistributes personalization",
			hasUser: false,
			hasGeo:  true,
			want: core.Weights{
				Similarity: 0.4 / 0.8, Business: 0.3 / 0.8, Geographic: 0.1 / 0.8,
			},
		},
		{
			name:    "no geo redistributes geographic",
			hasUser: true,
			hasGeo:  false,
			want: core.Weights{
				Similarity: 0.4 / 0.9, Business: 0.3 / 0.9, Personalization: 0.2 / 0.9,
			},
		},
		{
			name:    "anonymous request without geo",
			hasUser: false,
			hasGeo:  false,
			want: core.Weights{
				Similarity: 0.4 / 0.7, Business: 0.3 / 0.7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveWeights(base, tt.hasUser, tt.hasGeo)

			if math.Abs(got.Sum()-1.0) > core.WeightEpsilon {
				t.Fatalf("effective weights sum to %v, want 1.0", got.Sum())
			}
			for name, pair := range map[string][2]float64{
				"similarity":      {got.Similarity, tt.want.Similarity},
				"business":        {got.Business, tt.want.Business},
				"personalization": {got.Personalization, tt.want.Personalization},
				"geographic":      {got.Geographic, tt.want.Geographic},
			} {
				if math.Abs(pair[0]-pair[1]) > 1e-9 {
					t.Fatalf("%s = %v, want %v", name, pair[0], pair[1])
				}
			}
		})
	}
}

func TestEffectiveWeights_DegenerateVariant(t *testing.T) {
	// variant that bets everything on inapplicable categories
	w := core.Weights{Personalization: 0.8, Geographic: 0.2}
	got := EffectiveWeights(w, false, false)

	if got.Similarity != 0.5 || got.Business != 0.5 {
		t.Fatalf("fallback weights = %+v, want similarity/business 0.5 each", got)
	}
	if got.Personalization != 0 || got.Geographic != 0 {
		t.Fatalf("inapplicable weights = %+v, want zero", got)
	}
}

func TestCombine_Final(t *testing.T) {
	sim := scorer.SimilarityScores{
		Visual: 0.9, Textual: 0.8, Categorical: 0.4, Behavioral: 0.6,
		VisualApplicable: true, BehavioralApplicable: true,
	}
	biz := scorer.BusinessScores{
		Popularity: 0.7, Stock: 1.0, Price: 0.5, Conversion: 0.6,
		Geographic: 0.4, GeoApplicable: true,
	}
	pers := scorer.PersonalizationScores{
		Preference: 0.5, Behavioral: 0.4, Session: 0.5, Temporal: 0.3,
		Applicable: true,
	}
	weights := core.Weights{Similarity: 0.4, Business: 0.3, Personalization: 0.2, Geographic: 0.1}

	b := Combine(sim, biz, pers, weights, testSubWeights())

	wantSim := 0.4*0.9 + 0.3*0.8 + 0.2*0.4 + 0.1*0.6
	wantBiz := 0.35*0.7 + 0.25*1.0 + 0.20*0.5 + 0.20*0.6
	wantPers := 0.4*0.5 + 0.2*0.4 + 0.2*0.5 + 0.2*0.3
	wantFinal := 0.4*wantSim + 0.3*wantBiz + 0.2*wantPers + 0.1*0.4

	for name, pair := range map[string][2]float64{
		"similarity":      {b.Similarity, wantSim},
		"business":        {b.Business, wantBiz},
		"personalization": {b.Personalization, wantPers},
		"geographic":      {b.Geographic, 0.4},
		"final":           {b.Final, wantFinal},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Fatalf("%s = %v, want %v", name, pair[0], pair[1])
		}
	}
}

func TestCombine_SimilarityRenormalization(t *testing.T) {
	// visual and behavioral structurally missing: textual/categorical carry the category
	sim := scorer.SimilarityScores{Textual: 1.0, Categorical: 0.5}
	weights := core.Weights{Similarity: 1.0}

	b := Combine(sim, scorer.BusinessScores{}, scorer.PersonalizationScores{}, weights, testSubWeights())

	// (0.3*1.0 + 0.2*0.5) / (0.3 + 0.2)
	want := (0.3*1.0 + 0.2*0.5) / 0.5
	if math.Abs(b.Similarity-want) > 1e-9 {
		t.Fatalf("Similarity = %v, want %v after renormalization", b.Similarity, want)
	}
}
