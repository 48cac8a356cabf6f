package scorer

import (
	"testing"

	"github.com/rushteam/searchkit/core"
)

func TestBusiness_Stock(t *testing.T) {
	s := NewBusiness(testParams())

	tests := []struct {
		name          string
		quantity      int
		backorderable bool
		want          float64
	}{
		{"deep stock", 100, false, 1.0},
		{"above threshold boundary", 51, false, 1.0},
		{"medium stock upper", 50, false, 0.8},
		{"medium stock lower", 10, false, 0.8},
		{"low stock", 5, false, 0.6},
		{"single unit", 1, false, 0.6},
		{"out of stock backorderable", 0, true, 0.2},
		{"out of stock", 0, false, 0.1},
		{"negative quantity", -1, false, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &core.Candidate{StockQuantity: tt.quantity, Backorderable: tt.backorderable}
			got := s.Score(c, nil)
			if got.Stock != tt.want {
				t.Fatalf("Stock = %v, want %v", got.Stock, tt.want)
			}
		})
	}
}

func TestBusiness_Popularity(t *testing.T) {
	s := NewBusiness(testParams())

	tests := []struct {
		name      string
		candidate *core.Candidate
		want      float64
	}{
		{
			name: "everything maxed",
			candidate: &core.Candidate{
				PopularityScore: 1,
				ViewCount:       10000,
				PurchaseCount:   1000,
				Rating:          5,
				ReviewCount:     500,
			},
			want: 1.0,
		},
		{
			name: "caps hold above the cap",
			candidate: &core.Candidate{
				PopularityScore: 1,
				ViewCount:       1_000_000,
				PurchaseCount:   100_000,
				Rating:          5,
				ReviewCount:     50_000,
			},
			want: 1.0,
		},
		{
			name: "half of everything",
			candidate: &core.Candidate{
				PopularityScore: 0.5,
				ViewCount:       5000,
				PurchaseCount:   500,
				Rating:          2.5,
				ReviewCount:     250,
			},
			want: 0.5,
		},
		{
			name:      "cold item",
			candidate: &core.Candidate{},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.candidate, nil)
			if !almostEqual(got.Popularity, tt.want, 1e-9) {
				t.Fatalf("Popularity = %v, want %v", got.Popularity, tt.want)
			}
		})
	}
}

func TestBusiness_Price(t *testing.T) {
	s := NewBusiness(testParams())

	tests := []struct {
		name      string
		candidate *core.Candidate
		want      float64
	}{
		{
			name:      "no discount and no category average is neutral",
			candidate: &core.Candidate{Price: 100},
			want:      0.25, // discount 0, position neutral 0.5
		},
		{
			name: "half off and half of category average",
			candidate: &core.Candidate{
				Price:            50,
				OriginalPrice:    100,
				CategoryAvgPrice: 100,
			},
			want: 0.5*0.5 + 0.5*0.75,
		},
		{
			name: "twice the category average bottoms out",
			candidate: &core.Candidate{
				Price:            200,
				CategoryAvgPrice: 100,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.candidate, nil)
			if !almostEqual(got.Price, tt.want, 1e-9) {
				t.Fatalf("Price = %v, want %v", got.Price, tt.want)
			}
		})
	}
}

func TestBusiness_Conversion(t *testing.T) {
	s := NewBusiness(testParams())

	tests := []struct {
		name      string
		candidate *core.Candidate
		want      float64
	}{
		{
			name: "at normalization baselines with zero returns",
			candidate: &core.Candidate{
				ConversionRate: 0.20,
				AddToCartRate:  0.30,
				ReturnRate:     0,
			},
			want: 1.0,
		},
		{
			name: "half of each rate",
			candidate: &core.Candidate{
				ConversionRate: 0.10,
				AddToCartRate:  0.15,
				ReturnRate:     0.05,
			},
			want: 0.5*0.5 + 0.3*0.5 + 0.2*0.5,
		},
		{
			name: "return rate above norm does not go negative",
			candidate: &core.Candidate{
				ReturnRate: 0.50,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.candidate, nil)
			if !almostEqual(got.Conversion, tt.want, 1e-9) {
				t.Fatalf("Conversion = %v, want %v", got.Conversion, tt.want)
			}
		})
	}
}

func TestBusiness_Geographic(t *testing.T) {
	s := NewBusiness(testParams())

	c := &core.Candidate{
		Regions:      []string{"US"},
		ShippingCost: 3,
		ShippingDays: 2,
		LocalTrend:   0.8,
	}

	got := s.Score(c, &core.GeoContext{Country: "US", Region: "CA"})
	if !got.GeoApplicable {
		t.Fatal("GeoApplicable = false, want true with geo context")
	}
	// 0.3 available + 0.1 cheap shipping + 0.1 fast shipping + 0.1 trending
	if !almostEqual(got.Geographic, 0.6, 1e-9) {
		t.Fatalf("Geographic = %v, want 0.6", got.Geographic)
	}

	elsewhere := s.Score(&core.Candidate{
		Regions:      []string{"US"},
		ShippingCost: 30,
		ShippingDays: 14,
	}, &core.GeoContext{Country: "DE"})
	if !almostEqual(elsewhere.Geographic, 0, 1e-9) {
		t.Fatalf("Geographic = %v, want 0 for unavailable region", elsewhere.Geographic)
	}

	noGeo := s.Score(c, nil)
	if noGeo.GeoApplicable || noGeo.Geographic != 0 {
		t.Fatalf("no geo context: Geographic = (%v, %v), want (0, false)",
			noGeo.Geographic, noGeo.GeoApplicable)
	}
}
