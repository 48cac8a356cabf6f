package profile

import (
	"testing"

	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/searchkit/core"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name string
		val  *feasttypes.Value
		want interface{}
	}{
		{"nil", nil, nil},
		{"string", &feasttypes.Value{Val: &feasttypes.Value_StringVal{StringVal: "mobile"}}, "mobile"},
		{"int64", &feasttypes.Value{Val: &feasttypes.Value_Int64Val{Int64Val: 22}}, float64(22)},
		{"double", &feasttypes.Value{Val: &feasttypes.Value_DoubleVal{DoubleVal: 0.85}}, 0.85},
		{"bool", &feasttypes.Value{Val: &feasttypes.Value_BoolVal{BoolVal: true}}, float64(1)},
		{"bytes", &feasttypes.Value{Val: &feasttypes.Value_BytesVal{BytesVal: []byte("p1")}}, "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertValue(tt.val); got != tt.want {
				t.Fatalf("convertValue = %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestJSONFeatureDecoding(t *testing.T) {
	// 映射类特征以 JSON 字符串存储，解码结果直接落到画像字段上
	profile := &core.UserProfile{
		UserID:         "u1",
		CategoryViews:  jsonCountMap(`{"electronics": 12, "books": 3}`),
		BrandPurchases: jsonCountMap(`{"acme": 2}`),
		RecentClicks:   jsonStringSlice(`["p1","p2"]`),
	}

	if profile.CategoryViews["electronics"] != 12 || profile.CategoryViews["books"] != 3 {
		t.Fatalf("CategoryViews = %v", profile.CategoryViews)
	}
	if profile.BrandPurchases["acme"] != 2 {
		t.Fatalf("BrandPurchases = %v", profile.BrandPurchases)
	}
	if len(profile.RecentClicks) != 2 || profile.RecentClicks[0] != "p1" {
		t.Fatalf("RecentClicks = %v", profile.RecentClicks)
	}
	if top := profile.TopCategories(1); len(top) != 1 || top[0] != "electronics" {
		t.Fatalf("TopCategories = %v", top)
	}

	if m := jsonCountMap("not json"); m != nil {
		t.Fatalf("broken JSON must decode to nil, got %v", m)
	}
	if m := jsonCountMap(nil); m != nil {
		t.Fatalf("missing feature must decode to nil, got %v", m)
	}
	if s := jsonStringSlice(42.0); s != nil {
		t.Fatalf("non-string feature must decode to nil, got %v", s)
	}
}
