package conv

import (
	"reflect"
	"testing"
)

func TestSliceAnyToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"strings", []any{"p1", "p2"}, []string{"p1", "p2"}},
		{"mixed numbers", []any{"p1", 42, 7.0}, []string{"p1", "42", "7"}},
		{"skip unconvertible", []any{"p1", struct{}{}}, []string{"p1"}},
		{"not a slice", "p1", nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SliceAnyToString(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SliceAnyToString(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"n": 5, "name": "topn", "factor": 1.5}

	if got := ConfigGet(m, "name", ""); got != "topn" {
		t.Fatalf("ConfigGet name = %q", got)
	}
	if got := ConfigGet(m, "missing", "fallback"); got != "fallback" {
		t.Fatalf("ConfigGet missing = %q", got)
	}
	// 类型不符回落默认值
	if got := ConfigGet(m, "n", "zero"); got != "zero" {
		t.Fatalf("ConfigGet type mismatch = %q", got)
	}
	if got := ConfigGetInt64(m, "n", 0); got != 5 {
		t.Fatalf("ConfigGetInt64 int = %d", got)
	}
	if got := ConfigGetInt64(m, "factor", 0); got != 1 {
		t.Fatalf("ConfigGetInt64 float = %d", got)
	}
	if got := ConfigGetInt64(nil, "n", 9); got != 9 {
		t.Fatalf("ConfigGetInt64 nil map = %d", got)
	}
}
