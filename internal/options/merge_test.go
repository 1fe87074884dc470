package options

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "simple merge - no overlap",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"b": 2},
			expected: map[string]any{"a": 1, "b": 2},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"win_options": map[string]any{
					"wrap": true,
				},
			},
			src: map[string]any{
				"win_options": map[string]any{
					"cursorline": false,
				},
			},
			expected: map[string]any{
				"win_options": map[string]any{
					"wrap":       true,
					"cursorline": false,
				},
			},
		},
		{
			name: "non-map src value overwrites wholesale",
			dst: map[string]any{
				"align": map[string]any{"direction": "top"},
			},
			src: map[string]any{
				"align": "bottom",
			},
			expected: map[string]any{
				"align": "bottom",
			},
		},
		{
			name: "list replaced not merged",
			dst:  map[string]any{"backend": []any{"popup"}},
			src:  map[string]any{"backend": []any{"split", "popup"}},
			expected: map[string]any{
				"backend": []any{"split", "popup"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDeepMergeClonesSrcValues(t *testing.T) {
	src := map[string]any{
		"buf_options": map[string]any{"modifiable": false},
	}
	dst := DeepMerge(nil, src)

	dst["buf_options"].(map[string]any)["modifiable"] = true
	if src["buf_options"].(map[string]any)["modifiable"] != false {
		t.Error("DeepMerge must not alias src values into dst")
	}
}

func TestDeepMergeNormalizesNestedOptions(t *testing.T) {
	dst := map[string]any{
		"win_options": map[string]any{"wrap": true},
	}
	src := map[string]any{
		"win_options": Options{"cursorline": false},
		"format":      Options{"level": true},
	}

	result := DeepMerge(dst, src)

	win, ok := result["win_options"].(map[string]any)
	if !ok {
		t.Fatalf("win_options stored as %T, want map[string]any", result["win_options"])
	}
	if win["wrap"] != true || win["cursorline"] != false {
		t.Errorf("win_options = %v, want merged table", win)
	}
	if _, ok := result["format"].(map[string]any); !ok {
		t.Errorf("format stored as %T, want map[string]any", result["format"])
	}
}

func TestClone(t *testing.T) {
	orig := Options{
		"view": "notify",
		"win_options": map[string]any{
			"winblend": 30,
		},
		"backend": []string{"popup", "split"},
	}

	clone := Clone(orig)
	if !Equal(orig, clone) {
		t.Fatalf("Clone() = %v, want equal to original", clone)
	}

	clone["win_options"].(map[string]any)["winblend"] = 0
	clone["backend"].([]string)[0] = "virtualtext"
	if orig["win_options"].(map[string]any)["winblend"] != 30 {
		t.Error("Clone must deep-copy nested maps")
	}
	if orig["backend"].([]string)[0] != "popup" {
		t.Error("Clone must deep-copy string lists")
	}
}

func TestCloneNil(t *testing.T) {
	clone := Clone(nil)
	if clone == nil {
		t.Fatal("Clone(nil) should return an empty table, not nil")
	}
	if len(clone) != 0 {
		t.Errorf("Clone(nil) = %v, want empty", clone)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    Options
		b    Options
		want bool
	}{
		{
			name: "both nil",
			a:    nil,
			b:    nil,
			want: true,
		},
		{
			name: "equal flat",
			a:    Options{"view": "notify", "enter": false},
			b:    Options{"enter": false, "view": "notify"},
			want: true,
		},
		{
			name: "nested equal regardless of key order",
			a: Options{
				"win_options": map[string]any{"wrap": true, "winblend": 30},
			},
			b: Options{
				"win_options": map[string]any{"winblend": 30, "wrap": true},
			},
			want: true,
		},
		{
			name: "differing nested value",
			a:    Options{"win_options": map[string]any{"wrap": true}},
			b:    Options{"win_options": map[string]any{"wrap": false}},
			want: false,
		},
		{
			name: "string list order significant",
			a:    Options{"backend": []string{"popup", "split"}},
			b:    Options{"backend": []string{"split", "popup"}},
			want: false,
		},
		{
			name: "missing key",
			a:    Options{"view": "notify"},
			b:    Options{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
