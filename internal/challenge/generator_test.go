package challenge

import (
	"strconv"
	"strings"
	"testing"
)

func TestFillTemplate(t *testing.T) {
	tests := []struct {
		name string
		tpl  string
		vars map[string][]string
		ints []int
		want string
	}{
		{
			name: "each occurrence sampled independently",
			tpl:  "{a} and {a}",
			vars: map[string][]string{"a": {"x", "y"}},
			ints: []int{0, 1},
			want: "x and y",
		},
		{
			name: "unknown placeholder left verbatim",
			tpl:  "Ask {target} about {mystery}.",
			vars: map[string][]string{"target": {"a neighbour"}},
			want: "Ask a neighbour about {mystery}.",
		},
		{
			name: "empty candidate set left verbatim",
			tpl:  "{empty}",
			vars: map[string][]string{"empty": {}},
			want: "{empty}",
		},
		{
			name: "no placeholders",
			tpl:  "Smile.",
			want: "Smile.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillTemplate(tt.tpl, tt.vars, &seqRand{ints: tt.ints})
			if got != tt.want {
				t.Fatalf("FillTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeneratorFallsBackToDefaultFocus(t *testing.T) {
	catalog := MustDefault()
	gen := NewGenerator(catalog.Templates(), newCoinRand(0))

	got, ok := gen.Generate(1, "unknown-focus")
	if !ok {
		t.Fatalf("expected generation to succeed")
	}
	if got.FocusKey != DefaultGeneratorFocus {
		t.Fatalf("expected fallback focus %q, got %q", DefaultGeneratorFocus, got.FocusKey)
	}
	if strings.Contains(got.Description, "{") {
		t.Fatalf("description has unresolved placeholders: %q", got.Description)
	}
	if got.Title != "Spontaneous Interaction" {
		t.Fatalf("expected title-cased template title, got %q", got.Title)
	}
}

func TestGeneratorIDsNeverCollideWithCatalog(t *testing.T) {
	catalog := MustDefault()
	gen := NewGenerator(catalog.Templates(), nil)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		got, ok := gen.Generate(3, "conversation")
		if !ok {
			t.Fatalf("expected generation to succeed")
		}
		if !got.Generated() {
			t.Fatalf("generated id %q lacks generated prefix", got.ID)
		}
		if _, err := strconv.Atoi(got.ID); err == nil {
			t.Fatalf("generated id %q parses as an integer", got.ID)
		}
		if _, ok := catalog.Lookup(got.ID); ok {
			t.Fatalf("generated id %q collides with catalog", got.ID)
		}
		if _, dup := seen[got.ID]; dup {
			t.Fatalf("generated id %q repeated", got.ID)
		}
		seen[got.ID] = struct{}{}
		if got.XP <= 0 {
			t.Fatalf("generated challenge must carry positive xp")
		}
	}
}

func TestGeneratorPrefersTemplatesAtLevel(t *testing.T) {
	templates := map[string][]Template{
		"social": {
			{Title: "easy", Templates: []string{"easy"}, Category: "Social", Level: 1, BaseXP: 10, Difficulty: 1, Duration: "1 min"},
			{Title: "hard", Templates: []string{"hard"}, Category: "Social", Level: 3, BaseXP: 50, Difficulty: 3, Duration: "9 min"},
		},
	}
	gen := NewGenerator(templates, &seqRand{ints: []int{1}})
	for i := 0; i < 5; i++ {
		got, _ := gen.Generate(1, "social")
		if got.Level != 1 {
			t.Fatalf("level 1 user received level %d template", got.Level)
		}
	}
}

func TestEmptyGeneratorIsUnavailable(t *testing.T) {
	gen := NewGenerator(nil, nil)
	if gen.Available() {
		t.Fatalf("generator without templates must be unavailable")
	}
	if _, ok := gen.Generate(1, "social"); ok {
		t.Fatalf("expected no challenge from empty generator")
	}
}
