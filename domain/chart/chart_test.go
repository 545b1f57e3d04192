package chart

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/deckster/chartgen/domain/dataset"
)

func TestMethodFor(t *testing.T) {
	t.Run("declarative_set_maps_to_declarative", func(t *testing.T) {
		for _, typ := range []Type{TypeLine, TypeBar, TypePie, TypeDoughnut, TypeRadar} {
			if got := MethodFor(typ); got != MethodDeclarative {
				t.Errorf("MethodFor(%s) = %s, want declarative", typ, got)
			}
		}
	})

	t.Run("complex_types_map_to_code_generated", func(t *testing.T) {
		for _, typ := range []Type{TypeViolin, TypeScatter, TypeHeatmap, TypeWaterfall, TypeTreemap} {
			if got := MethodFor(typ); got != MethodCodeGen {
				t.Errorf("MethodFor(%s) = %s, want code_generated", typ, got)
			}
		}
	})

	t.Run("every_type_maps_to_exactly_one_family", func(t *testing.T) {
		for _, typ := range Types() {
			m := MethodFor(typ)
			if m != MethodDeclarative && m != MethodCodeGen {
				t.Errorf("MethodFor(%s) = %q, not a renderer family", typ, m)
			}
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("valid_type", func(t *testing.T) {
		typ, ok := Parse("violin")
		if !ok || typ != TypeViolin {
			t.Fatalf("Parse(violin) = %v, %v", typ, ok)
		}
	})

	t.Run("unknown_type", func(t *testing.T) {
		if _, ok := Parse("gantt"); ok {
			t.Fatal("gantt should not be a valid chart type")
		}
	})
}

func TestRequestValidate(t *testing.T) {
	t.Run("empty_content_rejected", func(t *testing.T) {
		req := Request{UseSyntheticData: true}
		if err := req.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
	})

	t.Run("no_data_and_synthesis_disabled_rejected", func(t *testing.T) {
		req := Request{Content: "quarterly sales", UseSyntheticData: false}
		if err := req.Validate(); !errors.Is(err, ErrNoData) {
			t.Fatalf("want ErrNoData, got %v", err)
		}
	})

	t.Run("user_data_without_synthesis_accepted", func(t *testing.T) {
		req := Request{
			Content: "quarterly sales",
			Data:    []dataset.Point{{Label: "Q1", Value: 45000}},
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid_explicit_type_rejected", func(t *testing.T) {
		req := Request{Content: "x", UseSyntheticData: true, ExplicitType: "spiral"}
		if err := req.Validate(); !errors.Is(err, ErrInvalidType) {
			t.Fatalf("want ErrInvalidType, got %v", err)
		}
	})
}

func TestResolvedTitle(t *testing.T) {
	t.Run("explicit_title_wins", func(t *testing.T) {
		req := Request{Content: "quarterly sales", Title: "Q Sales"}
		if got := req.ResolvedTitle(); got != "Q Sales" {
			t.Errorf("title = %q", got)
		}
	})

	t.Run("derived_title_is_capitalized", func(t *testing.T) {
		req := Request{Content: "quarterly sales"}
		if got := req.ResolvedTitle(); got != "Quarterly sales" {
			t.Errorf("title = %q", got)
		}
	})

	t.Run("empty_content_defaults", func(t *testing.T) {
		req := Request{Content: "   "}
		if got := req.ResolvedTitle(); got != "Chart" {
			t.Errorf("title = %q", got)
		}
	})

	t.Run("multibyte_content_truncates_on_rune_boundaries", func(t *testing.T) {
		req := Request{Content: strings.Repeat("é", 70)}
		got := req.ResolvedTitle()
		if !utf8.ValidString(got) {
			t.Fatalf("title is not valid UTF-8: %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 60 {
			t.Errorf("title length = %d runes, want 60", n)
		}
		if !strings.HasPrefix(got, "É") {
			t.Errorf("first rune not uppercased: %q", got)
		}
	})
}

func TestSpecConstruction(t *testing.T) {
	spec := NewSpec(TypePie, 1.0, "explicit")
	if spec.Method != MethodDeclarative {
		t.Errorf("pie spec method = %s, want declarative", spec.Method)
	}

	spec = NewSpec(TypeViolin, 0.8, "rule")
	if spec.Method != MethodCodeGen {
		t.Errorf("violin spec method = %s, want code_generated", spec.Method)
	}
}

func TestDimensionsTieBreak(t *testing.T) {
	// Simpler visualizations must win ties: bar is one-dimensional,
	// grouped bar is not.
	if TypeBar.Dimensions() >= TypeGroupedBar.Dimensions() {
		t.Errorf("bar dimensions %d should be below grouped_bar %d",
			TypeBar.Dimensions(), TypeGroupedBar.Dimensions())
	}
	if Type("nonexistent").Dimensions() != 99 {
		t.Error("unknown types should report maximum dimensions")
	}
}
