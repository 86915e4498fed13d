package layout

import (
	"testing"
)

func TestEngineConfiguration(t *testing.T) {
	t.Run("Default Configuration", func(t *testing.T) {
		e := NewEngine()
		if e.FontSize != 10 {
			t.Errorf("Expected default font size 10, got %f", e.FontSize)
		}
		if e.LineHeight != 1.4 {
			t.Errorf("Expected line height 1.4, got %f", e.LineHeight)
		}
		if w, h := e.PageSize(); w != 595.28 || h != 841.89 {
			t.Errorf("Expected A4, got %fx%f", w, h)
		}
		if e.MaxImageBox != (Box{Width: 400, Height: 300}) {
			t.Errorf("Expected 400x300 image box, got %+v", e.MaxImageBox)
		}
	})

	t.Run("Custom Configuration", func(t *testing.T) {
		e := NewEngine(
			WithFontSize(12),
			WithLineHeight(1.5),
			WithMargins(Margins{Top: 20, Bottom: 20, Left: 20, Right: 20}),
			WithPageSize(1000, 1000),
			WithMaxImageBox(200, 100),
		)
		if e.FontSize != 12 {
			t.Errorf("Expected font size 12, got %f", e.FontSize)
		}
		if e.LineHeight != 1.5 {
			t.Errorf("Expected line height 1.5, got %f", e.LineHeight)
		}
		if e.Margins.Top != 20 {
			t.Errorf("Expected top margin 20, got %f", e.Margins.Top)
		}
		if w, h := e.PageSize(); w != 1000 || h != 1000 {
			t.Errorf("Expected 1000x1000, got %fx%f", w, h)
		}
		if e.MaxImageBox != (Box{Width: 200, Height: 100}) {
			t.Errorf("Expected 200x100 image box, got %+v", e.MaxImageBox)
		}
	})

	t.Run("Paper Size", func(t *testing.T) {
		p, ok := LookupPaperSize("letter")
		if !ok {
			t.Fatal("letter not found")
		}
		e := NewEngine(WithPaperSize(p))
		if w, h := e.PageSize(); w != 612 || h != 792 {
			t.Errorf("Expected Letter, got %fx%f", w, h)
		}
		if _, ok := LookupPaperSize("B7"); ok {
			t.Errorf("unexpected paper size")
		}
	})

	t.Run("Invalid values are ignored", func(t *testing.T) {
		e := NewEngine(WithFontSize(-1), WithLineHeight(0), WithPageSize(0, 10), WithMaxImageBox(-5, 5))
		if e.FontSize != 10 || e.LineHeight != 1.4 || e.MaxImageBox.Width != 400 {
			t.Errorf("invalid options should keep defaults: %+v", e)
		}
		if w, _ := e.PageSize(); w != A4.Width {
			t.Errorf("page size changed to %f", w)
		}
	})

	t.Run("Margins leaving no room fall back", func(t *testing.T) {
		e := NewEngine(WithMargins(Margins{Left: 400, Right: 400}))
		if e.Margins.Left != 50 {
			t.Errorf("expected default margins, got %+v", e.Margins)
		}
	})
}
