package layout

import "testing"

func TestParamsHash(t *testing.T) {
	base := Default()

	t.Run("stable", func(t *testing.T) {
		if base.Hash() != base.Hash() {
			t.Errorf("hash of identical params differs between calls")
		}
	})

	t.Run("sensitive to breaks", func(t *testing.T) {
		fields := []func(*Params){
			func(p *Params) { p.FontSize = 18 },
			func(p *Params) { p.LineSpacing = 1.6 },
			func(p *Params) { p.Margin = 3 },
			func(p *Params) { p.ViewportWidth = 500 },
			func(p *Params) { p.ViewportHeight = 700 },
		}
		for i, mutate := range fields {
			p := base
			mutate(&p)
			if p.Hash() == base.Hash() {
				t.Errorf("field %d did not change the hash", i)
			}
		}
	})

	t.Run("alignment ignored", func(t *testing.T) {
		p := base
		p.Align = AlignJustify
		if p.Hash() != base.Hash() {
			t.Errorf("alignment changed the hash but never moves a break")
		}
	})
}

func TestMarginPt(t *testing.T) {
	tests := []struct {
		margin int
		want   float64
	}{
		{0, 0},
		{1, 12},
		{4, 48},
		{-2, 0},  // clamped low
		{99, 48}, // clamped high
	}
	for _, tt := range tests {
		p := Params{Margin: tt.margin}
		if got := p.MarginPt(); got != tt.want {
			t.Errorf("MarginPt(%d) = %v, want %v", tt.margin, got, tt.want)
		}
	}
}

func TestLinesPerPage(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int
	}{
		{"exact rows", Params{FontSize: 10, LineSpacing: 1, ViewportHeight: 50, ViewportWidth: 100}, 5},
		{"spacing eats rows", Params{FontSize: 10, LineSpacing: 1.5, ViewportHeight: 100, ViewportWidth: 100}, 6},
		{"tiny but positive", Params{FontSize: 10, LineSpacing: 1, ViewportHeight: 4, ViewportWidth: 100}, 1},
		{"no height", Params{FontSize: 10, LineSpacing: 1, ViewportHeight: 0, ViewportWidth: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.LinesPerPage(); got != tt.want {
				t.Errorf("LinesPerPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLineHeightFloor(t *testing.T) {
	p := Params{FontSize: 12, LineSpacing: 0.5}
	if got := p.LineHeight(); got != 12 {
		t.Errorf("LineHeight() = %v, want the font size floor 12", got)
	}
}

func TestDegenerate(t *testing.T) {
	if Default().Degenerate() {
		t.Errorf("default params reported degenerate")
	}
	p := Default()
	p.ViewportWidth = 20
	p.Margin = 2 // 24pt margins on a 20pt viewport
	if !p.Degenerate() {
		t.Errorf("margins wider than the viewport not reported degenerate")
	}
}
