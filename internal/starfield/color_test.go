package starfield

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-stellar/internal/astro"
)

func TestBaseColor_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		star       astro.Star
		wantSource ColorSource
		wantHex    string
	}{
		{
			name:       "spectral beats temperature",
			star:       astro.Star{SpType: "G2V", TempK: astro.Ptr(30000.0)},
			wantSource: SourceSpectral,
			wantHex:    "#fff4ea",
		},
		{
			name:       "lowercase class",
			star:       astro.Star{SpType: "m1ia"},
			wantSource: SourceSpectral,
			wantHex:    "#ffcc6f",
		},
		{
			name:       "unknown class falls through to temperature",
			star:       astro.Star{SpType: "DA2", TempK: astro.Ptr(25000.0)},
			wantSource: SourceTemperature,
			wantHex:    "#9db4ff",
		},
		{
			name:       "temperature beats b-v",
			star:       astro.Star{TempK: astro.Ptr(1500.0), BV: astro.Ptr(-0.5)},
			wantSource: SourceTemperature,
			wantHex:    "#ff3800",
		},
		{
			name:       "b-v only",
			star:       astro.Star{BV: astro.Ptr(0.65)},
			wantSource: SourceColorIndex,
			wantHex:    "#ffedd8",
		},
		{
			name:       "nothing known",
			star:       astro.Star{},
			wantSource: SourceDefault,
			wantHex:    "#ffffff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, src := BaseColor(tt.star)
			if src != tt.wantSource {
				t.Errorf("source = %v, want %v", src, tt.wantSource)
			}
			if c.Hex() != tt.wantHex {
				t.Errorf("color = %s, want %s", c.Hex(), tt.wantHex)
			}
		})
	}
}

func TestTemperatureColor_Buckets(t *testing.T) {
	tests := []struct {
		temp float64
		want string
	}{
		{1000, "#ff3800"},
		{1999, "#ff3800"},
		{2000, "#ff8912"},
		{5778, "#ffdbba"},
		{9999, "#f8f7ff"},
		{10000, "#cad7ff"},
		{29999, "#9db4ff"},
		{30000, "#9bb0ff"},
		{50000, "#9bb0ff"},
	}

	for _, tt := range tests {
		c, ok := TemperatureColor(astro.Star{TempK: astro.Ptr(tt.temp)})
		if !ok {
			t.Fatalf("TemperatureColor(%v) not resolved", tt.temp)
		}
		if c.Hex() != tt.want {
			t.Errorf("TemperatureColor(%v) = %s, want %s", tt.temp, c.Hex(), tt.want)
		}
	}

	if _, ok := TemperatureColor(astro.Star{}); ok {
		t.Error("TemperatureColor without temperature should not resolve")
	}
}

func TestColorIndexColor_Buckets(t *testing.T) {
	tests := []struct {
		bv   float64
		want string
	}{
		{-0.4, "#9bb0ff"},
		{-0.3, "#aabfff"},
		{0.0, "#e4e8ff"},
		{0.59, "#fff4ea"},
		{1.0, "#ffc48a"},
		{1.6, "#ff9d4a"},
		{2.5, "#ff9d4a"},
	}

	for _, tt := range tests {
		c, ok := ColorIndexColor(astro.Star{BV: astro.Ptr(tt.bv)})
		if !ok {
			t.Fatalf("ColorIndexColor(%v) not resolved", tt.bv)
		}
		if c.Hex() != tt.want {
			t.Errorf("ColorIndexColor(%v) = %s, want %s", tt.bv, c.Hex(), tt.want)
		}
	}
}

func TestSpectralColor_AllClasses(t *testing.T) {
	// Hotter classes are bluer: blue minus red decreases along OBAFGKM.
	prev := 2.0
	for _, sp := range []string{"O5", "B0", "A0", "F0", "G0", "K0", "M0"} {
		c, ok := SpectralColor(astro.Star{SpType: sp})
		if !ok {
			t.Fatalf("SpectralColor(%q) not resolved", sp)
		}
		if d := c.B - c.R; d >= prev {
			t.Errorf("class %s not redder than the previous one (B-R=%v)", sp, d)
		} else {
			prev = d
		}
	}

	for _, sp := range []string{"", "C5", "WC8", "S3"} {
		if _, ok := SpectralColor(astro.Star{SpType: sp}); ok {
			t.Errorf("SpectralColor(%q) should not resolve", sp)
		}
	}
}

func TestWhiteIsWhite(t *testing.T) {
	if !White.AlmostEqualRgb(colorful.Color{R: 1, G: 1, B: 1}) {
		t.Errorf("White = %v", White)
	}
}
