package qr

import (
	"bytes"
	"strings"
	"testing"
)

const testURL = "https://pt.surveymonkey.com/r/9B9GS555?store_id=045&order_id=123456"

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestNewGeneratorClampsBoxSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below minimum", 1, MinBoxSize},
		{"zero", 0, MinBoxSize},
		{"within range", 10, 10},
		{"above maximum", 40, MaxBoxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewGenerator(tt.in).BoxSize(); got != tt.want {
				t.Errorf("BoxSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPNG(t *testing.T) {
	g := NewGenerator(DefaultBoxSize)

	png, err := g.PNG(testURL)
	if err != nil {
		t.Fatalf("PNG() error: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("PNG output missing magic header, got % x", png[:8])
	}

	again, err := g.PNG(testURL)
	if err != nil {
		t.Fatalf("PNG() error: %v", err)
	}
	if !bytes.Equal(png, again) {
		t.Error("PNG output not deterministic for the same URL")
	}
}

func TestSVG(t *testing.T) {
	g := NewGenerator(DefaultBoxSize)

	svg, err := g.SVG(testURL)
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}

	s := string(svg)
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("SVG output missing XML declaration")
	}
	if !strings.Contains(s, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("SVG output missing svg root element")
	}
	if !strings.HasSuffix(s, "</svg>") {
		t.Error("SVG output not closed")
	}
	if !strings.Contains(s, `fill="#000000"`) {
		t.Error("SVG output has no dark modules")
	}
}

func TestEmptyURLRejected(t *testing.T) {
	g := NewGenerator(DefaultBoxSize)

	if _, err := g.PNG(""); err == nil {
		t.Error("PNG(\"\") expected error")
	}
	if _, err := g.SVG(""); err == nil {
		t.Error("SVG(\"\") expected error")
	}
}
