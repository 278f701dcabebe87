package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Module (box) size bounds in pixels. Below 6 the symbol gets unreliable
	// on thermal receipt printers, above 16 it wastes paper.
	MinBoxSize     = 6
	MaxBoxSize     = 16
	DefaultBoxSize = 10
)

// Generator renders survey URLs as QR symbols. Recovery level Q tolerates
// roughly 25% symbol damage, enough to survive print degradation, and the
// encoder includes a 4-module quiet zone.
type Generator struct {
	boxSize int
}

func NewGenerator(boxSize int) *Generator {
	if boxSize < MinBoxSize {
		boxSize = MinBoxSize
	}
	if boxSize > MaxBoxSize {
		boxSize = MaxBoxSize
	}
	return &Generator{boxSize: boxSize}
}

func (g *Generator) BoxSize() int {
	return g.boxSize
}

// PNG renders the URL as a raster image, boxSize pixels per module.
func (g *Generator) PNG(url string) ([]byte, error) {
	q, err := g.encode(url)
	if err != nil {
		return nil, err
	}

	// Negative size asks the encoder for a fixed pixel count per module
	// instead of a fixed overall image size.
	png, err := q.PNG(-g.boxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render PNG: %w", err)
	}
	return png, nil
}

func (g *Generator) encode(url string) (*qrcode.QRCode, error) {
	if url == "" {
		return nil, fmt.Errorf("no URL to encode")
	}
	q, err := qrcode.New(url, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR symbol: %w", err)
	}
	return q, nil
}
