package qr

import (
	"bytes"
	"fmt"
)

// SVG renders the URL as a vector image, one user unit per boxSize pixels.
// The encoder's bitmap already carries the quiet zone, so the drawing is a
// plain run-length walk over the modules.
func (g *Generator) SVG(url string) ([]byte, error) {
	q, err := g.encode(url)
	if err != nil {
		return nil, err
	}

	bitmap := q.Bitmap()
	modules := len(bitmap)
	size := modules * g.boxSize

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, modules, modules)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)

	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			run := x
			for run < len(row) && row[run] {
				run++
			}
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="1" fill="#000000"/>`, x, y, run-x)
			x = run
		}
	}

	b.WriteString(`</svg>`)
	return b.Bytes(), nil
}
