package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize is used when SVG has no usable viewBox.
const defaultSVGSize = 600

// maxRasterDim limits rasterized dimensions, huge viewBox values would
// otherwise allocate enormous RGBA buffers.
var maxRasterDim = 4000

// RasterizeSVG renders SVG onto white background. When width is positive
// result is scaled to it keeping aspect ratio, otherwise intrinsic viewBox
// size is used.
func RasterizeSVG(data []byte, width int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w, h := intrW, intrH
	if width > 0 {
		w = width
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	}
	w, h = clampDims(max(w, 1), max(h, 1), maxRasterDim)

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// clampDims scales w and h down so neither exceeds limit, preserving aspect
// ratio.
func clampDims(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	s := min(float64(limit)/float64(w), float64(limit)/float64(h))
	return max(int(math.Round(float64(w)*s)), 1), max(int(math.Round(float64(h)*s)), 1)
}
