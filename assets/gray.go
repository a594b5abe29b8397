package assets

import (
	"image"
	"image/color"
	"image/draw"
)

// toGray returns single channel copy of opaque image which has only gray
// pixels (R==G==B), such images encode to noticeably smaller PNG.
func toGray(img image.Image) (*image.Gray, bool) {
	switch g := img.(type) {
	case *image.Gray:
		return g, true
	case *image.Gray16:
	default:
		if !opaque(img) {
			return nil, false
		}
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.R != c.G || c.G != c.B || c.A != 0xff {
					return nil, false
				}
			}
		}
	}
	dst := image.NewGray(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst, true
}
