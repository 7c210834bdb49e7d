package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// placeholder returns a plain image with msg centred on it. It stands in for
// the chart when there is nothing to plot.
func placeholder(w, h int, msg string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 250, G: 250, B: 250, A: 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255}), Face: face}
	tw := dr.MeasureString(msg).Ceil()
	x := (w - tw) / 2
	if x < 4 {
		x = 4
	}
	y := h/2 + face.Metrics().Ascent.Ceil()/2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(msg)
	return img
}

func writePlaceholder(w io.Writer, width, height int, msg string) error {
	return png.Encode(w, placeholder(width, height, msg))
}
