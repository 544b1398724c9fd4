package render

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// classPalette colours classes by legend position.
var classPalette = []color.NRGBA{
	{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff},
	{R: 0x55, G: 0xa8, B: 0x68, A: 0xff},
	{R: 0xc4, G: 0x4e, B: 0x52, A: 0xff},
	{R: 0x81, G: 0x72, B: 0xb2, A: 0xff},
}

func classColor(i int) color.NRGBA {
	return classPalette[i%len(classPalette)]
}

// translucent returns c at half opacity so overlapping classes stay visible.
func translucent(c color.NRGBA) color.NRGBA {
	c.A = 0x80
	return c
}

// swatch is a legend entry drawn as a filled rectangle.
type swatch struct {
	c color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.c, c.ClipPolygonY(pts))
}
