package media

import (
	"image"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Surface is the portrait canvas scenes are painted on
type Surface struct {
	dc *gg.Context
}

// NewSurface creates a blank surface of the given size
func NewSurface(width, height int) *Surface {
	return &Surface{dc: gg.NewContext(width, height)}
}

// Size returns the surface dimensions
func (s *Surface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

// Draw runs paint against the surface's drawing context
func (s *Surface) Draw(paint func(dc *gg.Context)) {
	paint(s.dc)
}

// Snapshot returns a copy of the current pixels
func (s *Surface) Snapshot() *image.RGBA {
	src := s.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return dst
}
