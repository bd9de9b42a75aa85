package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"sunweather/internal/align"
	"sunweather/internal/suvi"
)

// Composer builds composite frames at a fixed tile geometry.
type Composer struct {
	tileWidth   int
	tileHeight  int
	placeholder *image.RGBA
}

// New constructs a composer with the given cell size.
func New(tileWidth, tileHeight int) *Composer {
	c := &Composer{tileWidth: tileWidth, tileHeight: tileHeight}
	c.placeholder = c.buildPlaceholder()
	return c
}

// CanvasBounds returns the size of the composite raster.
func (c *Composer) CanvasBounds() image.Rectangle {
	return image.Rect(0, 0, c.tileWidth*suvi.GridCols, c.tileHeight*suvi.GridRows)
}

// Compose renders one frame set into a composite raster. Band placement
// follows the canonical grid order regardless of how the frame set was
// assembled.
func (c *Composer) Compose(fs align.FrameSet) (*image.RGBA, error) {
	canvas := image.NewRGBA(c.CanvasBounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, band := range suvi.Bands() {
		row, col := band.GridCell()
		cellRect := image.Rect(
			col*c.tileWidth,
			row*c.tileHeight,
			(col+1)*c.tileWidth,
			(row+1)*c.tileHeight,
		)

		cell := fs.Cells[band]
		if cell.Missing || cell.Image == nil {
			draw.Draw(canvas, cellRect, c.placeholder, image.Point{}, draw.Src)
			continue
		}

		src, err := decode(cell.Image.Path)
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", band, err)
		}
		c.drawTile(canvas, cellRect, src)
	}
	return canvas, nil
}

// drawTile scales src into cellRect preserving aspect ratio, centered on the
// black letterbox background.
func (c *Composer) drawTile(canvas *image.RGBA, cellRect image.Rectangle, src image.Image) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return
	}

	scaleX := float64(c.tileWidth) / float64(srcW)
	scaleY := float64(c.tileHeight) / float64(srcH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	dstW := int(float64(srcW) * scale)
	dstH := int(float64(srcH) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	offsetX := cellRect.Min.X + (c.tileWidth-dstW)/2
	offsetY := cellRect.Min.Y + (c.tileHeight-dstH)/2
	dstRect := image.Rect(offsetX, offsetY, offsetX+dstW, offsetY+dstH)

	xdraw.ApproxBiLinear.Scale(canvas, dstRect, src, srcBounds, xdraw.Src, nil)
}

// buildPlaceholder renders the "no data" tile: a dark field with a dimmer
// inset box marking the absent observation.
func (c *Composer) buildPlaceholder() *image.RGBA {
	tile := image.NewRGBA(image.Rect(0, 0, c.tileWidth, c.tileHeight))
	field := color.RGBA{R: 0x14, G: 0x14, B: 0x18, A: 0xff}
	box := color.RGBA{R: 0x32, G: 0x32, B: 0x3a, A: 0xff}

	draw.Draw(tile, tile.Bounds(), image.NewUniform(field), image.Point{}, draw.Src)

	insetX := c.tileWidth / 4
	insetY := c.tileHeight / 4
	inner := image.Rect(insetX, insetY, c.tileWidth-insetX, c.tileHeight-insetY)
	thickness := c.tileWidth / 64
	if thickness < 1 {
		thickness = 1
	}
	for _, edge := range []image.Rectangle{
		image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+thickness),
		image.Rect(inner.Min.X, inner.Max.Y-thickness, inner.Max.X, inner.Max.Y),
		image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+thickness, inner.Max.Y),
		image.Rect(inner.Max.X-thickness, inner.Min.Y, inner.Max.X, inner.Max.Y),
	} {
		draw.Draw(tile, edge, image.NewUniform(box), image.Point{}, draw.Src)
	}
	return tile
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observation: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode observation %s: %w", path, err)
	}
	return img, nil
}

// WritePNG encodes the composite to path.
func WritePNG(path string, img *image.RGBA) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create composite: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode composite: %w", err)
	}
	return file.Close()
}
