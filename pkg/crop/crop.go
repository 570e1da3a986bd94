// Package crop trims an RGBA buffer down to the smallest rectangle that
// still contains every non-transparent pixel.
package crop

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrEmpty is returned when every pixel of the buffer is transparent.
	ErrEmpty = errors.New("crop: no visible pixels")

	// ErrMalformed is returned when the buffer does not hold width*height
	// RGBA pixels.
	ErrMalformed = errors.New("crop: malformed buffer")
)

// Func is the signature of an auto-crop implementation. Auto satisfies it.
type Func func(width, height int, rgba []byte) (Result, error)

// Result is a cropped buffer and where it sat on the original canvas.
type Result struct {
	TopLeft     image.Point // first visible column/row
	BottomRight image.Point // last visible column/row, inclusive
	Width       int
	Height      int
	Pix         []byte // Width*Height*4 bytes
}

// Bounds returns the crop rectangle in canvas coordinates.
func (r Result) Bounds() image.Rectangle {
	return image.Rect(r.TopLeft.X, r.TopLeft.Y, r.TopLeft.X+r.Width, r.TopLeft.Y+r.Height)
}

// Auto finds the bounding box of all pixels with a non-zero alpha and copies
// that region into a new tightly packed buffer.
func Auto(width, height int, rgba []byte) (Result, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return Result{}, fmt.Errorf("%w: %dx%d canvas with %d bytes", ErrMalformed, width, height, len(rgba))
	}

	src := &image.RGBA{Pix: rgba, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}

	box, ok := visibleBounds(src)
	if !ok {
		return Result{}, ErrEmpty
	}

	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Copy(dst, image.Point{}, src, box, draw.Src, nil)

	return Result{
		TopLeft:     box.Min,
		BottomRight: box.Max.Sub(image.Pt(1, 1)),
		Width:       box.Dx(),
		Height:      box.Dy(),
		Pix:         dst.Pix,
	}, nil
}

func visibleBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := -1, -1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
