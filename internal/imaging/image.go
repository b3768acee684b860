package imaging

import (
	"image"
	"image/color"
)

// BytesPerPixel is the size of one packed RGB pixel.
const BytesPerPixel = 3

// Image is a decoded picture stored as tightly packed RGB rows.
// Values are shared between the cache and the display and must not be mutated
// after construction.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a black image of the given size.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// RGB returns the pixel at (x, y). Out-of-range coordinates yield black.
func (img *Image) RGB(x, y int) (r, g, b uint8) {
	if img == nil || x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return 0, 0, 0
	}
	i := (y*img.Width + x) * BytesPerPixel
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// SizeBytes reports the resident size of the pixel buffer.
func (img *Image) SizeBytes() int {
	if img == nil {
		return 0
	}
	return len(img.Pix)
}

// Valid reports whether the buffer length matches the declared dimensions.
func (img *Image) Valid() bool {
	return img != nil && img.Width >= 0 && img.Height >= 0 &&
		len(img.Pix) == img.Width*img.Height*BytesPerPixel
}

// FromImage converts any image.Image into packed RGB. Row padding and alpha
// are dropped; translucent pixels end up composited over black.
func FromImage(src image.Image) *Image {
	if src == nil {
		return NewImage(0, 0)
	}
	bounds := src.Bounds()
	dst := NewImage(bounds.Dx(), bounds.Dy())

	if rgba, ok := src.(*image.RGBA); ok {
		copyRGBA(dst, rgba)
		return dst
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			dst.Pix[i] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			i += BytesPerPixel
		}
	}
	return dst
}

// copyRGBA walks a premultiplied RGBA buffer row by row using its stride so
// sub-images and padded rows collapse into a tight buffer.
func copyRGBA(dst *Image, src *image.RGBA) {
	out := 0
	for y := 0; y < dst.Height; y++ {
		row := y * src.Stride
		for x := 0; x < dst.Width; x++ {
			p := row + x*4
			dst.Pix[out] = src.Pix[p]
			dst.Pix[out+1] = src.Pix[p+1]
			dst.Pix[out+2] = src.Pix[p+2]
			out += BytesPerPixel
		}
	}
}
