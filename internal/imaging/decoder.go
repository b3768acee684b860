package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedFormat reports content that is not a decodable image.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrBackendUnavailable reports that the decode backend could not run the request.
	ErrBackendUnavailable = errors.New("decode backend unavailable")
)

// Request describes one decode job. Zero target dimensions mean "no limit".
type Request struct {
	Path         string
	Data         []byte
	TargetWidth  int
	TargetHeight int
}

// Decoder turns encoded bytes into an Image. Implementations must be safe for
// concurrent use and must not retain Request.Data after returning.
type Decoder interface {
	Decode(ctx context.Context, req Request) (*Image, error)
}

// NativeDecoder decodes in the calling goroutine using the registered Go codecs.
type NativeDecoder struct{}

// NewNativeDecoder returns the in-process decoder.
func NewNativeDecoder() *NativeDecoder {
	return &NativeDecoder{}
}

// Decode sniffs, decodes and downscales req.Data.
func (d *NativeDecoder) Decode(ctx context.Context, req Request) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", req.Path, ErrUnsupportedFormat)
	}

	kind, err := filetype.Match(req.Data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(req.Data) {
		return nil, fmt.Errorf("%s: %w", req.Path, ErrUnsupportedFormat)
	}

	src, _, err := image.Decode(bytes.NewReader(req.Data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %s: %w", req.Path, kind.Extension, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decode %s: %w", req.Path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return FromImage(scaleToFit(src, req.TargetWidth, req.TargetHeight)), nil
}

// FitWithin returns the largest size with the aspect ratio of w x h that fits
// in maxW x maxH. It never enlarges, and a non-positive bound is ignored.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1 {
		return w, h
	}
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
