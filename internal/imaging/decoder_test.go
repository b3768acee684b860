package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestNativeDecoderDecodesPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(2, 1, color.NRGBA{B: 200, A: 255})

	img, err := NewNativeDecoder().Decode(context.Background(), Request{Path: "a.png", Data: encodePNG(t, src)})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("expected 3x2, got %dx%d", img.Width, img.Height)
	}
	if !img.Valid() {
		t.Fatalf("expected tight RGB buffer, got %d bytes", len(img.Pix))
	}
	if r, g, b := img.RGB(0, 0); r != 255 || g != 0 || b != 0 {
		t.Fatalf("expected red at origin, got %d,%d,%d", r, g, b)
	}
	if r, g, b := img.RGB(2, 1); r != 0 || g != 0 || b != 200 {
		t.Fatalf("expected blue at (2,1), got %d,%d,%d", r, g, b)
	}
}

func TestNativeDecoderDownscalesToTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	img, err := NewNativeDecoder().Decode(context.Background(), Request{
		Path:         "wide.png",
		Data:         encodePNG(t, src),
		TargetWidth:  100,
		TargetHeight: 100,
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Width != 100 || img.Height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", img.Width, img.Height)
	}
}

func TestNativeDecoderRejectsNonImage(t *testing.T) {
	_, err := NewNativeDecoder().Decode(context.Background(), Request{Path: "notes.png", Data: []byte("plain text, not pixels")})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = NewNativeDecoder().Decode(context.Background(), Request{Path: "empty.png"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for empty data, got %v", err)
	}
}

func TestNativeDecoderReportsCorruptData(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	truncated := data[:len(data)/2]

	_, err := NewNativeDecoder().Decode(context.Background(), Request{Path: "broken.png", Data: truncated})
	if err == nil {
		t.Fatal("expected error for truncated png")
	}
}

func TestNativeDecoderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if _, err := NewNativeDecoder().Decode(ctx, Request{Path: "x.png", Data: data}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"no bounds", 640, 480, 0, 0, 640, 480},
		{"already fits", 100, 50, 200, 200, 100, 50},
		{"width bound", 400, 200, 100, 0, 100, 50},
		{"height bound", 200, 400, 0, 100, 50, 100},
		{"both bounds pick smaller", 1000, 500, 300, 100, 200, 100},
		{"never below one pixel", 10000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}
