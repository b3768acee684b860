package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageStripsStridePadding(t *testing.T) {
	parent := image.NewRGBA(image.Rect(0, 0, 5, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			parent.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	sub := parent.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	if sub.Stride == 2*4 {
		t.Fatal("sub-image should keep the parent stride for this test to be meaningful")
	}

	img := FromImage(sub)
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", img.Width, img.Height)
	}
	if len(img.Pix) != 2*2*BytesPerPixel {
		t.Fatalf("expected tight buffer of 12 bytes, got %d", len(img.Pix))
	}

	want := [][3]uint8{
		{10, 10, 7}, {20, 10, 7},
		{10, 20, 7}, {20, 20, 7},
	}
	for i, px := range want {
		x, y := i%2, i/2
		r, g, b := img.RGB(x, y)
		if r != px[0] || g != px[1] || b != px[2] {
			t.Fatalf("pixel (%d,%d): expected %v, got %d,%d,%d", x, y, px, r, g, b)
		}
	}
}

func TestFromImageCompositesAlphaOverBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 0, A: 0})

	img := FromImage(src)
	if r, g, b := img.RGB(0, 0); r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected fully transparent pixel to become black, got %d,%d,%d", r, g, b)
	}
}

func TestRGBOutOfRangeIsBlack(t *testing.T) {
	img := NewImage(1, 1)
	img.Pix[0] = 9
	if r, _, _ := img.RGB(0, 0); r != 9 {
		t.Fatalf("expected stored red 9, got %d", r)
	}
	if r, g, b := img.RGB(5, 5); r|g|b != 0 {
		t.Fatalf("expected black outside bounds, got %d,%d,%d", r, g, b)
	}
	var nilImg *Image
	if nilImg.SizeBytes() != 0 {
		t.Fatal("nil image should report zero bytes")
	}
}
