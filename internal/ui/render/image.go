package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpix/internal/imaging"
)

// upperHalfBlock paints the top half of a cell in the foreground colour and
// leaves the bottom half to the background, giving two pixels per cell.
const upperHalfBlock = '▀'

// placement is where a scaled image lands inside a cell area.
type placement struct {
	x, y          int // top-left cell
	width, height int // scaled size in pixels; height is twice the cell rows
}

func (p placement) cellRows() int {
	return (p.height + 1) / 2
}

// placeImage fits an image of imgW x imgH pixels into cols x rows cells and
// centres it. Images smaller than the area keep their size.
func placeImage(imgW, imgH, cols, rows int) (placement, bool) {
	if imgW <= 0 || imgH <= 0 || cols <= 0 || rows <= 0 {
		return placement{}, false
	}
	w, h := imaging.FitWithin(imgW, imgH, cols, rows*2)
	p := placement{width: w, height: h}
	p.x = (cols - w) / 2
	p.y = (rows - p.cellRows()) / 2
	return p, true
}

// drawImage blits img into the area starting at row top using nearest
// neighbour sampling.
func (r *Renderer) drawImage(img *imaging.Image, top, cols, rows int) {
	if img == nil || !img.Valid() {
		return
	}
	p, ok := placeImage(img.Width, img.Height, cols, rows)
	if !ok {
		return
	}

	base := tcell.StyleDefault.Background(r.theme.Background)
	srcX := make([]int, p.width)
	for cx := range srcX {
		srcX[cx] = cx * img.Width / p.width
	}

	for cy := 0; cy < p.cellRows(); cy++ {
		upper := 2 * cy
		lower := upper + 1
		upperY := upper * img.Height / p.height
		lowerY := -1
		if lower < p.height {
			lowerY = lower * img.Height / p.height
		}

		for cx, sx := range srcX {
			style := base.Foreground(pixelColor(img, sx, upperY))
			if lowerY >= 0 {
				style = style.Background(pixelColor(img, sx, lowerY))
			}
			r.screen.SetContent(p.x+cx, top+p.y+cy, upperHalfBlock, nil, style)
		}
	}
}

func pixelColor(img *imaging.Image, x, y int) tcell.Color {
	red, green, blue := img.RGB(x, y)
	return tcell.NewRGBColor(int32(red), int32(green), int32(blue))
}
