package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background tcell.Color
	Foreground tcell.Color
	HeaderBg   tcell.Color
	HeaderFg   tcell.Color
	FooterBg   tcell.Color
	FooterFg   tcell.Color
	MutedFg    tcell.Color
	ErrorFg    tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background: tcell.ColorDefault,
		Foreground: tcell.ColorDefault,
		HeaderBg:   tcell.Color234,
		HeaderFg:   tcell.Color252,
		FooterBg:   tcell.Color234,
		FooterFg:   tcell.Color252,
		MutedFg:    tcell.ColorLightSlateGray,
		ErrorFg:    tcell.Color203, // soft red
	}
}
