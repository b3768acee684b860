package textutil

import "testing"

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "holiday.png", 11},
		{"wide runes", "写真", 4},
		{"combining accent", "café", 4},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.text); got != tt.want {
				t.Fatalf("DisplayWidth(%q)=%d want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("写真", 6); got != "写真  " {
		t.Fatalf("expected two spaces of padding, got %q", got)
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Fatalf("expected text unchanged when wider than width, got %q", got)
	}
}
