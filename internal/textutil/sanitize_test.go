package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeTerminalTextKeepsPlainNames(t *testing.T) {
	for _, input := range []string{"IMG_0001.jpg", "写真 2024.png", ""} {
		if got := SanitizeTerminalText(input); got != input {
			t.Fatalf("expected %q unchanged, got %q", input, got)
		}
	}
}

func TestSanitizeTerminalTextReplacesControls(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"escape sequence", "bad\x1b[2Jname.png", "bad?[2Jname.png"},
		{"newline and tab", "two\nlines\tpng", "two lines png"},
		{"c1 csi", "x\u009b31my.png", "x?31my.png"},
		{"delete", "a\x7fb", "a?b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTerminalText(tt.input)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitizeTerminalTextLabelsInvisibleRunes(t *testing.T) {
	// An RLO can make "gnp.exe" display as "exe.png".
	input := "photo\u202egnp.exe"
	got := SanitizeTerminalText(input)
	if strings.ContainsRune(got, 0x202E) {
		t.Fatalf("expected override rune to be removed, got %q", got)
	}
	if got != "photo⟪RLO⟫gnp.exe" {
		t.Fatalf("unexpected label output %q", got)
	}

	got = SanitizeTerminalText("a\u200bb\u00adc")
	if !strings.Contains(got, "⟪ZWSP⟫") || !strings.Contains(got, "⟪SHY⟫") {
		t.Fatalf("expected zero-width runes to be labelled, got %q", got)
	}
}
