package textutil

import (
	"strings"
	"unicode"
)

// Invisible bidi and zero-width runes. A file name containing them can look
// like a different name, so they are drawn as visible labels.
var invisibleRuneLabels = map[rune]string{
	0x00AD: "⟪SHY⟫",
	0x061C: "⟪ALM⟫",
	0x180E: "⟪MVS⟫",
	0x200B: "⟪ZWSP⟫",
	0x200C: "⟪ZWNJ⟫",
	0x200D: "⟪ZWJ⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x2028: "⟪LSEP⟫",
	0x2029: "⟪PSEP⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2060: "⟪WJ⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0x206A: "⟪ISS⟫",
	0x206B: "⟪ASS⟫",
	0x206C: "⟪IAFS⟫",
	0x206D: "⟪AAFS⟫",
	0x206E: "⟪NADS⟫",
	0x206F: "⟪NODS⟫",
	0xFEFF: "⟪BOM⟫",
}

// SanitizeTerminalText makes text taken from the file system safe to draw on
// one screen row. Whitespace controls become spaces, other C0 and C1 controls
// become '?', and invisible formatting runes are labelled.
func SanitizeTerminalText(text string) string {
	first := strings.IndexFunc(text, needsReplacement)
	if first < 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	b.WriteString(text[:first])
	for _, r := range text[first:] {
		if label, ok := invisibleRuneLabels[r]; ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsReplacement(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	_, ok := invisibleRuneLabels[r]
	return ok
}
