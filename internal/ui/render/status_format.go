package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	statepkg "github.com/kk-code-lab/rpix/internal/state"
)

// formatStatusText describes the current image and the engine's cache state.
func formatStatusText(state *statepkg.AppState) string {
	var parts []string
	if f := state.CurrentFile(); f != nil {
		parts = append(parts, filepath.Base(f.Path))
		if img := state.View.Image; img != nil && state.View.Path == f.Path {
			parts = append(parts, fmt.Sprintf("%dx%d", img.Width, img.Height))
		}
		parts = append(parts, formatBytes(f.Size))
	}
	if state.Cache != nil {
		parts = append(parts, fmt.Sprintf("cache %d/%d", state.Cache.Len(), state.Cache.Cap()))
	}
	if n := state.PendingCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("pending %d", n))
	}
	if d := state.Stats.LastDecode; d > 0 {
		parts = append(parts, formatDurationShort(d))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " · ")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/float64(div)))
	return fmt.Sprintf("%s %ciB", value, "KMGTPE"[exp])
}

func trimTrailingZero(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "0"), ".")
}

func formatDurationShort(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return trimTrailingZero(fmt.Sprintf("%.1fs", d.Seconds()))
	case d < time.Hour:
		return trimTrailingZero(fmt.Sprintf("%.1fm", d.Minutes()))
	default:
		return trimTrailingZero(fmt.Sprintf("%.1fh", d.Hours()))
	}
}
