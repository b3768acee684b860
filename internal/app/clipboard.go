package app

import (
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// clipboardTool is an external program that reads the text to copy on stdin.
type clipboardTool struct {
	name string
	args []string
}

// Tried in order. xclip and xsel default to the primary selection.
var (
	windowsClipboardTools = []clipboardTool{
		{name: "clip.exe"},
		{name: "clip"},
		{name: "powershell", args: []string{"-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}},
		{name: "powershell.exe", args: []string{"-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}},
		{name: "pwsh", args: []string{"-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}},
	}
	unixClipboardTools = []clipboardTool{
		{name: "pbcopy"},
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
)

func detectClipboard() ([]string, bool) {
	return detectClipboardInternal(runtime.GOOS, exec.LookPath)
}

// detectClipboardInternal returns the resolved command line of the first
// clipboard tool found on PATH.
func detectClipboardInternal(goos string, lookPath func(string) (string, error)) ([]string, bool) {
	tools := unixClipboardTools
	if strings.EqualFold(goos, "windows") {
		tools = append(append([]clipboardTool{}, windowsClipboardTools...), unixClipboardTools...)
	}
	for _, tool := range tools {
		resolved, err := lookPath(tool.name)
		if err != nil || resolved == "" {
			continue
		}
		return append([]string{resolved}, tool.args...), true
	}
	return nil, false
}

// normalizeClipboardPath gives the path in the platform's native separators.
func normalizeClipboardPath(inputPath string, goos string) string {
	if strings.EqualFold(goos, "windows") {
		return strings.ReplaceAll(filepath.Clean(inputPath), "/", `\`)
	}
	return path.Clean(filepath.ToSlash(inputPath))
}
