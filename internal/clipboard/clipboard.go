// Package clipboard copies rendered text to the system clipboard.
package clipboard

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/dpshade/pocket-notes/internal/errors"
)

// CopiedMessage is the acknowledgment shown after a successful copy
const CopiedMessage = "Copied to clipboard!"

// Writer puts text on a clipboard
type Writer interface {
	WriteAll(text string) error
}

// System is the OS clipboard
type System struct{}

// WriteAll copies text to the OS clipboard
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return NewClipboardError()
	}
	return clipboard.WriteAll(text)
}

// NewClipboardError creates a CLIPBOARD_UNAVAILABLE error with installation instructions
func NewClipboardError() *errors.AppError {
	return errors.ClipboardError(GetInstallInstructions()).WithContext("os", runtime.GOOS)
}

// IsClipboardAvailable reports whether a clipboard utility was found
func IsClipboardAvailable() bool {
	return !clipboard.Unsupported
}

// Copy copies text to the system clipboard
func Copy(text string) error {
	return CopyTo(System{}, text)
}

// CopyTo copies text with w. Failures other than a missing clipboard are
// wrapped as CLIPBOARD_FAILED.
func CopyTo(w Writer, text string) error {
	err := w.WriteAll(text)
	if err == nil {
		return nil
	}
	if errors.HasCode(err, errors.ErrCodeClipboardUnavailable) {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeClipboardFailed, "failed to copy to clipboard")
}

// CopyWithFallback copies text and returns the acknowledgment to show
func CopyWithFallback(text string) (string, error) {
	return CopyWithFallbackTo(System{}, text)
}

// CopyWithFallbackTo is CopyWithFallback with an explicit writer
func CopyWithFallbackTo(w Writer, text string) (string, error) {
	if err := CopyTo(w, text); err != nil {
		return "", err
	}
	return CopiedMessage, nil
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "no clipboard utility found. Install one of:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
