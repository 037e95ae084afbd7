package clipboard

import (
	stderrors "errors"
	"runtime"
	"testing"

	"github.com/dpshade/pocket-notes/internal/errors"
)

type fakeWriter struct {
	got string
	err error
}

func (f *fakeWriter) WriteAll(text string) error {
	f.got = text
	return f.err
}

func TestClipboardError(t *testing.T) {
	err := NewClipboardError()

	if err.Code != errors.ErrCodeClipboardUnavailable {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeClipboardUnavailable, err.Code)
	}
	if err.Context["os"] != runtime.GOOS {
		t.Errorf("Expected OS to be %s, got %v", runtime.GOOS, err.Context["os"])
	}
	if err.Message == "" {
		t.Error("Error message should not be empty")
	}
}

func TestCopyWithFallbackTo(t *testing.T) {
	w := &fakeWriter{}

	msg, err := CopyWithFallbackTo(w, "Title: Flu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "Copied to clipboard!" {
		t.Errorf("Expected 'Copied to clipboard!', got '%s'", msg)
	}
	if w.got != "Title: Flu" {
		t.Errorf("Expected clipboard to hold text, got %q", w.got)
	}
}

func TestCopyToWrapsFailures(t *testing.T) {
	_, err := CopyWithFallbackTo(&fakeWriter{err: stderrors.New("exit status 1")}, "x")

	if !errors.HasCode(err, errors.ErrCodeClipboardFailed) {
		t.Errorf("Expected CLIPBOARD_FAILED, got %v", err)
	}
}

func TestCopyToKeepsUnavailable(t *testing.T) {
	err := CopyTo(&fakeWriter{err: NewClipboardError()}, "x")

	if !errors.HasCode(err, errors.ErrCodeClipboardUnavailable) {
		t.Errorf("Expected CLIPBOARD_UNAVAILABLE, got %v", err)
	}
	if errors.HasCode(err, errors.ErrCodeClipboardFailed) {
		t.Error("Unavailable clipboard should not be wrapped as a failure")
	}
}

func TestGetInstallInstructions(t *testing.T) {
	if GetInstallInstructions() == "" {
		t.Error("Install instructions should not be empty")
	}
}
