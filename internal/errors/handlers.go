// Package errors/handlers provides interface-specific error handling.
//
// ERROR FLOW:
// 1. Business logic generates AppError
// 2. Interface-specific handler logs and formats the error
// 3. Formatted error is shown to the user
//
// USAGE PATTERNS:
// - CLI: NewCLIErrorHandler(...).FormatError() for the final stderr line
// - TUI: NewTUIErrorHandler(...).FormatError() + GetErrorStyle() for the status bar
package errors

import (
	"fmt"
	"log/slog"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for the CLI interface
type CLIErrorHandler struct {
	Verbose bool
	Logger  *slog.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, logger *slog.Logger) *CLIErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		Logger:  logger,
	}
}

// HandleError logs the error and returns it formatted for display
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logError(h.Logger, appErr)
	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if field := appErr.Field(); field != "" && appErr.Category == CategoryValidation {
		message = fmt.Sprintf("%s (field: %s)", message, field)
	}
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("INFO: %s", message)
	default:
		return message
	}
}

// TUIErrorHandler handles errors for the TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	Logger      *slog.Logger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool, logger *slog.Logger) *TUIErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		Logger:      logger,
	}
}

// HandleError logs the error and returns it unchanged for display
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logError(h.Logger, appErr)
	return appErr
}

// FormatError formats an error for a single status line
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}
	return message
}

// GetErrorStyle returns an icon and a hex colour for the error severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return "!!", "#ff0000"
	case SeverityError:
		return "x", "#ff6b6b"
	case SeverityWarning:
		return "!", "#feca57"
	case SeverityInfo:
		return "i", "#48cae4"
	default:
		return "x", "#ff6b6b"
	}
}

func logError(logger *slog.Logger, appErr *AppError) {
	attrs := []any{
		"code", appErr.Code,
		"category", appErr.Category,
		"severity", appErr.Severity,
	}
	if appErr.Cause != nil {
		attrs = append(attrs, "cause", appErr.Cause.Error())
	}
	for k, v := range appErr.Context {
		attrs = append(attrs, k, v)
	}

	switch appErr.Severity {
	case SeverityCritical, SeverityError:
		logger.Error(appErr.Message, attrs...)
	default:
		logger.Warn(appErr.Message, attrs...)
	}
}
