// Package cli implements the pocket-notes command line.
//
// Every subcommand shares one App. The App loads configuration, opens the
// configured storage backend and builds the Service lazily, the first time a
// command needs it, so `version` and `--help` never touch the data directory.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dpshade/pocket-notes/internal/clipboard"
	"github.com/dpshade/pocket-notes/internal/config"
	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/extractor"
	"github.com/dpshade/pocket-notes/internal/logger"
	"github.com/dpshade/pocket-notes/internal/query"
	"github.com/dpshade/pocket-notes/internal/service"
	"github.com/dpshade/pocket-notes/internal/storage"
)

// LogFileName is the TUI log file inside the data directory
const LogFileName = "pocket-notes.log"

// TUIRunner starts the interactive interface
type TUIRunner func(ctx context.Context, app *App) error

// App holds the state shared by all commands
type App struct {
	Version   string
	Clipboard clipboard.Writer
	RunTUI    TUIRunner

	stdout io.Writer
	stderr io.Writer

	// Global flag values
	configFile string
	dataDir    string
	backend    string
	logLevel   string
	verbose    bool

	cfg     *config.Config
	svc     *service.Service
	store   storage.Backend
	logger  *slog.Logger
	logFile *os.File
}

// AppOption configures an App
type AppOption func(*App)

// WithClipboard sets the clipboard used by `copy`
func WithClipboard(w clipboard.Writer) AppOption {
	return func(a *App) { a.Clipboard = w }
}

// WithOutput redirects command output, mainly for tests
func WithOutput(stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithTUI sets the function run when no subcommand is given
func WithTUI(run TUIRunner) AppOption {
	return func(a *App) { a.RunTUI = run }
}

// NewApp creates an App
func NewApp(version string, opts ...AppOption) *App {
	a := &App{
		Version:   version,
		Clipboard: clipboard.System{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the loaded configuration, or nil before setup
func (a *App) Config() *config.Config {
	return a.cfg
}

// Service returns the template service, or nil before setup
func (a *App) Service() *service.Service {
	return a.svc
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// setup loads configuration and wires storage into a Service. Calling it
// again after a successful setup is a no-op. logToFile sends logs to the log
// file instead of stderr, for the full-screen TUI.
func (a *App) setup(stderr io.Writer, logToFile bool) error {
	if a.svc != nil {
		return nil
	}

	overrides := map[string]any{}
	if a.dataDir != "" {
		overrides["data_dir"] = a.dataDir
	}
	if a.backend != "" {
		overrides["storage.backend"] = a.backend
	}
	if a.logLevel != "" {
		overrides["log.level"] = a.logLevel
	}

	cfg, err := config.Load(a.configFile, overrides)
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logToFile && logPath == "" {
		logPath = filepath.Join(cfg.DataDir, LogFileName)
	}
	w := stderr
	if logPath != "" {
		f, err := logger.OpenFile(logPath)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfig, "cannot open log file").WithContext("path", logPath)
		}
		a.logFile = f
		w = f
	}
	a.logger = logger.Init(cfg.Log.Format, cfg.Log.Level, w)

	backend, err := storage.Open(cfg.Storage.Backend, cfg.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		return errors.StorageError("open", err)
	}

	store := storage.NewTemplateStore(backend, a.logger)
	store.Load()

	docs := extractor.New()
	docs.MaxBytes = cfg.Extract.MaxBytes

	a.cfg = cfg
	a.store = backend
	a.svc = service.New(store,
		service.WithExtractor(extractor.NewLoggingExtractor(docs, a.logger)),
		service.WithVocabulary(cfg.Tags),
		service.WithLogger(a.logger),
	)

	a.logger.Debug("app ready",
		"data_dir", cfg.DataDir,
		"backend", cfg.Storage.Backend,
		"templates", a.svc.Len())
	return nil
}

// Close releases the storage backend and the log file
func (a *App) Close() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
		a.store = nil
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.logFile = nil
	}
	a.svc = nil
	return firstErr
}

func (a *App) pageSize() int {
	if a.cfg != nil && a.cfg.Query.PageSize > 0 {
		return a.cfg.Query.PageSize
	}
	return query.DefaultPageSize
}

func (a *App) darkTheme() bool {
	if a.cfg == nil {
		return true
	}
	prefs, err := config.LoadPreferences(a.cfg.DataDir)
	if err != nil {
		a.logger.Warn("ignoring unreadable preferences", "error", err)
		return true
	}
	return prefs.IsDark()
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil && err == nil {
		err = errors.StorageError("close", closeErr)
	}
	if err != nil {
		handler := errors.NewCLIErrorHandler(app.verbose, app.logger)
		app.logger.Debug("command failed", "error", err)
		fmt.Fprintln(root.ErrOrStderr(), handler.FormatError(err))
		return 1
	}
	return 0
}
