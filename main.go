package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpshade/pocket-notes/internal/cli"
	"github.com/dpshade/pocket-notes/internal/ui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := cli.NewApp(version, cli.WithTUI(runTUI))
	code := cli.Execute(ctx, app, os.Args[1:])
	stop()
	os.Exit(code)
}

func runTUI(ctx context.Context, app *cli.App) error {
	cfg := app.Config()
	return ui.Run(ctx, app.Service(), ui.Options{
		PageSizes: cfg.Query.PageSizes,
		PageSize:  cfg.Query.PageSize,
		PrefsDir:  cfg.DataDir,
		Clipboard: app.Clipboard,
		Logger:    app.Logger(),
	})
}
