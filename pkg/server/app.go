package server

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"CoinScope/internal/handler/cli"
	"CoinScope/internal/repository"
	"CoinScope/internal/usecase"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
)

// Run modes.
const (
	ModeMenu  = "menu"
	ModeServe = "serve"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	store      *repository.SeriesStore
	reloader   *usecase.Reloader
	menu       *cli.Menu
	httpServer *xhttp.Server

	stdin  io.Reader
	stdout io.Writer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	store *repository.SeriesStore,
	reloader *usecase.Reloader,
	menu *cli.Menu,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		store:      store,
		reloader:   reloader,
		menu:       menu,
		httpServer: httpServer,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
}

// SetIO replaces the terminal used by menu mode.
func (a *App) SetIO(in io.Reader, out io.Writer) { a.stdin, a.stdout = in, out }

// Run loads the dataset and blocks in the requested mode until ctx is done
// or the menu is quit.
func (a *App) Run(ctx context.Context, mode string) error {
	rep, err := a.store.Reload(ctx)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	a.l.Info("dataset ready",
		applogger.String("source", a.cfg.Data.Source),
		applogger.Int("loaded", len(rep.Loaded)),
		applogger.Int("skipped", len(rep.Skipped)),
		applogger.Strings("symbols", a.store.Symbols()),
		applogger.Duration("took", rep.Duration),
	)

	switch mode {
	case ModeMenu, "":
		return a.menu.Run(ctx, a.stdin, a.stdout)
	case ModeServe:
		return a.serve(ctx)
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", mode, ModeMenu, ModeServe)
	}
}

func (a *App) serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.reloader.Start()
	defer a.reloader.Stop()

	g.Go(a.httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.l.Info("shutting down...")
		return a.httpServer.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.l.Info("shutdown complete")
	return nil
}
