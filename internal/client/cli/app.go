package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophrelease/internal/client/client"
	"github.com/dmitrijs2005/gophrelease/internal/client/config"
	"github.com/dmitrijs2005/gophrelease/internal/client/preview"
	"github.com/dmitrijs2005/gophrelease/internal/client/services"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/devices"
	"github.com/dmitrijs2005/gophrelease/internal/logging"
	"github.com/dmitrijs2005/gophrelease/internal/netx"
	"github.com/dmitrijs2005/gophrelease/internal/scheduler"
)

type App struct {
	config  *config.Config
	console *services.Console
	task    *scheduler.Task
	preview *preview.Server
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	devicesEnabled bool
	closers        []func() error

	pass *passphrasePrompt
}

// NewApp opens local storage and wires every component named in c. in and
// out are the terminal.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	a := &App{config: c, reader: bufio.NewReader(in), out: out}
	a.pass = newPassphrasePrompt(out)

	logger, err := a.newLogger()
	if err != nil {
		return nil, err
	}
	a.logger = logger

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.closers = append(a.closers, repos.Close)

	tokens, err := services.NewTokenStore(c.TokenStorage, repos.Metadata, a.pass)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	settings := services.NewSettingsService(repos.Metadata, tokens)

	httpClient := netx.NewHTTPClient(c.RequestTimeout)
	gh := client.NewGitHubClient(httpClient,
		client.WithBaseURL(c.GitHubAPIURL),
		client.WithConflictRetries(c.ConflictRetries, c.ConflictRetryDelay),
		client.WithLogger(logger),
	)

	var mirror services.Mirror
	s3cfg := client.S3Config(c.S3)
	if s3cfg.Enabled() {
		m, err := client.NewS3Mirror(ctx, s3cfg)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		mirror = m
	}

	source, err := a.deviceSource(httpClient)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	registry := devices.NewRegistry(source,
		devices.WithCache(repos.DeviceCache),
		devices.WithLogger(logger),
	)

	a.console = services.NewConsole(services.ConsoleDeps{
		Metadata:   repos.Metadata,
		History:    repos.History,
		Settings:   settings,
		Publisher:  gh,
		Mirror:     mirror,
		Devices:    registry,
		Logger:     logger,
		ExportPath: c.ExportPath,
	})
	if err := a.console.Load(ctx); err != nil {
		a.closeAll()
		return nil, err
	}

	a.task = scheduler.NewTask("refresh", c.RefreshInterval, a.refreshTick, scheduler.WithLogger(logger))
	if c.PreviewAddr != "" {
		a.preview = preview.NewServer(c.PreviewAddr, a.console, logger)
	}
	return a, nil
}

func (a *App) newLogger() (logging.Logger, error) {
	var w io.Writer = os.Stderr
	if a.config.LogFile != "" {
		f, err := os.OpenFile(a.config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		w = f
	}
	return logging.New(w, a.config.LogLevel, a.config.LogFormat)
}

func (a *App) deviceSource(doer netx.Doer) (devices.Source, error) {
	switch {
	case a.config.DeviceFeedURL != "":
		a.devicesEnabled = true
		return devices.NewHTTPSource(a.config.DeviceFeedURL, []byte(a.config.DeviceFeedSecret), doer), nil
	case a.config.DeviceDSN != "":
		db, err := devices.OpenPostgres(a.config.DeviceDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.devicesEnabled = true
		return devices.NewPostgresSource(db), nil
	}
	return devices.DisabledSource{}, nil
}

// refreshTick is the scheduled refresh. Without a configured device feed
// the source error is expected and not reported.
func (a *App) refreshTick(ctx context.Context) error {
	_, err := a.console.Refresh(ctx)
	if err != nil && !a.devicesEnabled && errors.Is(err, common.ErrSourceUnavailable) {
		return nil
	}
	return err
}

// autoRefreshWanted resolves the saved toggle, falling back to the config.
func (a *App) autoRefreshWanted(ctx context.Context) bool {
	on, found, err := a.console.AutoRefresh(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not read auto-refresh preference", "error", err)
	}
	if err != nil || !found {
		return a.config.AutoRefresh
	}
	return on
}

// startPreview binds the preview address and serves it in g. The preview
// is optional: a bind or serve failure is reported and the console goes on.
func (a *App) startPreview(ctx context.Context, g *errgroup.Group) {
	if a.preview == nil {
		return
	}
	l, err := a.preview.Listen()
	if err != nil {
		a.logger.Warn(ctx, "preview server disabled", "address", a.config.PreviewAddr, "error", err)
		a.printf("Preview disabled: %s\n", err)
		a.preview = nil
		return
	}
	srv := a.preview
	g.Go(func() error {
		if err := srv.Serve(ctx, l); err != nil {
			a.logger.Error(ctx, "preview server stopped", "error", err)
		}
		return nil
	})
}

// Run starts the background parts, then the REPL. It returns when the user
// exits or when ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	a.startPreview(gctx, g)
	if a.autoRefreshWanted(gctx) {
		a.task.Start(gctx)
	}

	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		a.Root(gctx)
	}()

	select {
	case <-replDone:
	case <-gctx.Done():
	}
	cancel()
	a.task.Stop()
	return g.Wait()
}

// Close stops the scheduler and releases storage. Safe to call twice.
func (a *App) Close(ctx context.Context) {
	if a.task != nil {
		a.task.Stop()
	}
	if a.console != nil {
		_ = a.console.Close(ctx)
	}
	a.closeAll()

	if a.pass != nil {
		a.pass.Forget()
	}
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
