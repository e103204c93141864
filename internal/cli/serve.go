package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/server"
	"github.com/toyz/docblock/internal/source"
	"github.com/toyz/docblock/pkg/annotation"
)

const shutdownTimeout = 5 * time.Second

func (a *application) serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve annotation lookups over HTTP",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "HTTP engine: echo, gin or fiber",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Rescan changed files while serving",
			},
		},
		Action: a.serve,
	}
}

func (a *application) serve(c *cli.Context) error {
	addr := a.cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	name := a.cfg.Server.Engine
	if c.IsSet("engine") {
		name = c.String("engine")
	}
	engine, err := server.NewEngine(name)
	if err != nil {
		a.log.Report(docerrors.WrapConfigurationError("flags", "validate", err))
		return cli.Exit("", 2)
	}

	ws, err := a.workspace()
	if err != nil {
		return err
	}
	defer a.closeWorkspace(ws)

	result, scanErr := ws.Scan(c.Context, c.Args().Slice())
	if result == nil {
		a.log.Report(scanErr)
		return cli.Exit("", 1)
	}
	if scanErr != nil {
		a.log.Report(scanErr)
	}
	a.log.Summary("Index ready", ws.Summary().Stats())

	srv := server.New(engine, ws.Index().Parser(), result, a.log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchDone := make(chan struct{})
	if c.Bool("watch") {
		w, err := a.newWatcher(ws, defaultDebounce)
		if err != nil {
			return err
		}
		go func() {
			defer close(watchDone)
			_ = w.Run(ctx, func(paths []string) {
				if _, ok := a.refresh(ctx, ws, paths); ok {
					srv.SetLookup(ws.Result())
				}
			})
		}()
	} else {
		close(watchDone)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	select {
	case err = <-errCh:
		stop()
		<-watchDone
		if err != nil {
			a.log.Report(docerrors.Wrap(docerrors.ServerErrorCode, "server failed", err))
			return cli.Exit("", 1)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		a.log.Report(docerrors.Wrap(docerrors.ServerErrorCode, "shutdown failed", err))
	}
	<-errCh
	<-watchDone
	return nil
}

func (a *application) watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Rescan sources whenever they change",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Wait this long for more changes before rescanning",
				Value: defaultDebounce,
			},
		},
		Action: a.watch,
	}
}

func (a *application) watch(c *cli.Context) error {
	format, err := a.format(c)
	if err != nil {
		return err
	}
	ws, err := a.workspace()
	if err != nil {
		return err
	}
	defer a.closeWorkspace(ws)

	result, scanErr := ws.Scan(c.Context, c.Args().Slice())
	if result == nil {
		a.log.Report(scanErr)
		return cli.Exit("", 1)
	}
	if scanErr != nil {
		a.log.Report(scanErr)
	}
	a.log.Summary("Index ready", ws.Summary().Stats())

	w, err := a.newWatcher(ws, c.Duration("debounce"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("watching for changes")
	return w.Run(ctx, func(paths []string) {
		touched, ok := a.refresh(ctx, ws, paths)
		if !ok {
			return
		}
		result := ws.Result()
		var cols []*annotation.Collection
		for _, t := range touched {
			if col, found := result.Lookup(t); found {
				cols = append(cols, col)
			} else if _, declared := result.Declaration(t); !declared {
				a.log.Info("%s removed", t)
			}
		}
		if err := render(c.App.Writer, format, cols, result.Declaration, nil); err != nil {
			a.log.Error("%v", err)
		}
	})
}

// newWatcher watches the directories below the workspace roots.
func (a *application) newWatcher(ws *Workspace, debounce time.Duration) (*Watcher, error) {
	dirs, err := source.WatchDirs(ws.Roots())
	if err != nil {
		a.log.Report(docerrors.WrapWithOperation("watch", "source directories", err))
		return nil, cli.Exit("", 1)
	}
	w, err := NewWatcher(dirs, debounce, a.log)
	if err != nil {
		a.log.Report(docerrors.WrapWithOperation("watch", "source directories", err))
		return nil, cli.Exit("", 1)
	}
	a.log.Verbose("watching %d directories", len(dirs))
	return w, nil
}

// refresh rescans the changed paths and returns the targets they declare
// or used to declare.
func (a *application) refresh(ctx context.Context, ws *Workspace, paths []string) ([]string, bool) {
	a.log.Info("%d changed files", len(paths))
	result, touched, err := ws.Refresh(ctx, paths)
	if result == nil {
		if ctx.Err() == nil {
			a.log.Report(err)
		}
		return nil, false
	}
	if err != nil {
		a.log.Report(err)
	}
	a.log.Verbose("%d targets updated", len(touched))
	return touched, true
}
