package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/utils"
	"github.com/toyz/docblock/pkg/annotation"
)

const maxSuggestions = 5

func (a *application) scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan sources and list their annotations",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Also list declarations without annotations",
			},
		},
		Action: a.scan,
	}
}

func (a *application) scan(c *cli.Context) error {
	format, err := a.format(c)
	if err != nil {
		return err
	}
	ws, err := a.workspace()
	if err != nil {
		return err
	}
	defer a.closeWorkspace(ws)

	if format != "json" {
		a.log.Header("scanning annotations")
	}
	result, scanErr := ws.Scan(c.Context, c.Args().Slice())
	if result == nil {
		a.log.Report(scanErr)
		return cli.Exit("", 1)
	}

	targets := result.Annotated()
	if c.Bool("all") {
		targets = result.Targets()
	}
	cols := make([]*annotation.Collection, 0, len(targets))
	for _, t := range targets {
		col, _ := result.Lookup(t)
		cols = append(cols, col)
	}
	if err := render(c.App.Writer, format, cols, result.Declaration, scanErr); err != nil {
		return err
	}

	if format != "json" {
		a.log.Summary("Scan complete", ws.Summary().Stats())
	}
	if scanErr != nil {
		a.log.Report(scanErr)
		return cli.Exit("", 1)
	}
	return nil
}

func (a *application) showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the annotations of one target",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "target",
				Aliases:  []string{"t"},
				Usage:    "Target to show, e.g. App\\UserController::show() or example.com/shop.Order->ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Only show annotations of this type",
			},
			formatFlag(),
		},
		Action: a.show,
	}
}

func (a *application) show(c *cli.Context) error {
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
		a.log.Verbose("%d declarations could not be read", len(flatten(scanErr)))
	}

	target := c.String("target")
	col, ok := result.Lookup(target)
	if !ok {
		a.log.Report(docerrors.Newf(docerrors.UnknownErrorCode, "unknown target %s", target).
			WithSuggestions(didYouMean(utils.Suggest(target, result.Targets(), maxSuggestions))...))
		return cli.Exit("", 1)
	}

	if typ := c.String("type"); typ != "" {
		if !col.Contain(typ) {
			_, nf := col.FirstNamed(typ)
			a.log.Report(docerrors.Wrap(docerrors.UnknownErrorCode, "unknown annotation type", nf).
				WithSuggestions(didYouMean(utils.Suggest(typ, col.Types(), maxSuggestions))...))
			return cli.Exit("", 1)
		}
		col = filterType(col, typ)
	}
	return render(c.App.Writer, format, []*annotation.Collection{col}, result.Declaration, nil)
}

func (a *application) parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a doc comment read from a file or standard input",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "target",
				Aliases:  []string{"t"},
				Usage:    "Target the doc comment belongs to",
				Required: true,
			},
			formatFlag(),
		},
		Action: a.parse,
	}
}

func (a *application) parse(c *cli.Context) error {
	format, err := a.format(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	var doc []byte
	if path == "" || path == "-" {
		path = "<stdin>"
		doc, err = io.ReadAll(c.App.Reader)
	} else {
		doc, err = os.ReadFile(path)
	}
	if err != nil {
		a.log.Report(docerrors.WrapFileSystemError("read", path, err))
		return cli.Exit("", 1)
	}

	target := c.String("target")
	collections, err := a.parser().Parse(string(doc), target)
	if err != nil {
		a.log.Report(docerrors.WrapParseError(target, docerrors.SourceLocation{File: path}, err))
		return cli.Exit("", 1)
	}

	targets := make([]string, 0, len(collections))
	for t := range collections {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	cols := make([]*annotation.Collection, 0, len(targets))
	for _, t := range targets {
		cols = append(cols, collections[t])
	}
	if len(cols) == 0 {
		cols = append(cols, annotation.NewCollection(target))
	}
	return render(c.App.Writer, format, cols, nil, nil)
}

func (a *application) cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the annotation cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show what the cache holds",
				Action: a.cacheStats,
			},
			{
				Name:   "flush",
				Usage:  "Drop every cached entry",
				Action: a.cacheFlush,
			},
		},
	}
}

func (a *application) cacheStats(c *cli.Context) error {
	if !a.cfg.Cache.Enabled {
		a.log.Warn("the annotation cache is disabled")
		return nil
	}
	ws, err := a.workspace()
	if err != nil {
		return err
	}
	defer a.closeWorkspace(ws)

	stats := ws.Cache().Stats()
	size := int64(0)
	if info, err := os.Stat(a.cfg.Cache.Path); err == nil {
		size = info.Size()
	}
	fmt.Fprintf(c.App.Writer, "path: %s\ntargets: %d\nsize: %d bytes\n", a.cfg.Cache.Path, stats.Targets, size)
	if a.log.Level() >= utils.DiagnosticVerbose {
		a.log.Indent()
		for _, t := range ws.Cache().Targets() {
			a.log.List("%s", t)
		}
		a.log.Unindent()
	}
	return nil
}

func (a *application) cacheFlush(c *cli.Context) error {
	if !a.cfg.Cache.Enabled {
		a.log.Warn("the annotation cache is disabled")
		return nil
	}
	ws, err := a.workspace()
	if err != nil {
		return err
	}
	n := ws.Cache().Stats().Targets
	ws.Cache().Flush()
	if err := ws.Close(); err != nil {
		a.log.Report(err)
		return cli.Exit("", 1)
	}
	a.log.Success("flushed %d cached targets", n)
	return nil
}
