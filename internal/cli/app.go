// Package cli implements the docblock command line tool.
package cli

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/toyz/docblock/internal/config"
	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/utils"
	"github.com/toyz/docblock/pkg/annotation"
)

// Version is set at build time.
var Version = "dev"

// application holds what the Before hook resolves for every command.
type application struct {
	log *utils.DiagnosticSystem
	cfg *config.Config
}

// NewApp builds the docblock command line application.
func NewApp() *cli.App {
	a := &application{}
	return &cli.App{
		Name:    "docblock",
		Usage:   "Parse and query @annotations in documentation comments",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (.kdl or .toml); defaults to .docblock.kdl or .docblock.toml in the working directory",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose output",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only show errors and results",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Annotation cache file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Do not read or write the annotation cache",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of declarations parsed in parallel",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.scanCommand(),
			a.showCommand(),
			a.parseCommand(),
			a.serveCommand(),
			a.watchCommand(),
			a.cacheCommand(),
		},
	}
}

func (a *application) before(c *cli.Context) error {
	switch {
	case c.Bool("quiet"):
		a.log = utils.NewQuietDiagnostics()
	case c.Bool("verbose"):
		a.log = utils.NewVerboseDiagnostics()
	default:
		a.log = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if c.App.Writer != os.Stdout || c.App.ErrWriter != os.Stderr {
		a.log.SetOutput(c.App.Writer, c.App.ErrWriter)
	}

	path := c.String("config")
	if path == "" {
		path = config.Discover(".")
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			a.log.Report(err)
			return cli.Exit("", 2)
		}
		cfg = loaded
		a.log.Verbose("using configuration %s", path)
	}

	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("cache") {
		cfg.Cache.Enabled = true
		cfg.Cache.Path = c.String("cache")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		a.log.Report(docerrors.WrapConfigurationError("flags", "validate", err))
		return cli.Exit("", 2)
	}
	a.cfg = cfg
	return nil
}

func (a *application) parser() *annotation.Parser {
	return annotation.NewParser(annotation.WithReservedNames(a.cfg.ReservedNames...))
}

// workspace opens the pipeline for a command. The caller closes it with
// closeWorkspace.
func (a *application) workspace() (*Workspace, error) {
	ws, err := NewWorkspace(a.cfg, a.log)
	if err != nil {
		a.log.Report(err)
		return nil, cli.Exit("", 2)
	}
	return ws, nil
}

func (a *application) closeWorkspace(ws *Workspace) {
	if err := ws.Close(); err != nil {
		a.log.Report(err)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, table or json",
	}
}

// format returns the --format flag or the configured default.
func (a *application) format(c *cli.Context) (string, error) {
	format := a.cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	switch format {
	case "text", "table", "json":
		return format, nil
	}
	a.log.Error("unknown output format %q", format)
	return "", cli.Exit("", 2)
}
