package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitewrap/internal/build"
	"git.home.luguber.info/inful/sitewrap/internal/config"
	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
	"git.home.luguber.info/inful/sitewrap/internal/logfields"
	"git.home.luguber.info/inful/sitewrap/internal/metrics"
	"git.home.luguber.info/inful/sitewrap/internal/version"
)

const description = `Wrap HTML exported from a Markdown editor in a shared layout.

  sitewrap init                  create config.json in the project root
  sitewrap generate              generate every page listed in the manifest
  sitewrap <source> <dest>       generate one page into public/<dest>`

// Global carries per-invocation state shared by all commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	RunID  string

	// Recorder is set only when --metrics-file is given.
	Recorder *metrics.PrometheusRecorder
}

// CLI definition & global flags.
type CLI struct {
	Root        string           `short:"r" help:"Project root directory" default:"." env:"SITEWRAP_ROOT" type:"path"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	MetricsFile string           `name:"metrics-file" help:"Write build metrics in Prometheus text format to this file" type:"path"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Initialize project configuration"`
	Generate GenerateCmd `cmd:"" help:"Generate all pages from the config manifest"`
	Page     PageCmd     `cmd:"" default:"withargs" help:"Generate a single page from a source file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.RunID = uuid.NewString()
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level})).
		With(logfields.RunID(g.RunID))
	slog.SetDefault(g.Logger)

	if c.MetricsFile != "" {
		g.Recorder = metrics.NewPrometheusRecorder(nil)
	}
	return nil
}

// newBuilder wires a Builder for the selected project root.
func (g *Global) newBuilder(root string, dryRun bool) *build.Builder {
	b := build.NewBuilder(config.NewStore(root)).
		WithLogger(g.Logger).
		WithDryRun(dryRun)
	if g.Recorder != nil {
		b.WithRecorder(g.Recorder)
	}
	return b
}

// exitRequest is raised through kong's Exit hook so --help and --version
// return an exit code instead of terminating the process.
type exitRequest int

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) (code int) {
	var cli CLI
	g := &Global{Stdout: stdout, Stderr: stderr, Logger: slog.Default()}

	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = int(req)
		}
	}()

	parser, err := kong.New(&cli,
		kong.Name("sitewrap"),
		kong.Description(description),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitRequest(code)) }),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "sitewrap: %v\n", err)
		return 10
	}

	kctx, err := parser.Parse(pageArgs(args))
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) {
			printUsage(stderr)
		}
		_, _ = fmt.Fprintf(stderr, "sitewrap: error: %v\n", err)
		return 2
	}

	runErr := kctx.Run(&cli)
	flushMetrics(g, cli.MetricsFile)

	code = ferrors.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(stderr).Report(runErr)
	if h := hint(runErr); h != "" {
		_, _ = fmt.Fprintln(stderr, h)
	}
	return code
}

// valueFlags are the global flags that consume the following argument.
var valueFlags = map[string]bool{"-r": true, "--root": true, "--metrics-file": true}

// pageArgs names the page command explicitly when args hold exactly two
// positionals, so a source file called "init" or "generate" is still a build.
func pageArgs(args []string) []string {
	positionals := 0
	first := -1
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positionals += len(args) - i - 1
			i = len(args)
			continue
		case valueFlags[a]:
			i++
			continue
		case strings.HasPrefix(a, "-") && a != "-":
			continue
		}
		if first < 0 {
			first = i
		}
		positionals++
	}
	if positionals != 2 || first < 0 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[:first]...)
	out = append(out, "page")
	return append(out, args[first:]...)
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage:\n\n%s\n\nRun `sitewrap --help` for flags.\n", description)
}

func flushMetrics(g *Global, path string) {
	if g.Recorder == nil || path == "" {
		return
	}
	if err := g.Recorder.WriteTextfile(path); err != nil {
		g.Logger.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(err))
		return
	}
	g.Logger.Debug("Wrote metrics file", logfields.Path(path))
}
