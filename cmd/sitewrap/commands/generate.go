package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/sitewrap/internal/build"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	DryRun bool `name:"dry-run" help:"Check every manifest entry without writing pages"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	results, err := g.newBuilder(root.Root, c.DryRun).BuildAll()
	printResults(g.Stdout, results)
	if err != nil {
		return err
	}
	if c.DryRun {
		_, _ = fmt.Fprintf(g.Stdout, "Checked %d page(s), nothing written\n", len(results))
		return nil
	}
	_, _ = fmt.Fprintf(g.Stdout, "Generated %d page(s)\n", len(results))
	return nil
}

func printResults(w io.Writer, results []*build.Result) {
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s -> %s (%d bytes)\n", r.Source, r.OutputPath, r.Bytes)
	}
}
