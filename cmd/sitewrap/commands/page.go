package commands

import (
	"git.home.luguber.info/inful/sitewrap/internal/build"
)

// PageCmd implements single-page generation. It is the default command, so
// `sitewrap <source> <dest>` needs no command name.
type PageCmd struct {
	Source string `arg:"" optional:"" help:"Source HTML file, relative to the project root"`
	Dest   string `arg:"" optional:"" help:"Destination file, relative to the public directory"`
	DryRun bool   `name:"dry-run" help:"Run every check without writing the page"`
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	// Anything other than exactly a source and a destination falls back to usage.
	if p.Source == "" || p.Dest == "" {
		printUsage(g.Stdout)
		return nil
	}

	res, err := g.newBuilder(root.Root, p.DryRun).Build(p.Source, p.Dest)
	if err != nil {
		return err
	}
	printResults(g.Stdout, []*build.Result{res})
	return nil
}
