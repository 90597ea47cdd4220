package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitewrap/internal/config"
	"git.home.luguber.info/inful/sitewrap/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct{}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	store := config.NewStore(root.Root)
	g.Logger.Info("Initializing configuration", logfields.Config(store.Path()))
	if err := store.Init(); err != nil {
		return err
	}

	cfg := config.DefaultProjectConfig()
	_, _ = fmt.Fprintf(g.Stdout, "Wrote %s\n", store.Path())
	_, _ = fmt.Fprintf(g.Stdout, "Next: create %s and a public/ directory, then run `sitewrap generate`\n", cfg.Template.Base)
	return nil
}
