package main

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitewrap/cmd/sitewrap/commands"
	"git.home.luguber.info/inful/sitewrap/internal/config"
)

func main() {
	// A .env in the working directory may set SITEWRAP_ROOT before flags are parsed.
	if _, err := config.LoadEnvFiles("."); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}
	os.Exit(commands.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
