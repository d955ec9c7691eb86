package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/shibukawa/bytelayout/cli"
)

func main() {
	var root cli.CLI

	ctx := kong.Parse(&root,
		kong.Name("bytelayout"),
		kong.Description("Apply declarative layout scripts to binary files."),
		kong.UsageOnError(),
	)

	appCtx := root.Context()

	err := ctx.Run(appCtx)
	if err != nil {
		appCtx.Error(err)
		os.Exit(1)
	}
}
