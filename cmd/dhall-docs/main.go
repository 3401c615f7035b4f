package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("dhall-docs failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cli := &CLI{}
	g := &Global{}
	parser, err := kong.New(cli,
		kong.Name("dhall-docs"),
		kong.Description("Generate browsable HTML documentation for a Dhall package."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(g),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(g, cli)
}
