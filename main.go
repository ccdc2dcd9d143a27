package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	internalrewrite "github.com/satsify/satsify/internal/rewrite"
)

func main() {
	app := &cli.App{
		Name:  "satsify",
		Usage: "rewrite fiat prices in web pages as bitcoin equivalents",
		Commands: []*cli.Command{
			{
				Name:   "rewrite",
				Usage:  "run a rewrite pass over a page and emit the result",
				Action: internalrewrite.RewriteAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "page URL to fetch and rewrite"},
					&cli.StringFlag{Name: "file", Usage: "HTML file to rewrite ('-' for stdin)"},
					&cli.StringFlag{Name: "out", Usage: "output file (default stdout)"},
					&cli.StringFlag{Name: "locale", Usage: "user locale, e.g. en-AU (default $LANG)"},
					&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "config file path"},
					&cli.BoolFlag{Name: "dry-run", Usage: "print the conversion stats instead of HTML"},
					&cli.BoolFlag{Name: "abort-on-rate-failure", Usage: "abort instead of using the fallback rate"},
					&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
				},
			},
			{
				Name:   "scan",
				Usage:  "list the price tokens found in a string",
				Action: internalrewrite.ScanAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "text to scan"},
				},
			},
			{
				Name:   "rate",
				Usage:  "fetch and print the current BTC/USD rate",
				Action: internalrewrite.RateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "config file path"},
					&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recorded rewrite runs",
				Action: internalrewrite.RunsAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "config file path"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "max runs to show"},
					&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
