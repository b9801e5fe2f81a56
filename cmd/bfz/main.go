// bfz は ZOMBI の BFZ アーカイブの一覧表示と抽出を行うコマンドです
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shiroemons/go-bfz/internal/app"
	"github.com/shiroemons/go-bfz/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, config.VersionString())
	}

	return &cli.App{
		Name:    "bfz",
		Usage:   "list and extract ZOMBI BFZ archives",
		Version: config.Version,
		Flags:   config.GlobalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"l"},
				Usage:     "list entries in table order, or grouped by path",
				ArgsUsage: "[ARCHIVE]",
				Flags:     config.ListFlags(),
				Action:    run((*app.App).List),
			},
			{
				Name:      "info",
				Aliases:   []string{"i"},
				Usage:     "show header fields and chunk statistics",
				ArgsUsage: "[ARCHIVE]",
				Action:    run((*app.App).Info),
			},
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "extract all entries, or the named ones, keeping directory structure",
				ArgsUsage: "ARCHIVE [NAME...]",
				Flags:     config.ExtractFlags(),
				Action:    run((*app.App).Extract),
			},
			{
				Name:      "dump",
				Usage:     "hex dump the head of one entry (use name~N.ext for variants)",
				ArgsUsage: "[ARCHIVE] NAME",
				Flags:     config.DumpFlags(),
				Action:    run((*app.App).Dump),
			},
		},
	}
}

// run は設定を読み込んで App のメソッドを実行するアクションを返します
func run(fn func(*app.App, context.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := app.New(config.FromContext(c))
		if err != nil {
			return err
		}
		return fn(a, c.Context)
	}
}
