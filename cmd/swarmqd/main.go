// Command swarmqd is a small demonstration CLI around the dispatch
// core: it lets you create ready-queue entries, poll them as a bot
// would, and reap, retry, abort, or sweep them, all backed by a
// pebblestore data directory so state survives between invocations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/swarmq/core/cache"
	"github.com/swarmq/core/dispatch"
	"github.com/swarmq/core/internal/xlog"
	"github.com/swarmq/core/mclock"
	"github.com/swarmq/core/store/pebblestore"
)

var dataDirFlag = &cli.StringFlag{
	Name:  "data-dir",
	Usage: "pebble data directory",
	Value: "./swarmqd-data",
}

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "path to a dispatch.toml config file",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable debug logging",
}

func openDispatcher(c *cli.Context) (*dispatch.Dispatcher, *requestTable, func() error, error) {
	dataDir := c.String(dataDirFlag.Name)

	s, err := pebblestore.Open(dataDir)
	if err != nil {
		return nil, nil, nil, err
	}

	table, err := loadRequestTable(dataDir)
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}

	cfg := dispatch.DefaultConfig()
	if path := c.String(configFlag.Name); path != "" {
		cfg, err = dispatch.LoadConfig(path)
		if err != nil {
			s.Close()
			return nil, nil, nil, err
		}
	}

	clk := mclock.System{}
	d := dispatch.NewDispatcher(s, cache.NewLocalCache(clk).WithTTL(cfg.CacheTTL), clk, table, cfg)
	d.Metrics = dispatch.NewMetrics(prometheus.NewRegistry())

	return d, table, s.Close, nil
}

func main() {
	level := slog.LevelInfo
	app := &cli.App{
		Name:  "swarmqd",
		Usage: "ready-queue dispatch core demo",
		Flags: []cli.Flag{dataDirFlag, configFlag, verboseFlag},
		Before: func(c *cli.Context) error {
			if c.Bool(verboseFlag.Name) {
				level = slog.LevelDebug
			}
			xlog.SetDefault(xlog.New(xlog.NewTerminalHandler(os.Stderr, level)))
			return nil
		},
		Commands: []*cli.Command{
			createCommand,
			pollCommand,
			reapCommand,
			retryCommand,
			abortCommand,
			sweepCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "swarmqd: %v\n", err)
		os.Exit(1)
	}
}
