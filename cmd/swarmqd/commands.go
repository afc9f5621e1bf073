package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/dispatch"
	"github.com/swarmq/core/mclock"
	"github.com/swarmq/core/store/pebblestore"
)

var priorityFlag = &cli.IntFlag{
	Name:  "priority",
	Usage: "lower numbers dispatch first",
	Value: 100,
}

var dimensionFlag = &cli.StringSliceFlag{
	Name:  "dim",
	Usage: "dimension in key=value form, repeatable; repeat the key for multivalued dimensions",
}

var ttlFlag = &cli.DurationFlag{
	Name:  "ttl",
	Usage: "how long the request stays ready before it expires",
	Value: time.Hour,
}

func parseDimensions(pairs []string) (dimension.Set, error) {
	set := make(dimension.Set)
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid dimension %q, want key=value", pair)
		}
		set[k] = append(set[k], v)
	}
	return set, nil
}

var createCommand = &cli.Command{
	Name:      "create",
	Usage:     "submit a new task request onto the ready queue",
	ArgsUsage: "",
	Flags:     []cli.Flag{priorityFlag, dimensionFlag, ttlFlag},
	Action: func(c *cli.Context) error {
		dims, err := parseDimensions(c.StringSlice(dimensionFlag.Name))
		if err != nil {
			return err
		}

		dataDir := c.String(dataDirFlag.Name)
		s, err := pebblestore.Open(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		table, err := loadRequestTable(dataDir)
		if err != nil {
			return err
		}

		clk := mclock.System{}
		now := clk.Now()
		req := &dispatch.TaskRequest{
			ID:           uuid.NewString(),
			Priority:     c.Int(priorityFlag.Name),
			CreatedTS:    now,
			ExpirationTS: now.Add(c.Duration(ttlFlag.Name)),
			Dimensions:   dims,
		}

		if err := dispatch.Create(c.Context, s, req); err != nil {
			return err
		}
		table.put(req)
		if err := saveRequestTable(dataDir, table); err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "created %s (entry %s)\n", req.ID, dispatch.EntryID(req.ID))
		return nil
	},
}

var pollCommand = &cli.Command{
	Name:  "poll",
	Usage: "scan the ready queue for tasks matching a bot's dimensions, without claiming any",
	Flags: []cli.Flag{
		dimensionFlag,
		&cli.IntFlag{Name: "limit", Value: 10, Usage: "stop after this many matches"},
	},
	Action: func(c *cli.Context) error {
		bot, err := parseDimensions(c.StringSlice(dimensionFlag.Name))
		if err != nil {
			return err
		}

		d, _, cleanup, err := openDispatcher(c)
		if err != nil {
			return err
		}
		defer cleanup()

		limit := c.Int("limit")
		it := d.YieldCandidates(c.Context, bot)
		defer it.Close()

		count := 0
		for count < limit && it.Next(c.Context) {
			cand := it.Candidate()
			fmt.Fprintf(c.App.Writer, "%s priority=%d entry=%s\n", cand.Request.ID, cand.Request.Priority, dispatch.EntryID(cand.Request.ID))
			count++
		}
		if count == 0 {
			fmt.Fprintln(c.App.Writer, "no matching tasks")
		}
		return nil
	},
}

var reapCommand = &cli.Command{
	Name:      "reap",
	Usage:     "claim a specific ready-queue entry",
	ArgsUsage: "<entry-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("reap requires exactly one entry id")
		}
		d, _, cleanup, err := openDispatcher(c)
		if err != nil {
			return err
		}
		defer cleanup()

		ok, err := d.Reap(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(c.App.Writer, "reaped")
		} else {
			fmt.Fprintln(c.App.Writer, "already claimed or not found")
		}
		return nil
	},
}

var retryCommand = &cli.Command{
	Name:      "retry",
	Usage:     "put a reaped entry back on the ready queue at its original position",
	ArgsUsage: "<entry-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("retry requires exactly one entry id")
		}
		entryID := c.Args().First()

		d, _, cleanup, err := openDispatcher(c)
		if err != nil {
			return err
		}
		defer cleanup()

		ok, err := d.Retry(c.Context, entryID)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(c.App.Writer, "retried")
		} else {
			fmt.Fprintln(c.App.Writer, "retry did not take effect")
		}
		return nil
	},
}

var abortCommand = &cli.Command{
	Name:      "abort",
	Usage:     "remove an entry from the ready queue unconditionally",
	ArgsUsage: "<entry-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("abort requires exactly one entry id")
		}
		d, _, cleanup, err := openDispatcher(c)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := d.Abort(c.Context, c.Args().First()); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "aborted")
		return nil
	},
}

var sweepCommand = &cli.Command{
	Name:  "sweep",
	Usage: "cancel every entry whose expiration has passed",
	Action: func(c *cli.Context) error {
		d, _, cleanup, err := openDispatcher(c)
		if err != nil {
			return err
		}
		defer cleanup()

		sw := dispatch.NewSweeper(d)
		ids, err := sw.YieldExpired(c.Context)
		if err != nil {
			return err
		}
		if err := sw.CancelAll(c.Context); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "cancelled %d expired entries\n", len(ids))
		return nil
	},
}
