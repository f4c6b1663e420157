package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/reconcile"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey = "repeats"
	seedKey    = "seed"
)

type row struct {
	key int
}

func (r row) ItemKey() any  { return r.key }
func (r row) ItemType() any { return "row" }

type scenario struct {
	name string
	next func(prev []int, r *rand.Rand) []int
}

var scenarios = []scenario{
	{name: "append 10%", next: func(prev []int, _ *rand.Rand) []int {
		next := slices.Clone(prev)
		for i := range len(prev) / 10 {
			next = append(next, len(prev)+i)
		}
		return next
	}},
	{name: "remove every 10th", next: func(prev []int, _ *rand.Rand) []int {
		next := make([]int, 0, len(prev))
		for i, k := range prev {
			if i%10 != 0 {
				next = append(next, k)
			}
		}
		return next
	}},
	{name: "swap rows", next: func(prev []int, _ *rand.Rand) []int {
		next := slices.Clone(prev)
		if len(next) > 2 {
			next[1], next[len(next)-2] = next[len(next)-2], next[1]
		}
		return next
	}},
	{name: "rotate", next: func(prev []int, _ *rand.Rand) []int {
		return append(slices.Clone(prev[1:]), prev[0])
	}},
	{name: "reverse", next: func(prev []int, _ *rand.Rand) []int {
		next := slices.Clone(prev)
		slices.Reverse(next)
		return next
	}},
	{name: "shuffle", next: func(prev []int, r *rand.Rand) []int {
		next := slices.Clone(prev)
		r.Shuffle(len(next), func(i, j int) { next[i], next[j] = next[j], next[i] })
		return next
	}},
	{name: "replace all", next: func(prev []int, _ *rand.Rand) []int {
		next := make([]int, len(prev))
		for i := range next {
			next[i] = len(prev) + i
		}
		return next
	}},
}

var sizes = []int{100, 1_000, 10_000}

func main() {
	log.Info("Starting keyed reconcile benchmark, please wait...")
	defer log.Info("Finished keyed reconcile benchmark")

	cmd := &cli.Command{
		Name:  "benchmark_reconcile",
		Usage: "Time keyed reconciliation over common list edits",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Runs per scenario, the best one is reported",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  seedKey,
				Usage: "Seed for shuffles",
				Value: 1,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func rows(keys []int) []row {
	out := make([]row, len(keys))
	for i, k := range keys {
		out[i] = row{key: k}
	}
	return out
}

func run(ctx context.Context, cmd *cli.Command) error {
	repeats := int(cmd.Int(repeatsKey))
	r := rand.New(rand.NewPCG(uint64(cmd.Int(seedKey)), 0))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"scenario", "size", "patch", "insert", "move", "remove", "time", "rows/s",
	})

	for _, sc := range scenarios {
		for _, n := range sizes {
			log.Info("running", "scenario", sc.name, "size", n)
			keys := make([]int, n)
			for i := range keys {
				keys[i] = i
			}
			prev, next := rows(keys), rows(sc.next(keys, r))

			rec := reconcile.NewRecorder[row](nil)
			best := time.Duration(1<<63 - 1)
			for i := 0; i < repeats; i++ {
				rec.Reset()
				start := time.Now()
				if err := reconcile.Keyed[row](prev, next, rec); err != nil {
					return err
				}
				best = min(best, time.Since(start))
			}

			rate := float64(n) / best.Seconds()
			table.Append([]string{
				sc.name,
				humanize.Comma(int64(n)),
				humanize.Comma(int64(rec.Count(reconcile.EditPatch))),
				humanize.Comma(int64(rec.Count(reconcile.EditInsert))),
				humanize.Comma(int64(rec.Count(reconcile.EditMove))),
				humanize.Comma(int64(rec.Count(reconcile.EditRemove))),
				fmt.Sprint(best),
				humanize.Comma(int64(rate)),
			})
		}
	}
	table.Render()
	return nil
}
