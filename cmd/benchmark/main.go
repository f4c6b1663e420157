package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/memhost"
	"github.com/delaneyj/proxyparty/reactivity"
	"github.com/delaneyj/proxyparty/renderer"
	"github.com/delaneyj/proxyparty/scheduler"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

var (
	ww    = []int{1, 10, 100}
	hh    = []int{1, 10, 100}
	sizes = []int{10, 100, 1_000}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure effect propagation and keyed list re-render latency",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Samples per benchmark",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	log.Info("warming up")
	if err := benchmarkPropagation(iters, false); err != nil {
		return err
	}
	if err := benchmarkPropagation(iters, true); err != nil {
		return err
	}
	return benchmarkRender(iters)
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

// benchmarkPropagation builds w chains of h computeds off one ref, each
// chain read by an effect, and times a write to the ref.
func benchmarkPropagation(iters int, shouldRender bool) error {
	tbl := newTable("Propagation")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := reactivity.CreateReactiveSystem(reactivity.WithOnError(func(from *reactivity.ReactiveEffect, err error) {
				log.Fatal("effect failed", "effect", from.ID(), "err", err)
			}))
			src := reactivity.NewRef(rs, 1)
			for i := 0; i < w; i++ {
				var last reactivity.Readable[int] = src
				for j := 0; j < h; j++ {
					prev := last
					last = reactivity.NewComputed(rs, func() int {
						return prev.Value() + 1
					})
				}
				if _, err := reactivity.Effect(rs, func() error {
					last.Value()
					return nil
				}); err != nil {
					return err
				}
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}
			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}

// benchmarkRender mounts a keyed list and times rotating it by one through a
// full queue flush.
func benchmarkRender(iters int) error {
	tbl := newTable("Keyed render")

	for _, n := range sizes {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rs := reactivity.CreateReactiveSystem()
		mt := &scheduler.Microtasks{}
		var runErr error
		q := scheduler.NewQueue(scheduler.WithDeferrer(mt), scheduler.WithOnError(func(job scheduler.Job, err error) {
			runErr = err
		}))
		r := renderer.New(memhost.New())
		root := memhost.NewNode("div")

		keys := make([]int, n)
		for i := range keys {
			keys[i] = i
		}
		items := reactivity.NewRef(rs, keys)

		if _, err := r.Mount(rs, q, root, func() *renderer.VNode {
			children := make([]*renderer.VNode, 0, n)
			for _, k := range items.Value() {
				children = append(children, renderer.H("li", renderer.Props{"key": k}, k))
			}
			return renderer.H("ul", nil, children)
		}); err != nil {
			return err
		}

		for i := 0; i < iters; i++ {
			cur := items.Peek()
			next := append([]int{cur[len(cur)-1]}, cur[:len(cur)-1]...)

			start := time.Now()
			items.SetValue(next)
			mt.Drain()
			tach.AddTime(time.Since(start))
			if runErr != nil {
				return runErr
			}
		}
		appendCalc(tbl, fmt.Sprintf("rotate: %d", n), tach)
	}

	tbl.Render()
	return nil
}
