package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/memhost"
	"github.com/delaneyj/proxyparty/reconcile"
	"github.com/delaneyj/proxyparty/renderer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	htmlKey    = "html"
	verboseKey = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:      "reconcile",
		Usage:     "Print the edits that turn one keyed list into another",
		ArgsUsage: "<old keys> <new keys>",
		Description: `Keys are separated by spaces or commas:

   reconcile "a b c d" "a c b d"`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  htmlKey,
				Usage: "Render both lists as <ul> and print the host operations",
			},
			&cli.BoolFlag{
				Name:    verboseKey,
				Aliases: []string{"v"},
				Usage:   "Debug logging",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type key string

func (k key) ItemKey() any  { return string(k) }
func (k key) ItemType() any { return "item" }

func parseKeys(s string) []key {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	keys := make([]key, len(fields))
	for i, f := range fields {
		keys[i] = key(f)
	}
	return keys
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool(verboseKey) {
		log.SetLevel(log.DebugLevel)
	}
	if cmd.Args().Len() != 2 {
		return errors.New("expected exactly two key lists")
	}
	prev, next := parseKeys(cmd.Args().Get(0)), parseKeys(cmd.Args().Get(1))
	log.Debug("reconciling", "old", prev, "new", next)

	rec := reconcile.NewRecorder[key](nil)
	if err := reconcile.Keyed[key](prev, next, rec); err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Edits")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"#", "op", "key", "anchor"})
	for i, e := range rec.Edits() {
		anchor := any("")
		switch {
		case e.Anchor != nil:
			anchor = e.Anchor
		case e.Op == reconcile.EditInsert || e.Op == reconcile.EditMove:
			anchor = "(end)"
		}
		tbl.AppendRow(table.Row{i + 1, e.Op, e.Key, anchor})
	}
	tbl.AppendFooter(table.Row{"", "structural", rec.Structural(), ""})
	tbl.Render()

	if cmd.Bool(htmlKey) {
		return renderHTML(prev, next)
	}
	return nil
}

func list(keys []key) *renderer.VNode {
	children := make([]*renderer.VNode, len(keys))
	for i, k := range keys {
		children[i] = renderer.H("li", renderer.Props{"key": string(k)}, string(k))
	}
	return renderer.H("ul", nil, children)
}

func renderHTML(prev, next []key) error {
	host := memhost.New()
	r := renderer.New(host)
	root := memhost.NewNode("body")

	if err := r.Render(list(prev), root); err != nil {
		return err
	}
	os.Stdout.WriteString("before: " + root.InnerHTML() + "\n")

	host.ResetOps()
	if err := r.Render(list(next), root); err != nil {
		return err
	}
	os.Stdout.WriteString("after:  " + root.InnerHTML() + "\n")

	tbl := table.NewWriter()
	tbl.SetTitle("Host operations")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"op", "node", "anchor", "value"})
	for _, op := range host.Ops() {
		tbl.AppendRow(table.Row{op.Kind, describe(op.Node), describe(op.Anchor), op.Value})
	}
	tbl.Render()
	return nil
}

func describe(n *memhost.Node) string {
	if n == nil {
		return ""
	}
	return n.HTML()
}
