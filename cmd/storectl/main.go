package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

var errBadSelection = errors.New("bad selection")

type selection struct {
	index int // 1-based position in the active list
	qty   int
}

// parseSelections reads arguments of the form "index:qty".
func parseSelections(args []string) ([]selection, error) {
	if len(args) == 0 {
		return nil, errors.Wrap(errBadSelection, "nothing to order")
	}
	out := make([]selection, 0, len(args))
	for _, a := range args {
		idx, qty, ok := strings.Cut(a, ":")
		if !ok {
			return nil, errors.Wrapf(errBadSelection, "%q: want index:qty", a)
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 1 {
			return nil, errors.Wrapf(errBadSelection, "%q: bad index", a)
		}
		q, err := strconv.Atoi(qty)
		if err != nil {
			return nil, errors.Wrapf(errBadSelection, "%q: bad quantity", a)
		}
		out = append(out, selection{index: i, qty: q})
	}
	return out, nil
}

func resolve(active []products.Product, sels []selection) ([]store.OrderLine, error) {
	lines := make([]store.OrderLine, 0, len(sels))
	for _, s := range sels {
		if s.index > len(active) {
			return nil, errors.Wrapf(errBadSelection, "no product #%d", s.index)
		}
		lines = append(lines, store.OrderLine{Product: active[s.index-1], Quantity: s.qty})
	}
	return lines, nil
}

func newApp(st *store.Store, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "storectl",
		Usage:  "inspect and order from the demo catalog",
		Writer: w,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list active products",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sort", Usage: "price or name"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ps := st.ActiveProducts()
					switch cmd.String("sort") {
					case "":
					case "price":
						products.SortBy(ps, products.ComparePrice)
					case "name":
						products.SortBy(ps, products.CompareName)
					default:
						return errors.Errorf("unknown sort %q", cmd.String("sort"))
					}
					for i, p := range ps {
						fmt.Fprintf(w, "%d. %s\n", i+1, p.Show())
					}
					return nil
				},
			},
			{
				Name:  "total",
				Usage: "total quantity in store",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(w, "Total of %d items in store\n", st.TotalQuantity())
					return nil
				},
			},
			{
				Name:      "order",
				Usage:     "place an order",
				ArgsUsage: "index:qty [index:qty ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "atomic", Usage: "reject the whole order if any line fails"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					sels, err := parseSelections(cmd.Args().Slice())
					if err != nil {
						return err
					}
					lines, err := resolve(st.ActiveProducts(), sels)
					if err != nil {
						return err
					}
					policy := store.PolicyPartial
					if cmd.Bool("atomic") {
						policy = store.PolicyAtomic
					}
					r, err := st.PlaceOrderWith(policy, lines)
					if err != nil {
						if r != nil && len(r.Lines) > 0 {
							fmt.Fprintf(w, "Charged for %d line(s) before the error: $%s\n", len(r.Lines), r.Total.StringFixed(2))
						}
						return err
					}
					fmt.Fprintf(w, "Order made! Total payment: $%s\n", r.Total.StringFixed(2))
					return nil
				},
			},
		},
	}
}

func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	st := store.Demo(store.WithLogger(log))
	if err := newApp(st, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "storectl: %v\n", err)
		os.Exit(1)
	}
}
