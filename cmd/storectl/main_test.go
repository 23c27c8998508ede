package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

func demo() *store.Store {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return store.Demo(store.WithLogger(log))
}

func run(t *testing.T, st *store.Store, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(st, &out).Run(context.Background(), append([]string{"storectl"}, args...))
	return out.String(), err
}

func TestParseSelections(t *testing.T) {
	sels, err := parseSelections([]string{"1:2", "4:1"})
	require.NoError(t, err)
	assert.Equal(t, []selection{{index: 1, qty: 2}, {index: 4, qty: 1}}, sels)

	for _, bad := range [][]string{nil, {"1"}, {"0:1"}, {"x:1"}, {"1:y"}} {
		_, err := parseSelections(bad)
		assert.True(t, errors.Is(err, errBadSelection), "%v", bad)
	}
}

func TestTotal(t *testing.T) {
	out, err := run(t, demo(), "total")
	require.NoError(t, err)
	assert.Equal(t, "Total of 1100 items in store\n", out)
}

func TestList(t *testing.T) {
	out, err := run(t, demo(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. MacBook Air M2, Price: $1450.00, Quantity: 100, Promotion: Second Half price!\n")
	assert.Contains(t, out, "4. Windows License, Price: $125.00, Quantity: Unlimited, Promotion: 30% off!\n")

	out, err = run(t, demo(), "list", "--sort", "price")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Shipping")

	_, err = run(t, demo(), "list", "--sort", "weight")
	assert.Error(t, err)
}

func TestOrder(t *testing.T) {
	st := demo()
	out, err := run(t, st, "order", "2:3", "5:1")
	require.NoError(t, err)
	assert.Equal(t, "Order made! Total payment: $510.00\n", out)
	assert.Equal(t, 497, st.Products()[1].Quantity())
}

func TestOrderPartialAndAtomic(t *testing.T) {
	st := demo()
	out, err := run(t, st, "order", "3:1", "5:2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, products.ErrPurchaseLimitExceeded))
	assert.Contains(t, out, "$500.00")
	assert.Equal(t, 249, st.Products()[2].Quantity())

	st = demo()
	_, err = run(t, st, "order", "--atomic", "3:1", "5:2")
	require.Error(t, err)
	assert.Equal(t, 250, st.Products()[2].Quantity())
}

func TestOrderUnknownIndex(t *testing.T) {
	_, err := run(t, demo(), "order", "9:1")
	assert.True(t, errors.Is(err, errBadSelection))
}
