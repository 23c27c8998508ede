package store

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/promotions"
)

var ErrProductUnavailable = errors.New("product unavailable")

// LineError is the failure of a single order line.
type LineError struct {
	Index     int
	ProductID string
	Product   string
	Err       error
}

func lineError(i int, p products.Product, err error) *LineError {
	return &LineError{Index: i, ProductID: p.ID(), Product: p.Name(), Err: err}
}

func (e *LineError) Error() string {
	return fmt.Sprintf("order line %d (%s): %v", e.Index+1, e.Product, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// RejectedError lists every line that failed validation in an atomic order.
// Nothing was committed when it is returned.
type RejectedError struct {
	Lines []*LineError
}

func (e *RejectedError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.Error()
	}
	return fmt.Sprintf("order rejected, %d line(s) failed: %s", len(e.Lines), strings.Join(parts, "; "))
}

func (e *RejectedError) Unwrap() []error {
	out := make([]error, len(e.Lines))
	for i, l := range e.Lines {
		out[i] = l
	}
	return out
}

// Failure is the recorded outcome of an order that stopped at a failing line.
// It travels with the partial receipt so a replay reports the same error.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewFailure(err error) *Failure {
	return &Failure{Kind: Kind(err), Message: err.Error()}
}

func (f *Failure) Error() string { return f.Message }

// Unwrap returns the sentinel for f.Kind so errors.Is and Kind keep working.
func (f *Failure) Unwrap() error {
	for _, k := range kinds {
		if k.name == f.Kind {
			return k.err
		}
	}
	return nil
}

// Kind classifies err into one of the store's error kinds, or "" when err is
// not a store error. A rejection takes the kind of its first failing line.
func Kind(err error) string {
	var rerr *RejectedError
	if errors.As(err, &rerr) && len(rerr.Lines) > 0 {
		return Kind(rerr.Lines[0].Err)
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrProductUnavailable, "PRODUCT_UNAVAILABLE"},
	{products.ErrPurchaseLimitExceeded, "PURCHASE_LIMIT_EXCEEDED"},
	{products.ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{products.ErrInactiveProduct, "INACTIVE_PRODUCT"},
	{promotions.ErrInvalidPromotion, "INVALID_PROMOTION"},
	{promotions.ErrInvalidQuantity, "INVALID_QUANTITY"},
	{products.ErrInvalidName, "INVALID_NAME"},
	{products.ErrInvalidPrice, "INVALID_PRICE"},
	{products.ErrInvalidKind, "INVALID_KIND"},
	{ErrUnknownPolicy, "UNKNOWN_POLICY"},
}
