package store

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-retail-store/internal/products"
)

// Policy selects what happens to earlier lines when a later one fails.
type Policy string

const (
	// PolicyPartial processes lines in order and keeps whatever was bought
	// before the failing line.
	PolicyPartial Policy = "partial"
	// PolicyAtomic validates every line first and commits all or nothing.
	PolicyAtomic Policy = "atomic"
)

var ErrUnknownPolicy = errors.New("unknown order policy")

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPartial, PolicyAtomic:
		return Policy(s), nil
	case "":
		return PolicyPartial, nil
	}
	return "", errors.Wrapf(ErrUnknownPolicy, "%q", s)
}

type OrderLine struct {
	Product  products.Product
	Quantity int
}

type ReceiptLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type Receipt struct {
	ID        string          `json:"id"`
	Policy    Policy          `json:"policy"`
	Lines     []ReceiptLine   `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	// Failure is set on the partial receipt of an order that did not finish.
	Failure *Failure `json:"failure,omitempty"`
}

func newReceipt(policy Policy, n int) *Receipt {
	return &Receipt{
		ID:        uuid.NewString(),
		Policy:    policy,
		Lines:     make([]ReceiptLine, 0, n),
		Total:     decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Receipt) add(p products.Product, qty int, price decimal.Decimal) {
	r.Lines = append(r.Lines, ReceiptLine{ProductID: p.ID(), Name: p.Name(), Quantity: qty, Price: price})
	r.Total = r.Total.Add(price)
}

// Order buys every line using the store's policy and returns the total charged.
func (s *Store) Order(lines []OrderLine) (decimal.Decimal, error) {
	r, err := s.PlaceOrder(lines)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Total, nil
}

func (s *Store) PlaceOrder(lines []OrderLine) (*Receipt, error) {
	return s.PlaceOrderWith(s.policy, lines)
}

// PlaceOrderWith runs the order under policy. Under PolicyPartial a failing
// line returns a *LineError together with the receipt of the lines already
// bought. Under PolicyAtomic a validation failure returns a *RejectedError and
// a nil receipt.
func (s *Store) PlaceOrderWith(policy Policy, lines []OrderLine) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		r   *Receipt
		err error
	)
	switch policy {
	case PolicyPartial:
		r, err = s.orderPartial(lines)
	case PolicyAtomic:
		r, err = s.orderAtomic(lines)
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "%q", policy)
	}

	log := s.log.WithFields(logrus.Fields{"policy": policy, "lines": len(lines)})
	if err != nil {
		if r != nil {
			r.Failure = NewFailure(err)
		}
		log.WithError(err).Warn("order failed")
		return r, err
	}
	log.WithFields(logrus.Fields{"receipt": r.ID, "total": r.Total.StringFixed(2)}).Info("order placed")
	return r, nil
}

func (s *Store) available(i int, line OrderLine) *LineError {
	if line.Product == nil {
		return &LineError{Index: i, Err: errors.Wrap(ErrProductUnavailable, "no product given")}
	}
	if !s.containsLocked(line.Product) || !line.Product.IsActive() {
		return lineError(i, line.Product, errors.Wrapf(ErrProductUnavailable, "%q is not available in the store", line.Product.Name()))
	}
	return nil
}

func (s *Store) orderPartial(lines []OrderLine) (*Receipt, error) {
	r := newReceipt(PolicyPartial, len(lines))
	for i, line := range lines {
		if lerr := s.available(i, line); lerr != nil {
			return r, lerr
		}
		price, err := line.Product.Buy(line.Quantity)
		if err != nil {
			return r, lineError(i, line.Product, err)
		}
		r.add(line.Product, line.Quantity, price)
	}
	return r, nil
}

func (s *Store) orderAtomic(lines []OrderLine) (*Receipt, error) {
	var rejected []*LineError
	demand := make(map[products.Product]int)
	for i, line := range lines {
		if lerr := s.available(i, line); lerr != nil {
			rejected = append(rejected, lerr)
			continue
		}
		p := line.Product
		if _, err := p.Quote(line.Quantity); err != nil {
			rejected = append(rejected, lineError(i, p, err))
			continue
		}
		if !p.TracksStock() {
			continue
		}
		// the same product may appear on several lines
		need := demand[p] + line.Quantity
		if have := p.Quantity(); need > have {
			err := errors.Wrapf(products.ErrInsufficientStock, "order needs %d of %q, %d available", need, p.Name(), have)
			rejected = append(rejected, lineError(i, p, err))
			continue
		}
		demand[p] = need
	}
	if len(rejected) > 0 {
		return nil, &RejectedError{Lines: rejected}
	}

	wasActive := make(map[products.Product]bool, len(demand))
	for p := range demand {
		wasActive[p] = p.IsActive()
	}

	r := newReceipt(PolicyAtomic, len(lines))
	for i, line := range lines {
		price, err := line.Product.Buy(line.Quantity)
		if err != nil {
			// stock moved underneath us outside the store; undo what was taken
			s.release(lines[:i], wasActive)
			return nil, &RejectedError{Lines: []*LineError{lineError(i, line.Product, err)}}
		}
		r.add(line.Product, line.Quantity, price)
	}
	return r, nil
}

func (s *Store) release(lines []OrderLine, wasActive map[products.Product]bool) {
	for _, line := range lines {
		sp, ok := line.Product.(products.Stocked)
		if !ok {
			continue
		}
		if err := sp.Restock(line.Quantity); err != nil {
			s.log.WithError(err).WithField("product", sp.Name()).Error("release stock")
			continue
		}
		if wasActive[sp] {
			sp.Activate()
		}
	}
}
