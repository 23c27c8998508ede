package products

import (
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-retail-store/internal/promotions"
)

type Kind string

const (
	KindStandard   Kind = "standard"
	KindNonStocked Kind = "non_stocked"
	KindLimited    Kind = "limited"
)

var (
	ErrInvalidName           = errors.New("invalid name")
	ErrInvalidKind           = errors.New("invalid product kind")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInactiveProduct       = errors.New("product is inactive")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrPurchaseLimitExceeded = errors.New("purchase limit exceeded")

	// shared with promotions so callers only need one name
	ErrInvalidQuantity  = promotions.ErrInvalidQuantity
	ErrInvalidPromotion = promotions.ErrInvalidPromotion
)

// Product is the capability set every variant exposes. Implementations are
// safe for concurrent use.
type Product interface {
	ID() string
	Name() string
	Kind() Kind
	Price() decimal.Decimal
	// Quantity is the tracked stock; non-stocked products report 0.
	Quantity() int
	TracksStock() bool
	IsActive() bool
	Activate()
	Deactivate()
	Promotion() *promotions.Promotion
	SetPromotion(p *promotions.Promotion) error
	// Quote runs every purchase check and prices qty units without changing state.
	Quote(qty int) (decimal.Decimal, error)
	// Buy is Quote followed by the stock update, as one step.
	Buy(qty int) (decimal.Decimal, error)
	Show() string
}

// Stocked is implemented by variants with a stock counter.
type Stocked interface {
	Product
	SetQuantity(qty int) error
	Restock(qty int) error
}

type base struct {
	mu     sync.Mutex
	id     string
	name   string
	price  decimal.Decimal
	active bool
	promo  *promotions.Promotion
}

func (b *base) init(name string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Wrap(ErrInvalidName, "name can't be empty")
	}
	if price.IsNegative() {
		return errors.Wrapf(ErrInvalidPrice, "price must be non-negative, got %s", price)
	}
	b.id = uuid.NewString()
	b.name = name
	b.price = price
	b.active = true
	return nil
}

func (b *base) ID() string             { return b.id }
func (b *base) Name() string           { return b.name }
func (b *base) Price() decimal.Decimal { return b.price }

func (b *base) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *base) Activate() {
	b.mu.Lock()
	b.active = true
	b.mu.Unlock()
}

func (b *base) Deactivate() {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()
}

func (b *base) Promotion() *promotions.Promotion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.promo
}

// SetPromotion attaches p, or clears the promotion when p is nil.
func (b *base) SetPromotion(p *promotions.Promotion) error {
	if p != nil {
		if err := p.Validate(b.price); err != nil {
			return errors.Wrapf(err, "attach to %q", b.name)
		}
	}
	b.mu.Lock()
	b.promo = p
	b.mu.Unlock()
	return nil
}

func (b *base) checkActive() error {
	if !b.active {
		return errors.Wrapf(ErrInactiveProduct, "%q is inactive", b.name)
	}
	return nil
}

// charge prices qty units. A promotion's total is returned as computed; the
// plain price is rounded to cents. Caller holds b.mu.
func (b *base) charge(qty int) (decimal.Decimal, error) {
	if b.promo != nil {
		total, err := b.promo.Apply(b.price, qty)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "price %q", b.name)
		}
		return total, nil
	}
	return b.price.Mul(decimal.NewFromInt(int64(qty))).Round(2), nil
}

func (b *base) promotionLabel() string {
	if b.promo == nil {
		return "None"
	}
	return b.promo.Describe()
}

func checkPositive(name string, qty int) error {
	if qty <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity of %q must be positive, got %d", name, qty)
	}
	return nil
}

// New builds a product of the given kind. quantity is ignored for
// non-stocked products and maxPurchase is only used by limited ones.
func New(kind Kind, name string, price decimal.Decimal, quantity, maxPurchase int) (Product, error) {
	var (
		p   Product
		err error
	)
	switch kind {
	case KindStandard:
		p, err = NewStandard(name, price, quantity)
	case KindNonStocked:
		p, err = NewNonStocked(name, price)
	case KindLimited:
		p, err = NewLimited(name, price, quantity, maxPurchase)
	default:
		return nil, errors.Wrapf(ErrInvalidKind, "unknown product kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
