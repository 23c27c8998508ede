package promotions

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSecondHalfPrice Kind = "second_half_price"
	KindThirdOneFree    Kind = "third_one_free"
	KindPercentDiscount Kind = "percent_discount"
)

var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPromotion = errors.New("invalid promotion")
)

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Promotion is immutable once built; one value may be shared by many products.
type Promotion struct {
	name    string
	kind    Kind
	percent decimal.Decimal
}

type pricer func(p *Promotion, unitPrice decimal.Decimal, qty int) (decimal.Decimal, error)

var pricing = map[Kind]pricer{
	KindSecondHalfPrice: secondHalfPrice,
	KindThirdOneFree:    thirdOneFree,
	KindPercentDiscount: percentDiscount,
}

func NewSecondHalfPrice(name string) *Promotion {
	return &Promotion{name: name, kind: KindSecondHalfPrice}
}

func NewThirdOneFree(name string) *Promotion {
	return &Promotion{name: name, kind: KindThirdOneFree}
}

// NewPercentDiscount fails unless 0 < percent < 100.
func NewPercentDiscount(name string, percent decimal.Decimal) (*Promotion, error) {
	if !percent.IsPositive() || percent.GreaterThanOrEqual(hundred) {
		return nil, errors.Wrapf(ErrInvalidPromotion, "percent must be between 0 and 100, got %s", percent)
	}
	return &Promotion{name: name, kind: KindPercentDiscount, percent: percent}, nil
}

// New builds a promotion from its kind tag. percent is ignored unless kind is
// KindPercentDiscount.
func New(kind Kind, name string, percent decimal.Decimal) (*Promotion, error) {
	switch kind {
	case KindSecondHalfPrice:
		return NewSecondHalfPrice(name), nil
	case KindThirdOneFree:
		return NewThirdOneFree(name), nil
	case KindPercentDiscount:
		return NewPercentDiscount(name, percent)
	}
	return nil, errors.Wrapf(ErrInvalidPromotion, "unknown promotion kind %q", kind)
}

func (p *Promotion) Name() string             { return p.name }
func (p *Promotion) Kind() Kind               { return p.kind }
func (p *Promotion) Percent() decimal.Decimal { return p.percent }

// Describe returns the display label, falling back to a generated one when the
// promotion was built without a name.
func (p *Promotion) Describe() string {
	if strings.TrimSpace(p.name) != "" {
		return p.name
	}
	switch p.kind {
	case KindSecondHalfPrice:
		return "Second Half price!"
	case KindThirdOneFree:
		return "Third One Free!"
	case KindPercentDiscount:
		return fmt.Sprintf("%s%% off!", p.percent.String())
	}
	return string(p.kind)
}

// Validate reports whether the promotion can price a product with unitPrice.
func (p *Promotion) Validate(unitPrice decimal.Decimal) error {
	if p.kind == KindPercentDiscount && unitPrice.IsZero() {
		return errors.Wrapf(ErrInvalidPromotion, "%s cannot apply to a zero-price product", p.Describe())
	}
	return nil
}

// Apply returns the discounted total for qty units at unitPrice. The result is
// not rounded.
func (p *Promotion) Apply(unitPrice decimal.Decimal, qty int) (decimal.Decimal, error) {
	if qty < 0 {
		return decimal.Zero, errors.Wrapf(ErrInvalidQuantity, "quantity must be non-negative, got %d", qty)
	}
	fn, ok := pricing[p.kind]
	if !ok {
		return decimal.Zero, errors.Wrapf(ErrInvalidPromotion, "unknown promotion kind %q", p.kind)
	}
	return fn(p, unitPrice, qty)
}

func secondHalfPrice(_ *Promotion, unitPrice decimal.Decimal, qty int) (decimal.Decimal, error) {
	pairs := int64(qty / 2)
	rem := int64(qty % 2)
	halves := unitPrice.Mul(half).Mul(decimal.NewFromInt(pairs))
	full := unitPrice.Mul(decimal.NewFromInt(pairs + rem))
	return halves.Add(full), nil
}

func thirdOneFree(_ *Promotion, unitPrice decimal.Decimal, qty int) (decimal.Decimal, error) {
	paid := int64(qty - qty/3)
	return unitPrice.Mul(decimal.NewFromInt(paid)), nil
}

func percentDiscount(p *Promotion, unitPrice decimal.Decimal, qty int) (decimal.Decimal, error) {
	if err := p.Validate(unitPrice); err != nil {
		return decimal.Zero, err
	}
	total := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	factor := decimal.NewFromInt(1).Sub(p.percent.Div(hundred))
	return total.Mul(factor), nil
}
