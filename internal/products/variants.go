package products

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultMaxPurchase is the per-transaction cap used when a Limited product
// is built with a non-positive cap.
const DefaultMaxPurchase = 1

type stock struct {
	quantity int
}

func (s *stock) check(name string, qty int) error {
	if qty > s.quantity {
		return errors.Wrapf(ErrInsufficientStock, "quantity of %q is bigger than the available stock (%d > %d)", name, qty, s.quantity)
	}
	return nil
}

// Standard tracks stock and deactivates itself when the last unit is sold.
type Standard struct {
	base
	stock
}

func NewStandard(name string, price decimal.Decimal, quantity int) (*Standard, error) {
	p := &Standard{}
	if err := p.init(name, price); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "quantity must be non-negative, got %d", quantity)
	}
	p.quantity = quantity
	return p, nil
}

func (p *Standard) Kind() Kind        { return KindStandard }
func (p *Standard) TracksStock() bool { return true }

func (p *Standard) Quantity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity
}

// SetQuantity overwrites the stock counter; zero deactivates the product.
func (p *Standard) SetQuantity(qty int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set(qty)
}

// Restock adds qty units. It does not reactivate the product.
func (p *Standard) Restock(qty int) error {
	if err := checkPositive(p.name, qty); err != nil {
		return err
	}
	p.mu.Lock()
	p.quantity += qty
	p.mu.Unlock()
	return nil
}

func (p *Standard) set(qty int) error {
	if qty < 0 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity must be non-negative, got %d", qty)
	}
	p.quantity = qty
	if p.quantity == 0 {
		p.active = false
	}
	return nil
}

func (p *Standard) Quote(qty int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote(qty)
}

func (p *Standard) quote(qty int) (decimal.Decimal, error) {
	if err := checkPositive(p.name, qty); err != nil {
		return decimal.Zero, err
	}
	if err := p.stock.check(p.name, qty); err != nil {
		return decimal.Zero, err
	}
	if err := p.checkActive(); err != nil {
		return decimal.Zero, err
	}
	return p.charge(qty)
}

func (p *Standard) Buy(qty int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buy(qty)
}

func (p *Standard) buy(qty int) (decimal.Decimal, error) {
	total, err := p.quote(qty)
	if err != nil {
		return decimal.Zero, err
	}
	_ = p.set(p.quantity - qty)
	return total, nil
}

func (p *Standard) Show() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: $%s, Quantity: %d, Promotion: %s",
		p.name, p.price.StringFixed(2), p.quantity, p.promotionLabel())
}

// NonStocked has no stock counter, e.g. licenses or other digital goods.
type NonStocked struct {
	base
}

func NewNonStocked(name string, price decimal.Decimal) (*NonStocked, error) {
	p := &NonStocked{}
	if err := p.init(name, price); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *NonStocked) Kind() Kind        { return KindNonStocked }
func (p *NonStocked) TracksStock() bool { return false }
func (p *NonStocked) Quantity() int     { return 0 }

func (p *NonStocked) Quote(qty int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote(qty)
}

func (p *NonStocked) quote(qty int) (decimal.Decimal, error) {
	if err := checkPositive(p.name, qty); err != nil {
		return decimal.Zero, err
	}
	if err := p.checkActive(); err != nil {
		return decimal.Zero, err
	}
	return p.charge(qty)
}

// Buy never touches stock; it only prices the purchase.
func (p *NonStocked) Buy(qty int) (decimal.Decimal, error) {
	return p.Quote(qty)
}

func (p *NonStocked) Show() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: $%s, Quantity: Unlimited, Promotion: %s",
		p.name, p.price.StringFixed(2), p.promotionLabel())
}

// Limited is a Standard product with a cap on units per purchase.
type Limited struct {
	Standard
	maxPurchase int
}

func NewLimited(name string, price decimal.Decimal, quantity, maxPurchase int) (*Limited, error) {
	p := &Limited{}
	if err := p.init(name, price); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "quantity must be non-negative, got %d", quantity)
	}
	if maxPurchase <= 0 {
		maxPurchase = DefaultMaxPurchase
	}
	p.quantity = quantity
	p.maxPurchase = maxPurchase
	return p, nil
}

func (p *Limited) Kind() Kind       { return KindLimited }
func (p *Limited) MaxPurchase() int { return p.maxPurchase }

func (p *Limited) checkLimit(qty int) error {
	if qty > p.maxPurchase {
		return errors.Wrapf(ErrPurchaseLimitExceeded, "only %d unit(s) of %q can be purchased at once", p.maxPurchase, p.name)
	}
	return nil
}

func (p *Limited) Quote(qty int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLimit(qty); err != nil {
		return decimal.Zero, err
	}
	return p.quote(qty)
}

func (p *Limited) Buy(qty int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLimit(qty); err != nil {
		return decimal.Zero, err
	}
	return p.buy(qty)
}

func (p *Limited) Show() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: $%s, Quantity: %d, Maximum purchase: %d, Promotion: %s",
		p.name, p.price.StringFixed(2), p.quantity, p.maxPurchase, p.promotionLabel())
}
