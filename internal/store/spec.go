package store

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/promotions"
	"github.com/ariefcatur/go-retail-store/internal/validation"
)

// ProductSpec describes a product to build. Promotion is a key into the
// promotion set passed alongside the specs.
type ProductSpec struct {
	Name        string          `json:"name" validate:"nonblank"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Kind        products.Kind   `json:"kind" validate:"required,oneof=standard non_stocked limited"`
	MaxPurchase int             `json:"max_purchase,omitempty" validate:"gte=0"`
	Promotion   string          `json:"promotion,omitempty"`
}

var fieldErrs = map[string]error{
	"name":         products.ErrInvalidName,
	"price":        products.ErrInvalidPrice,
	"quantity":     products.ErrInvalidQuantity,
	"max_purchase": products.ErrInvalidQuantity,
	"kind":         products.ErrInvalidKind,
}

// Build validates spec and constructs the product it describes.
func (spec ProductSpec) Build(promos map[string]*promotions.Promotion) (products.Product, error) {
	if err := validation.Struct(spec); err != nil {
		if fields := validation.Fields(err); len(fields) > 0 {
			if sentinel, ok := fieldErrs[fields[0].Field]; ok {
				return nil, errors.Wrap(sentinel, fields[0].Message)
			}
		}
		return nil, errors.Wrap(err, "validate product spec")
	}
	p, err := products.New(spec.Kind, spec.Name, spec.Price, spec.Quantity, spec.MaxPurchase)
	if err != nil {
		return nil, err
	}
	if spec.Promotion == "" {
		return p, nil
	}
	promo, ok := promos[spec.Promotion]
	if !ok {
		return nil, errors.Wrapf(promotions.ErrInvalidPromotion, "unknown promotion %q for %q", spec.Promotion, spec.Name)
	}
	if err := p.SetPromotion(promo); err != nil {
		return nil, err
	}
	return p, nil
}

// FromSpecs builds a store from specs. The first invalid spec aborts
// construction.
func FromSpecs(specs []ProductSpec, promos map[string]*promotions.Promotion, opts ...Option) (*Store, error) {
	ps := make([]products.Product, 0, len(specs))
	for i, spec := range specs {
		p, err := spec.Build(promos)
		if err != nil {
			return nil, errors.Wrapf(err, "product %d", i+1)
		}
		ps = append(ps, p)
	}
	return New(ps, opts...), nil
}

// DemoPromotions are the promotions the demo catalog refers to.
func DemoPromotions() map[string]*promotions.Promotion {
	thirty, _ := promotions.NewPercentDiscount("30% off!", decimal.NewFromInt(30))
	return map[string]*promotions.Promotion{
		"second_half_price": promotions.NewSecondHalfPrice("Second Half price!"),
		"third_one_free":    promotions.NewThirdOneFree("Third One Free!"),
		"thirty_percent":    thirty,
	}
}

func DemoSpecs() []ProductSpec {
	return []ProductSpec{
		{Name: "MacBook Air M2", Price: decimal.NewFromInt(1450), Quantity: 100, Kind: products.KindStandard, Promotion: "second_half_price"},
		{Name: "Bose QuietComfort Earbuds", Price: decimal.NewFromInt(250), Quantity: 500, Kind: products.KindStandard, Promotion: "third_one_free"},
		{Name: "Google Pixel 7", Price: decimal.NewFromInt(500), Quantity: 250, Kind: products.KindStandard},
		{Name: "Windows License", Price: decimal.NewFromInt(125), Kind: products.KindNonStocked, Promotion: "thirty_percent"},
		{Name: "Shipping", Price: decimal.NewFromInt(10), Quantity: 250, Kind: products.KindLimited, MaxPurchase: 1},
	}
}

// Demo builds the demo catalog.
func Demo(opts ...Option) *Store {
	s, err := FromSpecs(DemoSpecs(), DemoPromotions(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}
