package products

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// View is a point-in-time snapshot of a product, shaped for JSON.
type View struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Unlimited   bool            `json:"unlimited,omitempty"`
	MaxPurchase int             `json:"max_purchase,omitempty"`
	Active      bool            `json:"active"`
	Promotion   string          `json:"promotion,omitempty"`
	Display     string          `json:"display"`
}

func Snapshot(p Product) View {
	v := View{
		ID:        p.ID(),
		Name:      p.Name(),
		Kind:      p.Kind(),
		Price:     p.Price(),
		Quantity:  p.Quantity(),
		Unlimited: !p.TracksStock(),
		Active:    p.IsActive(),
		Display:   p.Show(),
	}
	if l, ok := p.(*Limited); ok {
		v.MaxPurchase = l.MaxPurchase()
	}
	if promo := p.Promotion(); promo != nil {
		v.Promotion = promo.Describe()
	}
	return v
}

func ComparePrice(a, b Product) int {
	return a.Price().Cmp(b.Price())
}

func CompareName(a, b Product) int {
	return cmp.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
}

// SortBy sorts ps in place, keeping the original order for equal elements.
func SortBy(ps []Product, compare func(a, b Product) int) {
	slices.SortStableFunc(ps, compare)
}
