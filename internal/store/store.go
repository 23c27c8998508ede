package store

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-retail-store/internal/products"
)

// Store owns an ordered catalog. Membership is by reference: two products with
// the same name are still different entries.
type Store struct {
	mu       sync.Mutex
	products []products.Product
	policy   Policy
	log      logrus.FieldLogger
}

type Option func(*Store)

func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New builds a store from ps, dropping nil entries and repeated references.
func New(ps []products.Product, opts ...Option) *Store {
	s := &Store{
		products: make([]products.Product, 0, len(ps)),
		policy:   PolicyPartial,
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	for _, p := range ps {
		if p != nil && !s.containsLocked(p) {
			s.products = append(s.products, p)
		}
	}
	return s
}

func (s *Store) Policy() Policy { return s.policy }

func (s *Store) containsLocked(p products.Product) bool {
	return slices.Contains(s.products, p)
}

func (s *Store) Contains(p products.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containsLocked(p)
}

// AddProduct appends p unless it is already held. It reports whether the
// catalog changed.
func (s *Store) AddProduct(p products.Product) bool {
	if p == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.containsLocked(p) {
		s.log.WithField("product", p.Name()).Info("product is already in the store")
		return false
	}
	s.products = append(s.products, p)
	s.log.WithFields(logrus.Fields{"product": p.Name(), "id": p.ID()}).Info("product added")
	return true
}

// RemoveProduct drops p if held. It reports whether the catalog changed.
func (s *Store) RemoveProduct(p products.Product) bool {
	if p == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.products, p)
	if i < 0 {
		s.log.WithField("product", p.Name()).Info("product is not in the store")
		return false
	}
	s.products = slices.Delete(s.products, i, i+1)
	s.log.WithFields(logrus.Fields{"product": p.Name(), "id": p.ID()}).Info("product removed")
	return true
}

// Find looks a product up by ID among all held products, active or not.
func (s *Store) Find(id string) (products.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Products returns every held product in insertion order.
func (s *Store) Products() []products.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Store) ActiveProducts() []products.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]products.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// ListActive renders ActiveProducts for display.
func (s *Store) ListActive() []string {
	active := s.ActiveProducts()
	out := make([]string, len(active))
	for i, p := range active {
		out[i] = p.Show()
	}
	return out
}

// TotalQuantity sums the stock of every held product, inactive ones included.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, p := range s.products {
		total += p.Quantity()
	}
	return total
}

// Merge returns a new store holding a's products followed by those of b that
// a does not already hold. Products are shared, not copied. The result takes
// a's policy and logger.
func Merge(a, b *Store) *Store {
	ps := a.Products()
	ps = append(ps, b.Products()...)
	return New(ps, WithPolicy(a.policy), WithLogger(a.log))
}
