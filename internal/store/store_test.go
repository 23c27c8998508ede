package store

import (
	"io"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/promotions"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type StoreTestSuite struct {
	suite.Suite
	product1 *products.Standard
	product2 *products.Standard
	license  *products.NonStocked
	shipping *products.Limited
	store    *Store
}

func (s *StoreTestSuite) SetupTest() {
	var err error
	s.product1, err = products.NewStandard("Product 1", d("50"), 100)
	s.Require().NoError(err)
	s.product2, err = products.NewStandard("Product 2", d("150"), 200)
	s.Require().NoError(err)
	s.license, err = products.NewNonStocked("Windows License", d("125"))
	s.Require().NoError(err)
	s.shipping, err = products.NewLimited("Shipping", d("10"), 250, 1)
	s.Require().NoError(err)

	s.store = New([]products.Product{s.product1, s.product2, s.license, s.shipping}, WithLogger(quietLogger()))
}

func (s *StoreTestSuite) TestAddProduct() {
	p3, err := products.NewStandard("Product 3", d("75"), 150)
	s.Require().NoError(err)

	s.True(s.store.AddProduct(p3))
	s.True(s.store.Contains(p3))
	s.False(s.store.AddProduct(p3))
	s.Len(s.store.Products(), 5)
}

func (s *StoreTestSuite) TestAddSameNameDifferentReference() {
	twin, err := products.NewStandard("Product 1", d("50"), 100)
	s.Require().NoError(err)

	s.True(s.store.AddProduct(twin))
	s.Len(s.store.Products(), 5)
}

func (s *StoreTestSuite) TestRemoveProduct() {
	s.True(s.store.RemoveProduct(s.product1))
	s.False(s.store.Contains(s.product1))
	s.False(s.store.RemoveProduct(s.product1))
	s.Equal([]products.Product{s.product2, s.license, s.shipping}, s.store.Products())
}

func (s *StoreTestSuite) TestTotalQuantity() {
	s.Equal(550, s.store.TotalQuantity())

	s.product2.Deactivate()
	s.Equal(550, s.store.TotalQuantity())
}

func (s *StoreTestSuite) TestActiveProducts() {
	s.product1.Deactivate()
	s.Equal([]products.Product{s.product2, s.license, s.shipping}, s.store.ActiveProducts())

	lines := s.store.ListActive()
	s.Len(lines, 3)
	s.Equal("Product 2, Price: $150.00, Quantity: 200, Promotion: None", lines[0])
	s.Contains(lines[1], "Unlimited")
}

func (s *StoreTestSuite) TestFind() {
	p, ok := s.store.Find(s.shipping.ID())
	s.True(ok)
	s.Equal(products.Product(s.shipping), p)

	_, ok = s.store.Find("missing")
	s.False(ok)
}

func (s *StoreTestSuite) TestOrderValidProduct() {
	total, err := s.store.Order([]OrderLine{{Product: s.product1, Quantity: 10}})
	s.Require().NoError(err)
	s.True(d("500").Equal(total))
	s.Equal(90, s.product1.Quantity())
}

func (s *StoreTestSuite) TestOrderMixedVariants() {
	r, err := s.store.PlaceOrder([]OrderLine{
		{Product: s.product1, Quantity: 2},
		{Product: s.license, Quantity: 3},
		{Product: s.shipping, Quantity: 1},
	})
	s.Require().NoError(err)
	s.True(d("485").Equal(r.Total))
	s.Len(r.Lines, 3)
	s.Equal(PolicyPartial, r.Policy)
	s.NotEmpty(r.ID)
	s.Equal(249, s.shipping.Quantity())
	s.Nil(r.Failure)
}

func (s *StoreTestSuite) TestOrderPartialKeepsEarlierLines() {
	r, err := s.store.PlaceOrder([]OrderLine{
		{Product: s.product1, Quantity: 5},
		{Product: s.product2, Quantity: 1000},
	})
	s.Require().Error(err)
	s.True(errors.Is(err, products.ErrInsufficientStock))

	var lerr *LineError
	s.Require().True(errors.As(err, &lerr))
	s.Equal(1, lerr.Index)
	s.Equal("Product 2", lerr.Product)

	s.Equal(95, s.product1.Quantity())
	s.Equal(200, s.product2.Quantity())
	s.Require().NotNil(r)
	s.Len(r.Lines, 1)
	s.True(d("250").Equal(r.Total))
	s.Require().NotNil(r.Failure)
	s.Equal("INSUFFICIENT_STOCK", r.Failure.Kind)
	s.Equal(err.Error(), r.Failure.Error())
	s.True(errors.Is(r.Failure, products.ErrInsufficientStock))

	_, err = s.store.Order([]OrderLine{{Product: s.product1, Quantity: 5}, {Product: s.product2, Quantity: 1000}})
	s.Error(err)
	s.Equal(90, s.product1.Quantity())
}

func (s *StoreTestSuite) TestOrderAtomicCommitsNothingOnFailure() {
	r, err := s.store.PlaceOrderWith(PolicyAtomic, []OrderLine{
		{Product: s.product1, Quantity: 5},
		{Product: s.product2, Quantity: 1000},
		{Product: s.shipping, Quantity: 2},
	})
	s.Nil(r)
	s.Require().Error(err)

	var rerr *RejectedError
	s.Require().True(errors.As(err, &rerr))
	s.Len(rerr.Lines, 2)
	s.True(errors.Is(err, products.ErrInsufficientStock))
	s.True(errors.Is(err, products.ErrPurchaseLimitExceeded))

	s.Equal(100, s.product1.Quantity())
	s.Equal(200, s.product2.Quantity())
	s.Equal(250, s.shipping.Quantity())
}

func (s *StoreTestSuite) TestOrderAtomicCumulativeDemand() {
	_, err := s.store.PlaceOrderWith(PolicyAtomic, []OrderLine{
		{Product: s.product1, Quantity: 60},
		{Product: s.product1, Quantity: 60},
	})
	s.True(errors.Is(err, products.ErrInsufficientStock))
	s.Equal(100, s.product1.Quantity())

	r, err := s.store.PlaceOrderWith(PolicyAtomic, []OrderLine{
		{Product: s.product1, Quantity: 60},
		{Product: s.product1, Quantity: 40},
	})
	s.Require().NoError(err)
	s.True(d("5000").Equal(r.Total))
	s.Equal(0, s.product1.Quantity())
	s.False(s.product1.IsActive())
}

func (s *StoreTestSuite) TestOrderUnavailableProduct() {
	stranger, err := products.NewStandard("Stranger", d("1"), 10)
	s.Require().NoError(err)

	_, err = s.store.Order([]OrderLine{{Product: stranger, Quantity: 1}})
	s.True(errors.Is(err, ErrProductUnavailable))

	s.product1.Deactivate()
	_, err = s.store.Order([]OrderLine{{Product: s.product1, Quantity: 1}})
	s.True(errors.Is(err, ErrProductUnavailable))

	_, err = s.store.Order([]OrderLine{{Quantity: 1}})
	s.True(errors.Is(err, ErrProductUnavailable))
}

func (s *StoreTestSuite) TestOrderEmpty() {
	total, err := s.store.Order(nil)
	s.NoError(err)
	s.True(total.IsZero())
}

func (s *StoreTestSuite) TestOrderUnknownPolicy() {
	_, err := s.store.PlaceOrderWith(Policy("maybe"), nil)
	s.True(errors.Is(err, ErrUnknownPolicy))
}

func (s *StoreTestSuite) TestOrderWithPromotion() {
	s.Require().NoError(s.product2.SetPromotion(promotions.NewThirdOneFree("Third One Free!")))

	total, err := s.store.Order([]OrderLine{{Product: s.product2, Quantity: 7}})
	s.Require().NoError(err)
	s.True(d("750").Equal(total))
}

func (s *StoreTestSuite) TestMerge() {
	p3, err := products.NewStandard("Product 3", d("75"), 150)
	s.Require().NoError(err)
	other := New([]products.Product{s.product1, p3}, WithPolicy(PolicyAtomic))

	merged := Merge(s.store, other)
	s.Equal([]products.Product{s.product1, s.product2, s.license, s.shipping, p3}, merged.Products())
	s.Equal(PolicyPartial, merged.Policy())
	s.Len(s.store.Products(), 4)
	s.Len(other.Products(), 2)
}

func (s *StoreTestSuite) TestKind() {
	_, err := s.store.PlaceOrderWith(PolicyAtomic, []OrderLine{
		{Product: s.product1, Quantity: 1000},
		{Product: s.shipping, Quantity: 2},
	})
	s.Require().Error(err)
	var rerr *RejectedError
	s.Require().True(errors.As(err, &rerr))
	s.Len(rerr.Lines, 2)
	s.Equal("INSUFFICIENT_STOCK", Kind(err))
	s.Equal("PURCHASE_LIMIT_EXCEEDED", Kind(rerr.Lines[1]))
	s.Equal("INSUFFICIENT_STOCK", Kind(errors.Wrap(err, "checkout")))
	s.Equal("PRODUCT_UNAVAILABLE", Kind(errors.Wrap(ErrProductUnavailable, "x")))
	s.Equal("", Kind(errors.New("boom")))
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
