package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/ariefcatur/go-retail-store/internal/checkout"
	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

type HandlersTestSuite struct {
	suite.Suite
	store  *store.Store
	router *chi.Mux
}

func (s *HandlersTestSuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s.store = store.Demo(store.WithLogger(log))
	s.router = NewRouter(log)
	(&StoreHandler{Store: s.store, Promotions: store.DemoPromotions()}).Register(s.router)
	(&OrdersHandler{Checkout: &checkout.Service{Store: s.store, Name: "test", Log: log}}).Register(s.router)
}

func (s *HandlersTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
}

func (s *HandlersTestSuite) product(i int) products.Product {
	return s.store.Products()[i]
}

func (s *HandlersTestSuite) TestHealthz() {
	w := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestListProducts() {
	s.product(2).Deactivate()

	w := s.do(http.MethodGet, "/products", nil)
	s.Equal(http.StatusOK, w.Code)
	var views []products.View
	s.decode(w, &views)
	s.Len(views, 4)
	s.Equal("MacBook Air M2", views[0].Name)
	s.Equal("Second Half price!", views[0].Promotion)

	w = s.do(http.MethodGet, "/products?all=true", nil)
	s.decode(w, &views)
	s.Len(views, 5)
}

func (s *HandlersTestSuite) TestTotalQuantity() {
	w := s.do(http.MethodGet, "/products/total", nil)
	s.Equal(http.StatusOK, w.Code)
	var resp totalResp
	s.decode(w, &resp)
	s.Equal(1100, resp.TotalQuantity)
}

func (s *HandlersTestSuite) TestAddAndRemoveProduct() {
	w := s.do(http.MethodPost, "/products", map[string]any{
		"name": "USB-C Cable", "price": "9.99", "quantity": 40, "kind": "standard", "promotion": "third_one_free",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var v products.View
	s.decode(w, &v)
	s.Equal("Third One Free!", v.Promotion)
	s.Len(s.store.Products(), 6)

	w = s.do(http.MethodDelete, "/products/"+v.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Len(s.store.Products(), 5)

	w = s.do(http.MethodDelete, "/products/"+v.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestAddProductInvalid() {
	w := s.do(http.MethodPost, "/products", map[string]any{"name": "", "price": "1", "kind": "standard"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp errorResp
	s.decode(w, &resp)
	s.Equal("INVALID_NAME", resp.Kind)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestDeactivateAndActivate() {
	id := s.product(0).ID()

	w := s.do(http.MethodPost, "/products/"+id+"/deactivate", nil)
	s.Equal(http.StatusOK, w.Code)
	s.False(s.product(0).IsActive())

	w = s.do(http.MethodPost, "/products/"+id+"/activate", nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(s.product(0).IsActive())

	w = s.do(http.MethodPost, "/products/nope/activate", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestCreateAndGetOrder() {
	w := s.do(http.MethodPost, "/orders", map[string]any{
		"external_id": "ext-1",
		"items": []map[string]any{
			{"product_id": s.product(1).ID(), "qty": 7},
			{"product_id": s.product(4).ID(), "qty": 1},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var resp CreateOrderResp
	s.decode(w, &resp)
	s.Equal("1260.00", resp.Receipt.Total.StringFixed(2))
	s.False(resp.Idempotent)
	s.Equal(493, s.product(1).Quantity())

	w = s.do(http.MethodGet, "/orders/"+resp.Receipt.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/orders", map[string]any{
		"external_id": "ext-1",
		"items":       []map[string]any{{"product_id": s.product(1).ID(), "qty": 7}},
	})
	s.Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.True(resp.Idempotent)
	s.Equal(493, s.product(1).Quantity())
}

func (s *HandlersTestSuite) TestCreateOrderLimitExceeded() {
	w := s.do(http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": s.product(2).ID(), "qty": 5},
			{"product_id": s.product(4).ID(), "qty": 2},
		},
	})
	s.Equal(http.StatusConflict, w.Code)
	var resp errorResp
	s.decode(w, &resp)
	s.Equal("PURCHASE_LIMIT_EXCEEDED", resp.Kind)
	s.Require().NotNil(resp.Receipt)
	s.Len(resp.Receipt.Lines, 1)
	s.Equal(245, s.product(2).Quantity())
}

func (s *HandlersTestSuite) TestRetryOfFailedOrderIsStillRejected() {
	body := map[string]any{
		"external_id": "ext-retry",
		"items": []map[string]any{
			{"product_id": s.product(2).ID(), "qty": 5},
			{"product_id": s.product(4).ID(), "qty": 2},
		},
	}
	first := s.do(http.MethodPost, "/orders", body)
	s.Require().Equal(http.StatusConflict, first.Code)

	retry := s.do(http.MethodPost, "/orders", body)
	s.Equal(http.StatusConflict, retry.Code)
	s.JSONEq(first.Body.String(), retry.Body.String())
	s.Equal(245, s.product(2).Quantity())
}

func (s *HandlersTestSuite) TestCreateOrderAtomic() {
	w := s.do(http.MethodPost, "/orders", map[string]any{
		"policy": "atomic",
		"items": []map[string]any{
			{"product_id": s.product(2).ID(), "qty": 5},
			{"product_id": s.product(4).ID(), "qty": 2},
		},
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(250, s.product(2).Quantity())
}

func (s *HandlersTestSuite) TestCreateOrderValidation() {
	w := s.do(http.MethodPost, "/orders", map[string]any{"items": []any{}})
	s.Equal(http.StatusBadRequest, w.Code)
	var resp errorResp
	s.decode(w, &resp)
	s.NotEmpty(resp.Fields)

	w = s.do(http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{{"product_id": s.product(0).ID(), "qty": 0}},
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlersTestSuite) TestGetOrderNotFound() {
	w := s.do(http.MethodGet, "/orders/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
