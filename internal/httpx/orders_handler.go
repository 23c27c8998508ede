package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"

	"github.com/ariefcatur/go-retail-store/internal/checkout"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

type OrdersHandler struct {
	Checkout *checkout.Service
}

type CreateOrderResp struct {
	Receipt    *store.Receipt `json:"receipt"`
	Idempotent bool           `json:"idempotent"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid json"})
		return
	}
	req.TraceID = middleware.GetReqID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, req)
	if err != nil {
		writeError(w, err, res.Receipt)
		return
	}
	code := http.StatusCreated
	if res.Existed {
		code = http.StatusOK
	}
	writeJSON(w, code, CreateOrderResp{Receipt: res.Receipt, Idempotent: res.Existed})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Checkout.Receipt(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, checkout.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
