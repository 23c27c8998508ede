package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-retail-store/internal/products"
	"github.com/ariefcatur/go-retail-store/internal/promotions"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

type StoreHandler struct {
	Store      *store.Store
	Promotions map[string]*promotions.Promotion
}

type totalResp struct {
	TotalQuantity int `json:"total_quantity"`
}

func (h *StoreHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.addProduct)
	r.Get("/products/total", h.totalQuantity)
	r.Get("/products/{id}", h.getProduct)
	r.Delete("/products/{id}", h.removeProduct)
	r.Post("/products/{id}/activate", h.setActive(true))
	r.Post("/products/{id}/deactivate", h.setActive(false))
}

// listProducts returns active products; ?all=true includes inactive ones.
func (h *StoreHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps := h.Store.ActiveProducts()
	if r.URL.Query().Get("all") == "true" {
		ps = h.Store.Products()
	}
	out := make([]products.View, 0, len(ps))
	for _, p := range ps {
		out = append(out, products.Snapshot(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *StoreHandler) totalQuantity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, totalResp{TotalQuantity: h.Store.TotalQuantity()})
}

func (h *StoreHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Store.Find(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, products.Snapshot(p))
}

func (h *StoreHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var spec store.ProductSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid json"})
		return
	}
	p, err := spec.Build(h.Promotions)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	h.Store.AddProduct(p)
	writeJSON(w, http.StatusCreated, products.Snapshot(p))
}

func (h *StoreHandler) removeProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Store.Find(chi.URLParam(r, "id"))
	if !ok || !h.Store.RemoveProduct(p) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "product not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.Store.Find(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResp{Error: "product not found"})
			return
		}
		if active {
			p.Activate()
		} else {
			p.Deactivate()
		}
		writeJSON(w, http.StatusOK, products.Snapshot(p))
	}
}
