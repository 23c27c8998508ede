package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ariefcatur/go-retail-store/internal/checkout"
	"github.com/ariefcatur/go-retail-store/internal/store"
	"github.com/ariefcatur/go-retail-store/internal/validation"
)

type errorResp struct {
	Error  string                  `json:"error"`
	Kind   string                  `json:"kind,omitempty"`
	Fields []validation.FieldError `json:"fields,omitempty"`
	// Receipt is set when part of a partial order went through.
	Receipt *store.Receipt `json:"receipt,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind string) int {
	switch kind {
	case "PRODUCT_UNAVAILABLE", "INSUFFICIENT_STOCK", "INACTIVE_PRODUCT", "PURCHASE_LIMIT_EXCEEDED":
		return http.StatusConflict
	case "INVALID_QUANTITY", "INVALID_PROMOTION", "INVALID_NAME", "INVALID_PRICE", "INVALID_KIND", "UNKNOWN_POLICY":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError maps validation and domain errors to a status code and body.
func writeError(w http.ResponseWriter, err error, partial *store.Receipt) {
	if fields := validation.Fields(err); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "validation failed", Fields: fields})
		return
	}
	if errors.Is(err, checkout.ErrOrderInProgress) {
		writeJSON(w, http.StatusConflict, errorResp{Error: err.Error(), Kind: "ORDER_IN_PROGRESS"})
		return
	}
	kind := store.Kind(err)
	resp := errorResp{Error: err.Error(), Kind: kind}
	if partial != nil && len(partial.Lines) > 0 {
		resp.Receipt = partial
	}
	if kind == "" {
		resp.Error = "internal error"
	}
	writeJSON(w, statusFor(kind), resp)
}
