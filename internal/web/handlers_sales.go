package web

import (
	"net/http"

	"github.com/JonMunkholm/bizsight/internal/core"
)

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.service.ListSales(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if sales == nil {
		sales = []core.Sale{}
	}
	writeJSON(w, http.StatusOK, sales)
}

// handleManualSale records a single-product sale at the catalog price.
func (s *Server) handleManualSale(w http.ResponseWriter, r *http.Request) {
	var in core.SaleInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sale, err := s.service.RecordSale(r.Context(), currentUser(r), in)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}
