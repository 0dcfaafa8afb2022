package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/bizsight/internal/core"
)

// handleResetData deletes the caller's products and sales.
func (s *Server) handleResetData(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ResetData(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "All your products and sales have been deleted.",
		"productsDeleted": res.ProductsDeleted,
		"salesDeleted":    res.SalesDeleted,
	})
}

// handleDownloadRawData streams ?kind=products|sales as a CSV attachment.
// The export is buffered so a failure can still answer with JSON.
func (s *Server) handleDownloadRawData(w http.ResponseWriter, r *http.Request) {
	kindParam := r.URL.Query().Get("kind")
	if kindParam == "" {
		kindParam = "products"
	}
	kind, ok := core.ParseImportKind(kindParam)
	if !ok {
		s.respondError(w, r, &core.ValidationError{Field: "kind", Value: kindParam, Message: "kind must be products or sales"}, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := s.service.ExportCSV(r.Context(), currentUser(r), kind, &buf); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	name := "products"
	if kind == core.KindSales {
		name = "sales"
	}
	filename := fmt.Sprintf("bizsight-%s-%s.csv", name, time.Now().UTC().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleHealth reports store reachability and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	storeStatus := "ok"
	if err := s.service.Ping(r.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		storeStatus = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"store":   storeStatus,
		"uploads": s.service.Limiter().Status(),
	})
}
