package web

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/JonMunkholm/bizsight/internal/logging"
)

// multipartMemory is how much of a form is kept in memory; the rest of the
// file part spills to disk inside net/http.
const multipartMemory = 1 << 20

var csvMIMETypes = map[string]bool{
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
}

// handleImport accepts one CSV in the multipart field and runs the import.
// The status follows the outcome: 200 full success, 207 partial, 400
// rejected.
func (s *Server) handleImport(kind core.ImportKind, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The body cap leaves room for multipart framing; the extractor
		// enforces MaxFileSize on the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartMemory)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
				s.respondError(w, r, errFileTooLarge, http.StatusBadRequest)
				return
			}
			s.respondError(w, r, errNoFile, http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(field)
		if err != nil {
			s.respondError(w, r, errNoFile, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if !isCSVUpload(header.Filename, header.Header.Get("Content-Type")) {
			s.respondError(w, r, errFileType, http.StatusBadRequest)
			return
		}

		logging.FromContext(r.Context()).Info("csv upload received",
			"kind", kind,
			"file", header.Filename,
			"size", header.Size,
		)

		report, err := s.service.Import(r.Context(), core.ImportRequest{
			UserID:   currentUser(r),
			Kind:     kind,
			FileName: header.Filename,
			Body:     file,
		})
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}

		writeJSON(w, outcomeStatus(report.Outcome), report)
	}
}

func isCSVUpload(filename, contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if csvMIMETypes[mediaType] {
		return true
	}
	return mediaType == "application/octet-stream" && strings.EqualFold(filepath.Ext(filename), ".csv")
}

func outcomeStatus(o core.Outcome) int {
	switch o {
	case core.OutcomeFullRejection:
		return http.StatusBadRequest
	case core.OutcomePartialSuccess:
		return http.StatusMultiStatus
	default:
		return http.StatusOK
	}
}

// handleImportHistory lists the caller's recent import runs.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ImportHistory(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if runs == nil {
		runs = []core.ImportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}
