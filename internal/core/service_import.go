package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/google/uuid"
)

// ImportRequest is one CSV upload to apply to a user's data.
type ImportRequest struct {
	UserID   uuid.UUID
	Kind     ImportKind
	FileName string
	Body     io.Reader
}

// Import runs the whole pipeline for one upload: spool, extract, validate,
// reconcile, report. The returned error is non-nil only when the import
// could not run at all (busy, unreadable upload, broken batch); row-level
// problems are in the report.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportReport, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportReport{}, err
	}
	defer s.limiter.Release()

	if s.opts.ImportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ImportTimeout)
		defer cancel()
	}

	start := time.Now()
	logger := logging.WithFields(ctx, "kind", req.Kind, "file", req.FileName)
	logger.Info("import started")

	ext, err := NewExtractor(req.Body, SchemaFor(req.Kind), ExtractOptions{
		TempDir:    s.opts.TempDir,
		MaxSize:    s.opts.MaxFileSize,
		Positional: s.opts.PositionalHeaders,
	})
	if err != nil {
		logger.Warn("import aborted", "error", err)
		return ImportReport{}, err
	}
	defer func() {
		if err := ext.Close(); err != nil {
			logger.Warn("spool cleanup failed", "path", ext.Path(), "error", err)
		}
	}()

	var (
		buckets ErrorBuckets
		raws    []RawRecord
	)
	for {
		rec, err := ext.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *ParseError
		if errors.As(err, &perr) {
			buckets.Parse = append(buckets.Parse, perr.RowError())
			continue
		}
		if err != nil {
			logger.Warn("import aborted", "error", err)
			return ImportReport{}, err
		}
		raws = append(raws, rec)
	}

	rows := make(map[int]map[string]string, len(raws))
	for _, r := range raws {
		rows[r.Line] = r.Values
	}

	var res reconcileResult
	switch req.Kind {
	case KindSales:
		accepted, rejected := ValidateSales(raws)
		buckets.Validation = rejected
		if classify(req.Kind, buckets) != OutcomeFullRejection {
			res, err = s.applySales(ctx, req.UserID, accepted, rows)
		}
	default:
		accepted, rejected := ValidateInventory(raws)
		buckets.Validation = rejected
		if classify(req.Kind, buckets) != OutcomeFullRejection {
			res, err = s.applyInventory(ctx, req.UserID, accepted, rows)
		}
	}
	if err != nil {
		logger.Error("import failed", "error", err)
		return ImportReport{}, err
	}
	buckets.Processing = res.Errors

	report := buildReport(req.Kind, len(raws), res.Succeeded, buckets)
	report.Duration = time.Since(start)

	s.recordImportRun(ctx, req.UserID, req.FileName, report)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionImport,
		UserID: req.UserID,
		Entity: string(req.Kind),
		Detail: map[string]any{
			"file":      req.FileName,
			"outcome":   report.Outcome,
			"attempted": report.Attempted,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		},
	})
	if report.Succeeded > 0 {
		s.invalidateProducts(ctx, req.UserID)
	}

	logger.Info("import finished",
		"outcome", report.Outcome,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}
