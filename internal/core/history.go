package core

import (
	"context"
	"fmt"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/google/uuid"
)

// ImportHistory returns the user's most recent imports, newest first.
func (s *Service) ImportHistory(ctx context.Context, userID uuid.UUID) ([]ImportRun, error) {
	limit := s.opts.HistoryLimit
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.store.ListImportRunsByUser(ctx, db.ListImportRunsByUserParams{UserID: userID, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	runs := make([]ImportRun, len(rows))
	for i, r := range rows {
		runs[i] = importRunFromDB(r)
	}
	return runs, nil
}

// recordImportRun saves the summary of a finished import. A failure only
// costs the history entry, so it is logged rather than returned.
func (s *Service) recordImportRun(ctx context.Context, userID uuid.UUID, fileName string, report ImportReport) {
	_, err := s.store.CreateImportRun(context.WithoutCancel(ctx), db.CreateImportRunParams{
		UserID:     userID,
		Kind:       string(report.Kind),
		FileName:   fileName,
		Outcome:    string(report.Outcome),
		Attempted:  int32(report.Attempted),
		Succeeded:  int32(report.Succeeded),
		Failed:     int32(report.Failed),
		DurationMs: report.Duration.Milliseconds(),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("import history write failed", "error", err)
	}
}
