package core

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/bizsight/internal/config"
	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testTokenSecret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   5 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			TempDir:       t.TempDir(),
			Timeout:       time.Minute,
		},
		Import: config.ImportConfig{HistoryLimit: 20},
		Auth:   config.AuthConfig{TokenSecret: testTokenSecret, TokenTTL: time.Hour},
	}
}

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewService(mem, nil, testConfig(t)), mem
}

func addProduct(t *testing.T, s store.Store, userID uuid.UUID, name, price string, stock int32) db.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), db.CreateProductParams{
		UserID:   userID,
		Name:     name,
		Price:    ToPgNumeric(decimal.RequireFromString(price)),
		Stock:    stock,
		Category: string(CategoryOther),
	})
	require.NoError(t, err)
	return p
}

func productByName(t *testing.T, s store.Store, userID uuid.UUID, name string) db.Product {
	t.Helper()
	p, err := s.GetProductByName(context.Background(), db.GetProductByNameParams{UserID: userID, Name: name})
	require.NoError(t, err)
	return p
}

func importCSV(t *testing.T, svc *Service, userID uuid.UUID, kind ImportKind, body string) ImportReport {
	t.Helper()
	report, err := svc.Import(context.Background(), ImportRequest{
		UserID:   userID,
		Kind:     kind,
		FileName: string(kind) + ".csv",
		Body:     strings.NewReader(body),
	})
	require.NoError(t, err)
	return report
}

// auditCount returns the number of audit entries by purging them all.
func auditCount(t *testing.T, svc *Service) int64 {
	t.Helper()
	n, err := svc.PurgeAuditLog(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	return n
}

func spoolFiles(t *testing.T, svc *Service) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(svc.opts.TempDir)
	require.NoError(t, err)
	return entries
}
