package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetData(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	p := addProduct(t, mem, user, "Widget", "1.00", 5)
	addProduct(t, mem, user, "Gadget", "1.00", 5)
	addProduct(t, mem, other, "Widget", "1.00", 5)
	_, err := svc.RecordSale(ctx, user, SaleInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	res, err := svc.ResetData(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, ResetResult{ProductsDeleted: 2, SalesDeleted: 1}, res)

	products, _ := svc.ListProducts(ctx, user)
	assert.Empty(t, products)
	sales, _ := svc.ListSales(ctx, user)
	assert.Empty(t, sales)

	kept, _ := svc.ListProducts(ctx, other)
	assert.Len(t, kept, 1, "other users keep their data")
}

func TestExportCSV_ProductsRoundTrip(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "9.99", 50)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, user, KindInventory, &buf))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "price", "stock", "category", "createdAt"}, rows[0])
	assert.Equal(t, []string{"Widget", "9.99", "50", "Other"}, rows[1][:4])

	// The export is itself a valid inventory import.
	other := uuid.New()
	report := importCSV(t, svc, other, KindInventory, buf.String())
	assert.Equal(t, OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, int32(50), productByName(t, mem, other, "Widget").Stock)
}

func TestExportCSV_Sales(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	p := addProduct(t, mem, user, "Widget", "2.00", 5)
	when := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.RecordSale(ctx, user, SaleInput{ProductID: p.ID, Quantity: 2, SaleDate: &when})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, user, KindSales, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"saleId", "saleDate", "productName", "quantity", "priceAtSale", "subtotal", "totalAmount"}, rows[0])
	assert.Equal(t, "Widget", rows[1][2])
	assert.Equal(t, "2", rows[1][3])
	assert.Equal(t, "4.00", rows[1][6])
}
