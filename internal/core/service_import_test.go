package core

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryHeader = "name,price,stock,category\n"

func TestImportInventory_CreatesThenUpdatesInPlace(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()

	report := importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,9.99,50,Electronics\n")
	assert.Equal(t, OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, "1 products processed successfully from CSV!", report.Message)
	created := productByName(t, mem, user, "Widget")

	report = importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,12.00,40,Electronics\n")
	assert.Equal(t, OutcomeFullSuccess, report.Outcome)

	updated := productByName(t, mem, user, "Widget")
	assert.Equal(t, created.ID, updated.ID, "existing name updates in place")
	assert.True(t, FromPgNumeric(updated.Price).Equal(decimal.RequireFromString("12.00")))
	assert.Equal(t, int32(40), updated.Stock)

	all, err := mem.ListProductsByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportInventory_DuplicateNamesLastWriteWins(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()

	report := importCSV(t, svc, user, KindInventory, inventoryHeader+
		"Widget,9.99,50,Electronics\n"+
		"Widget,12.00,40,Electronics\n")

	assert.Equal(t, OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, report.Errors.Processing)

	p := productByName(t, mem, user, "Widget")
	assert.True(t, FromPgNumeric(p.Price).Equal(decimal.RequireFromString("12.00")))
	assert.Equal(t, int32(40), p.Stock)
}

func TestImportInventory_ReuploadCreatesNoDuplicates(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	body := inventoryHeader + "Widget,9.99,50,Electronics\nGadget,5,10,Books\n"

	importCSV(t, svc, user, KindInventory, body)
	importCSV(t, svc, user, KindInventory, body)

	all, err := mem.ListProductsByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportInventory_InvalidCategoryRejectsWholeFile(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()

	report := importCSV(t, svc, user, KindInventory, inventoryHeader+
		"Widget,9.99,50,Electronics\n"+
		"Teddy,5,1,Toys\n"+
		"Kite,5,1,Outdoor\n")

	assert.Equal(t, OutcomeFullRejection, report.Outcome)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 3, report.Attempted)
	require.Len(t, report.Errors.Validation, 2)
	assert.Equal(t, 3, report.Errors.Validation[0].Line)
	assert.Equal(t, 4, report.Errors.Validation[1].Line)
	assert.Equal(t, "CSV parsing completed with errors. 2 rows were skipped or invalid.", report.Message)

	all, err := mem.ListProductsByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected inventory file writes nothing")
}

func TestImportInventory_ParseErrorRejects(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()

	report := importCSV(t, svc, user, KindInventory, inventoryHeader+
		"Widget,9.99,50,Electronics\n"+
		",1,1,Food\n")

	assert.Equal(t, OutcomeFullRejection, report.Outcome)
	require.Len(t, report.Errors.Parse, 1)
	assert.Equal(t, 3, report.Errors.Parse[0].Line)
	assert.Equal(t, "VAL003", report.Errors.Parse[0].Code)

	all, _ := mem.ListProductsByUser(context.Background(), user)
	assert.Empty(t, all)
}

func TestImportInventory_HeaderOnlyAndEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	user := uuid.New()

	report := importCSV(t, svc, user, KindInventory, inventoryHeader)
	assert.Equal(t, OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, 0, report.Attempted)
	assert.NotNil(t, report.Errors.Processing)

	report = importCSV(t, svc, user, KindInventory, "")
	assert.Equal(t, OutcomeFullRejection, report.Outcome)
	require.Len(t, report.Errors.Parse, 1)
	assert.Equal(t, "CSV file is empty.", report.Errors.Parse[0].Reason)
}

func TestImportInventory_UsersAreIsolated(t *testing.T) {
	svc, mem := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	addProduct(t, mem, bob, "Widget", "1.00", 5)

	importCSV(t, svc, alice, KindInventory, inventoryHeader+"Widget,9.99,50,Electronics\n")

	bobs := productByName(t, mem, bob, "Widget")
	assert.Equal(t, int32(5), bobs.Stock, "another user's product is never touched")
	alices := productByName(t, mem, alice, "Widget")
	assert.NotEqual(t, bobs.ID, alices.ID)
}

const salesHeader = "productName,quantity,priceAtSale,saleDate\n"

func TestImportSales_InsufficientStock(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "9.99", 3)

	report := importCSV(t, svc, user, KindSales, "productName,quantity\nWidget,5\n")

	assert.Equal(t, OutcomePartialSuccess, report.Outcome)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors.Processing, 1)
	reason := report.Errors.Processing[0].Reason
	assert.Contains(t, reason, "Available: 3")
	assert.Contains(t, reason, "Requested: 5")
	assert.Equal(t, "SALE002", report.Errors.Processing[0].Code)

	assert.Equal(t, int32(3), productByName(t, mem, user, "Widget").Stock)
	sales, err := svc.ListSales(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestImportSales_RecordsSaleAndDecrementsStock(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "9.99", 10)
	addProduct(t, mem, user, "Gadget", "4.00", 10)

	report := importCSV(t, svc, user, KindSales, salesHeader+
		"Widget,3,,2024-03-15\n"+
		"Gadget,2,3.50,\n")

	assert.Equal(t, OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, "2 sales recorded successfully from CSV!", report.Message)
	assert.Equal(t, int32(7), productByName(t, mem, user, "Widget").Stock)
	assert.Equal(t, int32(8), productByName(t, mem, user, "Gadget").Stock)

	sales, err := svc.ListSales(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	for _, sale := range sales {
		require.Len(t, sale.Items, 1)
		item := sale.Items[0]
		assert.True(t, item.Subtotal.Equal(item.PriceAtSale.Mul(decimal.NewFromInt32(item.Quantity))))
		assert.True(t, sale.TotalAmount.Equal(item.Subtotal))
		switch item.ProductName {
		case "Widget":
			assert.True(t, item.PriceAtSale.Equal(decimal.RequireFromString("9.99")), "catalog price applies")
			assert.Equal(t, 2024, sale.SaleDate.Year())
		case "Gadget":
			assert.True(t, item.PriceAtSale.Equal(decimal.RequireFromString("3.50")), "override applies")
		}
	}
}

func TestImportSales_PartialWithUnknownProductAndBadRow(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "9.99", 10)

	report := importCSV(t, svc, user, KindSales, salesHeader+
		"Widget,1,,\n"+
		"Ghost,1,,\n"+
		"Widget,0,,\n")

	assert.Equal(t, OutcomePartialSuccess, report.Outcome)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors.Validation, 1)
	assert.Equal(t, 4, report.Errors.Validation[0].Line)
	require.Len(t, report.Errors.Processing, 1)
	assert.Equal(t, `Product "Ghost" not found in your inventory.`, report.Errors.Processing[0].Reason)
	assert.Equal(t, "Sales CSV processed. 1 sales recorded, 2 failed.", report.Message)
	assert.Equal(t, int32(9), productByName(t, mem, user, "Widget").Stock)
}

func TestImportSales_StockDrainsAcrossRows(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "1.00", 5)

	report := importCSV(t, svc, user, KindSales, "productName,quantity\nWidget,3\nWidget,3\n")

	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.Errors.Processing, 1)
	assert.Contains(t, report.Errors.Processing[0].Reason, "Available: 2")
	assert.Equal(t, int32(2), productByName(t, mem, user, "Widget").Stock)
}

func TestImportSales_ParseErrorRejects(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()
	addProduct(t, mem, user, "Widget", "1.00", 5)

	report := importCSV(t, svc, user, KindSales, "productName,quantity\nWidget,1\n,2\n")

	assert.Equal(t, OutcomeFullRejection, report.Outcome)
	assert.Equal(t, "CSV parsing complete with 1 initial errors.", report.Message)
	assert.Equal(t, int32(5), productByName(t, mem, user, "Widget").Stock)
}

func TestImport_TempFileRemoved(t *testing.T) {
	svc, _ := newTestService(t)
	user := uuid.New()

	importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,9.99,50,Electronics\n")
	assert.Empty(t, spoolFiles(t, svc), "after success")

	importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,9.99,50,Toys\n")
	assert.Empty(t, spoolFiles(t, svc), "after rejection")

	_, err := svc.Import(context.Background(), ImportRequest{
		UserID: user,
		Kind:   KindInventory,
		Body:   io.MultiReader(strings.NewReader(inventoryHeader), iotest.ErrReader(io.ErrUnexpectedEOF)),
	})
	require.ErrorIs(t, err, ErrStream)
	assert.Empty(t, spoolFiles(t, svc), "after stream error")
}

func TestImport_RecordsHistoryAndAudit(t *testing.T) {
	svc, _ := newTestService(t)
	user := uuid.New()

	importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,9.99,50,Electronics\n")
	importCSV(t, svc, user, KindInventory, inventoryHeader+"Widget,9.99,50,Toys\n")

	runs, err := svc.ImportHistory(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, OutcomeFullRejection, runs[0].Outcome, "newest first")
	assert.Equal(t, OutcomeFullSuccess, runs[1].Outcome)
	assert.Equal(t, "inventory.csv", runs[1].FileName)

	assert.Equal(t, int64(2), auditCount(t, svc))
}

func TestImport_BusyLimiter(t *testing.T) {
	svc, _ := newTestService(t)
	svc.limiter = NewUploadLimiter(1, 10*time.Millisecond)

	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.Import(context.Background(), ImportRequest{UserID: uuid.New(), Kind: KindInventory, Body: strings.NewReader(inventoryHeader)})
	assert.ErrorIs(t, err, ErrTooManyUploads)
}

func TestImport_CancelledContextWritesNothing(t *testing.T) {
	svc, mem := newTestService(t)
	user := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, ImportRequest{UserID: user, Kind: KindInventory, Body: strings.NewReader(inventoryHeader + "Widget,1,1,Food\n")})
	require.Error(t, err)

	all, _ := mem.ListProductsByUser(context.Background(), user)
	assert.Empty(t, all)
}
