package core

// reconcile.go applies validated records inside one batch transaction. Each
// row runs behind its own savepoint: a failed row rolls back only its own
// writes and is reported as a processing error, the rest of the batch goes
// on. Only a broken batch (ErrBatchAborted), cancellation or a failed
// commit stops the import, and then nothing is written.

import (
	"context"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reconcileResult is what a committed batch produced.
type reconcileResult struct {
	Succeeded int
	Errors    []RowError
}

// applyInventory upserts products by (user, name). Later rows for the same
// name overwrite earlier ones.
func (s *Service) applyInventory(ctx context.Context, userID uuid.UUID, records []InventoryRecord, rows map[int]map[string]string) (reconcileResult, error) {
	return s.applyBatch(ctx, len(records), func(ctx context.Context, batch store.Batch, i int) error {
		rec := records[i]
		return batch.Do(ctx, func(q db.Querier) error {
			existing, err := q.GetProductByName(ctx, db.GetProductByNameParams{UserID: userID, Name: rec.Name})
			switch {
			case err == nil:
				_, err = q.UpdateProduct(ctx, db.UpdateProductParams{
					ID:       existing.ID,
					UserID:   userID,
					Name:     rec.Name,
					Price:    ToPgNumeric(rec.Price),
					Stock:    rec.Stock,
					Category: string(rec.Category),
				})
				return atStep("update product", err)
			case store.IsNotFound(err):
				_, err = q.CreateProduct(ctx, db.CreateProductParams{
					UserID:   userID,
					Name:     rec.Name,
					Price:    ToPgNumeric(rec.Price),
					Stock:    rec.Stock,
					Category: string(rec.Category),
				})
				return atStep("create product", err)
			}
			return atStep("look up product", err)
		})
	}, func(i int, err error) RowError {
		rec := records[i]
		return processingError(rec.Line, rows[rec.Line], err)
	})
}

// applySales records one single-item sale per row and decrements stock.
func (s *Service) applySales(ctx context.Context, userID uuid.UUID, records []SaleRecord, rows map[int]map[string]string) (reconcileResult, error) {
	now := s.now()
	return s.applyBatch(ctx, len(records), func(ctx context.Context, batch store.Batch, i int) error {
		rec := records[i]
		return batch.Do(ctx, func(q db.Querier) error {
			product, err := q.GetProductByName(ctx, db.GetProductByNameParams{UserID: userID, Name: rec.ProductName})
			if store.IsNotFound(err) {
				return productNotFound(rec.ProductName)
			}
			if err != nil {
				return atStep("look up product", err)
			}

			price := FromPgNumeric(product.Price)
			if rec.PriceAtSale != nil {
				price = *rec.PriceAtSale
			}
			date := rec.SaleDate
			if date.IsZero() {
				date = now
			}
			_, err = recordSale(ctx, q, userID, product, rec.Quantity, price, date)
			return err
		})
	}, func(i int, err error) RowError {
		rec := records[i]
		return processingError(rec.Line, rows[rec.Line], err)
	})
}

// applyBatch drives apply over n rows in one batch and commits it.
func (s *Service) applyBatch(
	ctx context.Context,
	n int,
	apply func(ctx context.Context, batch store.Batch, i int) error,
	rowError func(i int, err error) RowError,
) (reconcileResult, error) {
	var res reconcileResult
	if n == 0 {
		return res, nil
	}

	batch, err := s.store.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin import batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := batch.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				logging.FromContext(ctx).Warn("import batch rollback failed", "error", rbErr)
			}
		}
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return reconcileResult{}, err
		}

		err := apply(ctx, batch, i)
		if err == nil {
			res.Succeeded++
			continue
		}
		if errors.Is(err, store.ErrBatchAborted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return reconcileResult{}, err
		}
		res.Errors = append(res.Errors, rowError(i, err))
	}

	if err := batch.Commit(ctx); err != nil {
		return reconcileResult{}, fmt.Errorf("commit import: %w", err)
	}
	committed = true
	return res, nil
}

// recordSale writes a single-item sale and takes the stock. The decrement is
// guarded, so a concurrent sale that drained the product fails the unit
// instead of driving stock negative.
func recordSale(ctx context.Context, q db.Querier, userID uuid.UUID, product db.Product, qty int32, price decimal.Decimal, date time.Time) (Sale, error) {
	if product.Stock < qty {
		return Sale{}, insufficientStock(product.Name, product.Stock, qty)
	}

	subtotal := price.Mul(decimal.NewFromInt32(qty)).Round(2)
	sale, err := q.CreateSale(ctx, db.CreateSaleParams{
		UserID:      userID,
		TotalAmount: ToPgNumeric(subtotal),
		SaleDate:    date,
	})
	if err != nil {
		return Sale{}, atStep("create sale", err)
	}

	item, err := q.CreateSaleItem(ctx, db.CreateSaleItemParams{
		SaleID:      sale.ID,
		Position:    0,
		ProductID:   ToPgUUID(product.ID),
		ProductName: product.Name,
		Quantity:    qty,
		PriceAtSale: ToPgNumeric(price),
		Subtotal:    ToPgNumeric(subtotal),
	})
	if err != nil {
		return Sale{}, atStep("create sale item", err)
	}

	_, err = q.DecrementProductStock(ctx, db.DecrementProductStockParams{
		Quantity: qty,
		ID:       product.ID,
		UserID:   userID,
	})
	if store.IsNotFound(err) {
		return Sale{}, insufficientStock(product.Name, product.Stock, qty)
	}
	if err != nil {
		return Sale{}, atStep("decrement stock", err)
	}

	return Sale{
		ID:          sale.ID,
		UserID:      sale.UserID,
		Items:       []SaleItem{saleItemFromDB(item)},
		TotalAmount: FromPgNumeric(sale.TotalAmount),
		SaleDate:    sale.SaleDate,
		CreatedAt:   sale.CreatedAt,
	}, nil
}

// stepError names the write that failed inside a row's unit of work.
type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string { return e.step + ": " + e.err.Error() }
func (e *stepError) Unwrap() error { return e.err }

func atStep(step string, err error) error {
	if err == nil {
		return nil
	}
	return &stepError{step: step, err: err}
}

// processingError turns a failed unit into a report row. Domain failures
// keep their reason; integrity errors are named by constraint; anything else
// is prefixed with the write that failed.
func processingError(line int, row map[string]string, err error) RowError {
	if reason := constraintReason(err); reason != "" {
		return RowError{Line: line, Row: row, Reason: reason, Code: CodeFor(reason)}
	}
	var rf *RowFailure
	if errors.As(err, &rf) {
		return RowError{Line: line, Row: row, Reason: rf.Reason, Code: CodeFor(rf.Reason)}
	}

	reason := FormatUserError(err)
	var se *stepError
	if errors.As(err, &se) {
		reason = "Failed to " + se.step + ": " + reason
	}
	return RowError{Line: line, Row: row, Reason: reason, Code: MapError(err).Code}
}

var constraintReasons = map[string]string{
	"products_user_name_key":         "Product name already exists in your inventory.",
	"products_name_len":              "Product name must be at most 100 characters.",
	"products_price_nonnegative":     "Invalid price. Must be a non-negative number.",
	"products_stock_nonnegative":     "Invalid stock. Must be a non-negative integer.",
	"products_category_valid":        "Invalid category.",
	"sales_total_amount_check":       "Invalid priceAtSale. Must be a non-negative number.",
	"sale_items_quantity_check":      "Invalid quantity.",
	"sale_items_price_at_sale_check": "Invalid priceAtSale. Must be a non-negative number.",
	"sale_items_subtotal_check":      "Invalid priceAtSale. Must be a non-negative number.",
}

func constraintReason(err error) string {
	for _, code := range []string{store.CodeUniqueViolation, store.CodeCheckViolation} {
		if name, ok := store.Violation(err, code); ok {
			if reason, known := constraintReasons[name]; known {
				return reason
			}
		}
	}
	return ""
}
