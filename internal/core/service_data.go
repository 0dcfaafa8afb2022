package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
)

// ResetResult counts what ResetData removed.
type ResetResult struct {
	ProductsDeleted int64 `json:"productsDeleted"`
	SalesDeleted    int64 `json:"salesDeleted"`
}

// ResetData deletes every product and sale the user owns in one transaction.
// Other users' data and the account itself are untouched.
func (s *Service) ResetData(ctx context.Context, userID uuid.UUID) (ResetResult, error) {
	var res ResetResult
	err := store.InTx(ctx, s.store, func(q db.Querier) error {
		var err error
		if res.SalesDeleted, err = q.DeleteSalesByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete sales: %w", err)
		}
		if res.ProductsDeleted, err = q.DeleteProductsByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}

	s.invalidateProducts(ctx, userID)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionDataReset,
		UserID: userID,
		Entity: userID.String(),
		Detail: map[string]any{"products": res.ProductsDeleted, "sales": res.SalesDeleted},
	})
	return res, nil
}

// ExportCSV writes the user's raw data as CSV. Product exports use the
// inventory import header, so the file can be uploaded again unchanged.
func (s *Service) ExportCSV(ctx context.Context, userID uuid.UUID, kind ImportKind, w io.Writer) error {
	cw := csv.NewWriter(w)

	switch kind {
	case KindSales:
		sales, err := s.ListSales(ctx, userID)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{"saleId", "saleDate", "productName", "quantity", "priceAtSale", "subtotal", "totalAmount"}); err != nil {
			return err
		}
		for _, sale := range sales {
			for _, it := range sale.Items {
				if err := cw.Write([]string{
					sale.ID.String(),
					sale.SaleDate.UTC().Format(time.RFC3339),
					it.ProductName,
					strconv.Itoa(int(it.Quantity)),
					it.PriceAtSale.StringFixed(2),
					it.Subtotal.StringFixed(2),
					sale.TotalAmount.StringFixed(2),
				}); err != nil {
					return err
				}
			}
		}
	default:
		products, err := s.ListProducts(ctx, userID)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{"name", "price", "stock", "category", "createdAt"}); err != nil {
			return err
		}
		for _, p := range products {
			if err := cw.Write([]string{
				p.Name,
				p.Price.StringFixed(2),
				strconv.Itoa(int(p.Stock)),
				string(p.Category),
				p.CreatedAt.UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
