package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
)

// SaleInput is a manual sale of one product.
type SaleInput struct {
	ProductID uuid.UUID  `json:"productId"`
	Quantity  int32      `json:"quantity"`
	SaleDate  *time.Time `json:"saleDate,omitempty"`
}

// RecordSale sells quantity units of one of the user's products at its
// catalog price. The sale, its item and the stock decrement commit together.
func (s *Service) RecordSale(ctx context.Context, userID uuid.UUID, in SaleInput) (Sale, error) {
	if in.Quantity < 1 {
		return Sale{}, &ValidationError{Field: "quantity", Value: fmt.Sprint(in.Quantity), Message: "Invalid quantity."}
	}
	date := s.now()
	if in.SaleDate != nil && !in.SaleDate.IsZero() {
		date = *in.SaleDate
	}

	var sale Sale
	err := store.InTx(ctx, s.store, func(q db.Querier) error {
		product, err := s.ownedProduct(ctx, q, userID, in.ProductID)
		if err != nil {
			return err
		}
		sale, err = recordSale(ctx, q, userID, product, in.Quantity, FromPgNumeric(product.Price), date)
		return err
	})
	if err != nil {
		return Sale{}, err
	}

	s.invalidateProducts(ctx, userID)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionSaleCreate,
		UserID: userID,
		Entity: sale.ID.String(),
		Detail: map[string]any{
			"productId": in.ProductID.String(),
			"quantity":  in.Quantity,
			"total":     sale.TotalAmount.StringFixed(2),
		},
	})
	return sale, nil
}

// ListSales returns the user's sales with their items, most recent sale
// date first.
func (s *Service) ListSales(ctx context.Context, userID uuid.UUID) ([]Sale, error) {
	rows, err := s.store.ListSalesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	itemRows, err := s.store.ListSaleItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}

	sort.SliceStable(itemRows, func(i, j int) bool { return itemRows[i].Position < itemRows[j].Position })
	items := make(map[uuid.UUID][]SaleItem, len(rows))
	for _, it := range itemRows {
		items[it.SaleID] = append(items[it.SaleID], saleItemFromDB(it))
	}

	sales := make([]Sale, len(rows))
	for i, r := range rows {
		sales[i] = Sale{
			ID:          r.ID,
			UserID:      r.UserID,
			Items:       items[r.ID],
			TotalAmount: FromPgNumeric(r.TotalAmount),
			SaleDate:    r.SaleDate,
			CreatedAt:   r.CreatedAt,
		}
		if sales[i].Items == nil {
			sales[i].Items = []SaleItem{}
		}
	}
	return sales, nil
}
