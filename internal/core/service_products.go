package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/bizsight/internal/cache"
	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
)

// ListProducts returns the user's products ordered by name, served from the
// cache when possible.
func (s *Service) ListProducts(ctx context.Context, userID uuid.UUID) ([]Product, error) {
	if data, err := s.cache.Get(ctx, userID); err == nil {
		var products []Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logging.FromContext(ctx).Warn("product cache read failed", "error", err)
	}

	// The generation is read before the query so a write that commits in
	// between makes the Set below a no-op.
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		logging.FromContext(ctx).Warn("product cache read failed", "error", genErr)
	}

	rows, err := s.store.ListProductsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]Product, len(rows))
	for i, p := range rows {
		products[i] = productFromDB(p)
	}

	if genErr != nil {
		return products, nil
	}
	if data, err := json.Marshal(products); err == nil {
		err := s.cache.Set(ctx, userID, gen, data)
		switch {
		case errors.Is(err, cache.ErrStale):
			logging.FromContext(ctx).Debug("product cache write skipped, inventory changed")
		case err != nil:
			logging.FromContext(ctx).Warn("product cache write failed", "error", err)
		}
	}
	return products, nil
}

// CreateProduct adds a product. Names are unique per user.
func (s *Service) CreateProduct(ctx context.Context, userID uuid.UUID, in ProductInput) (Product, error) {
	rec, err := in.Validate()
	if err != nil {
		return Product{}, err
	}

	row, err := s.store.CreateProduct(ctx, db.CreateProductParams{
		UserID:   userID,
		Name:     rec.Name,
		Price:    ToPgNumeric(rec.Price),
		Stock:    rec.Stock,
		Category: string(rec.Category),
	})
	if err != nil {
		return Product{}, productWriteError(err)
	}

	product := productFromDB(row)
	s.invalidateProducts(ctx, userID)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionProductCreate,
		UserID: userID,
		Entity: product.ID.String(),
		Detail: map[string]any{"name": product.Name},
	})
	return product, nil
}

// UpdateProduct replaces every editable field of a product the user owns.
func (s *Service) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, in ProductInput) (Product, error) {
	rec, err := in.Validate()
	if err != nil {
		return Product{}, err
	}
	if _, err := s.ownedProduct(ctx, s.store, userID, productID); err != nil {
		return Product{}, err
	}

	row, err := s.store.UpdateProduct(ctx, db.UpdateProductParams{
		ID:       productID,
		UserID:   userID,
		Name:     rec.Name,
		Price:    ToPgNumeric(rec.Price),
		Stock:    rec.Stock,
		Category: string(rec.Category),
	})
	if store.IsNotFound(err) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, productWriteError(err)
	}

	product := productFromDB(row)
	s.invalidateProducts(ctx, userID)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionProductUpdate,
		UserID: userID,
		Entity: product.ID.String(),
		Detail: map[string]any{"name": product.Name, "stock": product.Stock, "price": product.Price.StringFixed(2)},
	})
	return product, nil
}

// DeleteProduct removes a product the user owns. Past sales keep their
// item snapshot with the product link cleared.
func (s *Service) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, s.store, userID, productID)
	if err != nil {
		return err
	}

	n, err := s.store.DeleteProduct(ctx, db.DeleteProductParams{ID: productID, UserID: userID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}

	s.invalidateProducts(ctx, userID)
	s.LogAudit(ctx, AuditLogParams{
		Action: ActionProductDelete,
		UserID: userID,
		Entity: productID.String(),
		Detail: map[string]any{"name": product.Name},
	})
	return nil
}

// ownedProduct loads a product by id and checks it belongs to userID.
func (s *Service) ownedProduct(ctx context.Context, q db.Querier, userID, productID uuid.UUID) (db.Product, error) {
	p, err := q.GetProductByID(ctx, productID)
	if store.IsNotFound(err) {
		return db.Product{}, ErrProductNotFound
	}
	if err != nil {
		return db.Product{}, fmt.Errorf("get product: %w", err)
	}
	if p.UserID != userID {
		return db.Product{}, ErrNotOwner
	}
	return p, nil
}

func productWriteError(err error) error {
	if _, ok := store.Violation(err, store.CodeUniqueViolation); ok {
		return ErrDuplicateName
	}
	if name, ok := store.Violation(err, store.CodeCheckViolation); ok {
		if reason, known := constraintReasons[name]; known {
			return &ValidationError{Message: reason}
		}
	}
	return fmt.Errorf("write product: %w", err)
}

func (s *Service) invalidateProducts(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), userID); err != nil {
		logging.FromContext(ctx).Warn("product cache invalidate failed", "error", err)
	}
}
