package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// productCategories mirrors the products_category_valid CHECK constraint.
var productCategories = map[string]bool{
	"Food": true, "Clothes": true, "Electronics": true, "Books": true,
	"Home Goods": true, "Sports": true, "Other": true,
}

// Memory is an in-process Store used for demo mode and tests. It enforces
// the same unique and check constraints as the SQL schema and reports
// violations as *pgconn.PgError so callers handle both stores identically.
//
// A batch holds the store lock from Begin until Commit or Rollback, so
// batches are serialized and direct calls wait for them. Foreign keys to
// users are not enforced.
type Memory struct {
	mu  sync.Mutex
	t   *tables
	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{now: time.Now}
	m.t = newTables(func() time.Time { return m.now() })
	return m
}

// SetClock overrides the timestamp source. Tests only.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Begin opens a batch. It blocks until any running batch finishes.
func (m *Memory) Begin(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	return &memBatch{m: m, start: m.t.clone()}, nil
}

type memBatch struct {
	m     *Memory
	start *tables
	done  bool
}

func (b *memBatch) Do(ctx context.Context, fn func(q db.Querier) error) error {
	if b.done {
		return fmt.Errorf("%w: batch already closed", ErrBatchAborted)
	}
	sp := b.m.t.clone()
	if err := fn(b.m.t); err != nil {
		b.m.t.restore(sp)
		return err
	}
	return nil
}

func (b *memBatch) Commit(context.Context) error {
	if b.done {
		return pgx.ErrTxClosed
	}
	b.done = true
	b.m.mu.Unlock()
	return nil
}

func (b *memBatch) Rollback(context.Context) error {
	if b.done {
		return pgx.ErrTxClosed
	}
	b.m.t.restore(b.start)
	b.done = true
	b.m.mu.Unlock()
	return nil
}

// Direct (non-batch) queries.

func (m *Memory) CreateImportRun(ctx context.Context, arg db.CreateImportRunParams) (db.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.CreateImportRun(ctx, arg)
}

func (m *Memory) CreateProduct(ctx context.Context, arg db.CreateProductParams) (db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.CreateProduct(ctx, arg)
}

func (m *Memory) CreateSale(ctx context.Context, arg db.CreateSaleParams) (db.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.CreateSale(ctx, arg)
}

func (m *Memory) CreateSaleItem(ctx context.Context, arg db.CreateSaleItemParams) (db.SaleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.CreateSaleItem(ctx, arg)
}

func (m *Memory) CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.CreateUser(ctx, arg)
}

func (m *Memory) DecrementProductStock(ctx context.Context, arg db.DecrementProductStockParams) (db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DecrementProductStock(ctx, arg)
}

func (m *Memory) DeleteProduct(ctx context.Context, arg db.DeleteProductParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteProduct(ctx, arg)
}

func (m *Memory) DeleteProductsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteProductsByUser(ctx, userID)
}

func (m *Memory) DeleteSalesByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteSalesByUser(ctx, userID)
}

func (m *Memory) GetProductByID(ctx context.Context, id uuid.UUID) (db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetProductByID(ctx, id)
}

func (m *Memory) GetProductByName(ctx context.Context, arg db.GetProductByNameParams) (db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetProductByName(ctx, arg)
}

func (m *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetUserByID(ctx, id)
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetUserByUsername(ctx, username)
}

func (m *Memory) InsertAuditLog(ctx context.Context, arg db.InsertAuditLogParams) (db.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.InsertAuditLog(ctx, arg)
}

func (m *Memory) ListImportRunsByUser(ctx context.Context, arg db.ListImportRunsByUserParams) ([]db.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListImportRunsByUser(ctx, arg)
}

func (m *Memory) ListProductsByUser(ctx context.Context, userID uuid.UUID) ([]db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListProductsByUser(ctx, userID)
}

func (m *Memory) ListSaleItemsByUser(ctx context.Context, userID uuid.UUID) ([]db.SaleItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSaleItemsByUser(ctx, userID)
}

func (m *Memory) ListSalesByUser(ctx context.Context, userID uuid.UUID) ([]db.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSalesByUser(ctx, userID)
}

func (m *Memory) PurgeAuditLogs(ctx context.Context, createdAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.PurgeAuditLogs(ctx, createdAt)
}

func (m *Memory) UpdateProduct(ctx context.Context, arg db.UpdateProductParams) (db.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.UpdateProduct(ctx, arg)
}

// tables holds the rows and implements db.Querier without locking.
type tables struct {
	now      func() time.Time
	users    map[uuid.UUID]db.User
	products map[uuid.UUID]db.Product
	sales    map[uuid.UUID]db.Sale
	items    []db.SaleItem
	runs     []db.ImportRun
	audit    []db.AuditLog
}

var _ db.Querier = (*tables)(nil)

func newTables(now func() time.Time) *tables {
	return &tables{
		now:      now,
		users:    make(map[uuid.UUID]db.User),
		products: make(map[uuid.UUID]db.Product),
		sales:    make(map[uuid.UUID]db.Sale),
	}
}

func (t *tables) clone() *tables {
	c := newTables(t.now)
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.sales {
		c.sales[k] = v
	}
	c.items = append([]db.SaleItem(nil), t.items...)
	c.runs = append([]db.ImportRun(nil), t.runs...)
	c.audit = append([]db.AuditLog(nil), t.audit...)
	return c
}

func (t *tables) restore(from *tables) {
	snap := from.clone()
	t.users, t.products, t.sales = snap.users, snap.products, snap.sales
	t.items, t.runs, t.audit = snap.items, snap.runs, snap.audit
}

func violation(code, constraint, table string) error {
	msg := fmt.Sprintf("new row for relation %q violates check constraint %q", table, constraint)
	if code == CodeUniqueViolation {
		msg = fmt.Sprintf("duplicate key value violates unique constraint %q", constraint)
	}
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           code,
		Message:        msg,
		TableName:      table,
		ConstraintName: constraint,
	}
}

func negative(n pgtype.Numeric) bool {
	return n.Valid && n.Int != nil && n.Int.Sign() < 0
}

func checkProduct(p db.Product) error {
	if l := utf8.RuneCountInString(p.Name); l < 1 || l > 100 {
		return violation(CodeCheckViolation, "products_name_len", "products")
	}
	if negative(p.Price) {
		return violation(CodeCheckViolation, "products_price_nonnegative", "products")
	}
	if p.Stock < 0 {
		return violation(CodeCheckViolation, "products_stock_nonnegative", "products")
	}
	if !productCategories[p.Category] {
		return violation(CodeCheckViolation, "products_category_valid", "products")
	}
	return nil
}

func (t *tables) nameTaken(userID uuid.UUID, name string, except uuid.UUID) bool {
	for _, p := range t.products {
		if p.UserID == userID && p.Name == name && p.ID != except {
			return true
		}
	}
	return false
}

func (t *tables) CreateProduct(_ context.Context, arg db.CreateProductParams) (db.Product, error) {
	now := t.now()
	p := db.Product{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		Name:      arg.Name,
		Price:     arg.Price,
		Stock:     arg.Stock,
		Category:  arg.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := checkProduct(p); err != nil {
		return db.Product{}, err
	}
	if t.nameTaken(arg.UserID, arg.Name, uuid.Nil) {
		return db.Product{}, violation(CodeUniqueViolation, "products_user_name_key", "products")
	}
	t.products[p.ID] = p
	return p, nil
}

func (t *tables) UpdateProduct(_ context.Context, arg db.UpdateProductParams) (db.Product, error) {
	p, ok := t.products[arg.ID]
	if !ok || p.UserID != arg.UserID {
		return db.Product{}, pgx.ErrNoRows
	}
	p.Name = arg.Name
	p.Price = arg.Price
	p.Stock = arg.Stock
	p.Category = arg.Category
	p.UpdatedAt = t.now()
	if err := checkProduct(p); err != nil {
		return db.Product{}, err
	}
	if t.nameTaken(p.UserID, p.Name, p.ID) {
		return db.Product{}, violation(CodeUniqueViolation, "products_user_name_key", "products")
	}
	t.products[p.ID] = p
	return p, nil
}

func (t *tables) DecrementProductStock(_ context.Context, arg db.DecrementProductStockParams) (db.Product, error) {
	p, ok := t.products[arg.ID]
	if !ok || p.UserID != arg.UserID || p.Stock < arg.Quantity {
		return db.Product{}, pgx.ErrNoRows
	}
	p.Stock -= arg.Quantity
	p.UpdatedAt = t.now()
	if err := checkProduct(p); err != nil {
		return db.Product{}, err
	}
	t.products[p.ID] = p
	return p, nil
}

func (t *tables) GetProductByID(_ context.Context, id uuid.UUID) (db.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return db.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (t *tables) GetProductByName(_ context.Context, arg db.GetProductByNameParams) (db.Product, error) {
	for _, p := range t.products {
		if p.UserID == arg.UserID && p.Name == arg.Name {
			return p, nil
		}
	}
	return db.Product{}, pgx.ErrNoRows
}

func (t *tables) ListProductsByUser(_ context.Context, userID uuid.UUID) ([]db.Product, error) {
	var out []db.Product
	for _, p := range t.products {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tables) unlinkProduct(id uuid.UUID) {
	for i := range t.items {
		if t.items[i].ProductID.Valid && uuid.UUID(t.items[i].ProductID.Bytes) == id {
			t.items[i].ProductID = pgtype.UUID{}
		}
	}
}

func (t *tables) DeleteProduct(_ context.Context, arg db.DeleteProductParams) (int64, error) {
	p, ok := t.products[arg.ID]
	if !ok || p.UserID != arg.UserID {
		return 0, nil
	}
	delete(t.products, arg.ID)
	t.unlinkProduct(arg.ID)
	return 1, nil
}

func (t *tables) DeleteProductsByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for id, p := range t.products {
		if p.UserID == userID {
			delete(t.products, id)
			t.unlinkProduct(id)
			n++
		}
	}
	return n, nil
}

func (t *tables) CreateSale(_ context.Context, arg db.CreateSaleParams) (db.Sale, error) {
	if negative(arg.TotalAmount) {
		return db.Sale{}, violation(CodeCheckViolation, "sales_total_amount_check", "sales")
	}
	s := db.Sale{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		TotalAmount: arg.TotalAmount,
		SaleDate:    arg.SaleDate,
		CreatedAt:   t.now(),
	}
	t.sales[s.ID] = s
	return s, nil
}

func (t *tables) CreateSaleItem(_ context.Context, arg db.CreateSaleItemParams) (db.SaleItem, error) {
	if _, ok := t.sales[arg.SaleID]; !ok {
		return db.SaleItem{}, violation(CodeForeignKeyViolation, "sale_items_sale_id_fkey", "sale_items")
	}
	if arg.Quantity < 1 {
		return db.SaleItem{}, violation(CodeCheckViolation, "sale_items_quantity_check", "sale_items")
	}
	if negative(arg.PriceAtSale) || negative(arg.Subtotal) {
		return db.SaleItem{}, violation(CodeCheckViolation, "sale_items_subtotal_check", "sale_items")
	}
	for _, it := range t.items {
		if it.SaleID == arg.SaleID && it.Position == arg.Position {
			return db.SaleItem{}, violation(CodeUniqueViolation, "sale_items_pkey", "sale_items")
		}
	}
	item := db.SaleItem(arg)
	t.items = append(t.items, item)
	return item, nil
}

func (t *tables) ListSalesByUser(_ context.Context, userID uuid.UUID) ([]db.Sale, error) {
	var out []db.Sale
	for _, s := range t.sales {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (t *tables) ListSaleItemsByUser(_ context.Context, userID uuid.UUID) ([]db.SaleItem, error) {
	var out []db.SaleItem
	for _, it := range t.items {
		if s, ok := t.sales[it.SaleID]; ok && s.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *tables) DeleteSalesByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for id, s := range t.sales {
		if s.UserID == userID {
			delete(t.sales, id)
			n++
		}
	}
	kept := t.items[:0]
	for _, it := range t.items {
		if _, ok := t.sales[it.SaleID]; ok {
			kept = append(kept, it)
		}
	}
	t.items = kept
	return n, nil
}

func (t *tables) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	if utf8.RuneCountInString(arg.MobileNumber) != 10 {
		return db.User{}, violation(CodeCheckViolation, "users_mobile_number_len", "users")
	}
	for _, u := range t.users {
		switch {
		case u.Username == arg.Username:
			return db.User{}, violation(CodeUniqueViolation, "users_username_key", "users")
		case u.Email == arg.Email:
			return db.User{}, violation(CodeUniqueViolation, "users_email_key", "users")
		case u.MobileNumber == arg.MobileNumber:
			return db.User{}, violation(CodeUniqueViolation, "users_mobile_number_key", "users")
		}
	}
	u := db.User{
		ID:           uuid.New(),
		FullName:     arg.FullName,
		Username:     arg.Username,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		MobileNumber: arg.MobileNumber,
		CreatedAt:    t.now(),
	}
	t.users[u.ID] = u
	return u, nil
}

func (t *tables) GetUserByID(_ context.Context, id uuid.UUID) (db.User, error) {
	u, ok := t.users[id]
	if !ok {
		return db.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (t *tables) GetUserByUsername(_ context.Context, username string) (db.User, error) {
	for _, u := range t.users {
		if u.Username == username {
			return u, nil
		}
	}
	return db.User{}, pgx.ErrNoRows
}

func (t *tables) CreateImportRun(_ context.Context, arg db.CreateImportRunParams) (db.ImportRun, error) {
	r := db.ImportRun{
		ID:         uuid.New(),
		UserID:     arg.UserID,
		Kind:       arg.Kind,
		FileName:   arg.FileName,
		Outcome:    arg.Outcome,
		Attempted:  arg.Attempted,
		Succeeded:  arg.Succeeded,
		Failed:     arg.Failed,
		DurationMs: arg.DurationMs,
		CreatedAt:  t.now(),
	}
	t.runs = append(t.runs, r)
	return r, nil
}

func (t *tables) ListImportRunsByUser(_ context.Context, arg db.ListImportRunsByUserParams) ([]db.ImportRun, error) {
	var out []db.ImportRun
	for i := len(t.runs) - 1; i >= 0 && int32(len(out)) < arg.Limit; i-- {
		if t.runs[i].UserID == arg.UserID {
			out = append(out, t.runs[i])
		}
	}
	return out, nil
}

func (t *tables) InsertAuditLog(_ context.Context, arg db.InsertAuditLogParams) (db.AuditLog, error) {
	e := db.AuditLog{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		Action:    arg.Action,
		Severity:  arg.Severity,
		Entity:    arg.Entity,
		Detail:    arg.Detail,
		IpAddress: arg.IpAddress,
		UserAgent: arg.UserAgent,
		CreatedAt: t.now(),
	}
	t.audit = append(t.audit, e)
	return e, nil
}

func (t *tables) PurgeAuditLogs(_ context.Context, createdAt time.Time) (int64, error) {
	kept := t.audit[:0]
	var n int64
	for _, e := range t.audit {
		if e.CreatedAt.Before(createdAt) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	t.audit = kept
	return n, nil
}
