package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the fixed product classification.
type Category string

const (
	CategoryFood        Category = "Food"
	CategoryClothes     Category = "Clothes"
	CategoryElectronics Category = "Electronics"
	CategoryBooks       Category = "Books"
	CategoryHomeGoods   Category = "Home Goods"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood, CategoryClothes, CategoryElectronics, CategoryBooks,
	CategoryHomeGoods, CategorySports, CategoryOther,
}

// ParseCategory matches s against the category list exactly (case-sensitive).
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// MaxProductNameLength is the longest accepted product name, in characters.
const MaxProductNameLength = 100

// Product is a catalog entry owned by one user.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int32           `json:"stock"`
	Category  Category        `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Sale is a recorded sale with its line items. Items snapshot the product
// name and price so later catalog edits do not rewrite history.
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	SaleDate    time.Time       `json:"saleDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SaleItem is one line of a Sale. ProductID is nil once the product is deleted.
type SaleItem struct {
	ProductID   *uuid.UUID      `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// User is an account without its password hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobileNumber"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ImportKind selects the importer.
type ImportKind string

const (
	KindInventory ImportKind = "inventory"
	KindSales     ImportKind = "sales"
)

// ParseImportKind accepts "inventory"/"products" and "sales".
func ParseImportKind(s string) (ImportKind, bool) {
	switch s {
	case "inventory", "products":
		return KindInventory, true
	case "sales":
		return KindSales, true
	}
	return "", false
}

// RawRecord is one extracted row keyed by canonical field name. Values are
// cleaned but not yet typed.
type RawRecord struct {
	Line   int
	Values map[string]string
}

// InventoryRecord is a validated inventory row.
type InventoryRecord struct {
	Line     int
	Name     string
	Price    decimal.Decimal
	Stock    int32
	Category Category
}

// SaleRecord is a validated sales row. A nil PriceAtSale means the catalog
// price applies; a zero SaleDate means the time of import.
type SaleRecord struct {
	Line        int
	ProductName string
	Quantity    int32
	PriceAtSale *decimal.Decimal
	SaleDate    time.Time
}

// RowError describes one rejected row.
type RowError struct {
	Line   int               `json:"line"`
	Row    map[string]string `json:"row,omitempty"`
	Reason string            `json:"reason"`
	Code   string            `json:"code,omitempty"`
}

// Outcome is the three-way classification of an import.
type Outcome string

const (
	OutcomeFullSuccess    Outcome = "full-success"
	OutcomePartialSuccess Outcome = "partial-success"
	OutcomeFullRejection  Outcome = "full-rejection"
)

// ErrorBuckets groups row errors by the stage that produced them.
type ErrorBuckets struct {
	Parse      []RowError `json:"parse"`
	Validation []RowError `json:"validation"`
	Processing []RowError `json:"processing"`
}

// ImportReport is the result of one import.
type ImportReport struct {
	Kind      ImportKind    `json:"kind"`
	Outcome   Outcome       `json:"outcome"`
	Message   string        `json:"message"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"processedCount"`
	Failed    int           `json:"failedCount"`
	Errors    ErrorBuckets  `json:"errors"`
	Duration  time.Duration `json:"-"`
}

// ImportRun is a persisted summary of a past import.
type ImportRun struct {
	ID         uuid.UUID  `json:"id"`
	Kind       ImportKind `json:"kind"`
	FileName   string     `json:"fileName"`
	Outcome    Outcome    `json:"outcome"`
	Attempted  int        `json:"attempted"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	DurationMs int64      `json:"durationMs"`
	CreatedAt  time.Time  `json:"createdAt"`
}
