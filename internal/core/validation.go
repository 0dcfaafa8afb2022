package core

// validation.go applies the business rules that turn RawRecords into typed
// records. Each function keeps input order in both of its results.

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var invalidCategoryList = func() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}()

// ValidateInventory checks price, stock, category and name of each record.
func ValidateInventory(records []RawRecord) ([]InventoryRecord, []RowError) {
	var (
		accepted []InventoryRecord
		rejected []RowError
	)
	for _, raw := range records {
		rec, verr := validateInventoryRecord(raw)
		if verr != nil {
			rejected = append(rejected, rowErrorFrom(raw, verr))
			continue
		}
		accepted = append(accepted, rec)
	}
	return accepted, rejected
}

func validateInventoryRecord(raw RawRecord) (InventoryRecord, *ValidationError) {
	v := raw.Values

	name, verr := validateProductName(v["name"])
	if verr != nil {
		return InventoryRecord{}, verr
	}

	price, ok := ParseMoney(v["price"])
	if !ok || price.IsNegative() {
		return InventoryRecord{}, &ValidationError{Field: "price", Value: v["price"], Message: "Invalid price. Must be a non-negative number."}
	}

	stock, ok := ParseInt32(v["stock"])
	if !ok || stock < 0 {
		return InventoryRecord{}, &ValidationError{Field: "stock", Value: v["stock"], Message: "Invalid stock. Must be a non-negative integer."}
	}

	category, verr := validateCategory(v["category"])
	if verr != nil {
		return InventoryRecord{}, verr
	}

	return InventoryRecord{Line: raw.Line, Name: name, Price: price, Stock: stock, Category: category}, nil
}

// ValidateSales checks quantity, the optional price override and the
// optional sale date. Product existence is a reconciliation concern.
func ValidateSales(records []RawRecord) ([]SaleRecord, []RowError) {
	var (
		accepted []SaleRecord
		rejected []RowError
	)
	for _, raw := range records {
		rec, verr := validateSaleRecord(raw)
		if verr != nil {
			rejected = append(rejected, rowErrorFrom(raw, verr))
			continue
		}
		accepted = append(accepted, rec)
	}
	return accepted, rejected
}

func validateSaleRecord(raw RawRecord) (SaleRecord, *ValidationError) {
	v := raw.Values
	rec := SaleRecord{Line: raw.Line, ProductName: v["productName"]}

	qty, ok := ParseInt32(v["quantity"])
	if !ok || qty < 1 {
		return SaleRecord{}, &ValidationError{Field: "quantity", Value: v["quantity"], Message: "Invalid quantity."}
	}
	rec.Quantity = qty

	// An unparsable override falls back to the catalog price.
	if s := v["priceAtSale"]; s != "" {
		if price, ok := ParseMoney(s); ok {
			if price.IsNegative() {
				return SaleRecord{}, &ValidationError{Field: "priceAtSale", Value: s, Message: "Invalid priceAtSale. Must be a non-negative number."}
			}
			rec.PriceAtSale = &price
		}
	}

	if s := v["saleDate"]; s != "" {
		date, ok := ParseDate(s)
		if !ok {
			return SaleRecord{}, &ValidationError{Field: "saleDate", Value: s, Message: "Invalid saleDate."}
		}
		rec.SaleDate = date
	}

	return rec, nil
}

// ProductInput is a manual create or update request.
type ProductInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int32           `json:"stock"`
	Category string          `json:"category"`
}

// Validate normalizes the input. An empty category becomes Other.
func (in ProductInput) Validate() (InventoryRecord, error) {
	name, verr := validateProductName(in.Name)
	if verr != nil {
		return InventoryRecord{}, verr
	}
	if in.Price.IsNegative() {
		return InventoryRecord{}, &ValidationError{Field: "price", Value: in.Price.String(), Message: "Invalid price. Must be a non-negative number."}
	}
	if in.Stock < 0 {
		return InventoryRecord{}, &ValidationError{Field: "stock", Value: fmt.Sprint(in.Stock), Message: "Invalid stock. Must be a non-negative integer."}
	}

	category := CategoryOther
	if s := strings.TrimSpace(in.Category); s != "" {
		c, verr := validateCategory(s)
		if verr != nil {
			return InventoryRecord{}, verr
		}
		category = c
	}

	return InventoryRecord{Name: name, Price: in.Price.Round(2), Stock: in.Stock, Category: category}, nil
}

func validateProductName(s string) (string, *ValidationError) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "Product name is required."}
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return "", &ValidationError{Field: "name", Value: name, Message: fmt.Sprintf("Product name must be at most %d characters.", MaxProductNameLength)}
	}
	return name, nil
}

func validateCategory(s string) (Category, *ValidationError) {
	c, ok := ParseCategory(s)
	if !ok {
		return "", &ValidationError{
			Field:   "category",
			Value:   s,
			Message: fmt.Sprintf("Invalid category: %q. Must be one of: %s.", s, invalidCategoryList),
		}
	}
	return c, nil
}

func rowErrorFrom(raw RawRecord, verr *ValidationError) RowError {
	return RowError{Line: raw.Line, Row: raw.Values, Reason: verr.Message, Code: CodeFor(verr.Message)}
}
