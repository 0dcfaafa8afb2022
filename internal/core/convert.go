package core

// convert.go turns user-supplied CSV cells into typed values and maps
// between domain types and the pgtype values the queries take.
//
// Cells come from spreadsheets, so parsing is forgiving about formatting:
//   - currency symbols, thousands separators and accounting parentheses in money
//   - Excel formula prefixes (="value") and stray quotes around any cell
//   - ISO, US and EU date layouts, with or without a time component

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// TwoDigitYearPivot: two-digit years that would land more than this many
// years in the future are moved back a century.
var TwoDigitYearPivot = 20

var (
	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04",
		"1/2/2006 3:04 PM",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// CleanCell removes common spreadsheet artifacts from a cell value: surrounding
// whitespace, an Excel formula prefix (="..."), and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// CleanName trims a product name and unwraps the Excel text form ="...".
// Quotes, apostrophes and a bare leading = are part of the name.
func CleanName(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// ParseMoney parses a price cell. It accepts "$1,299.50", "€12", "(4.00)"
// and plain decimals, and rounds to cents.
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", "₹", "", ",", "", " ", "").Replace(s)
	if negative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// ParseInt32 parses a whole number cell. Fractions and thousands
// separators are rejected.
func ParseInt32(s string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ParseDate parses a date or timestamp cell. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ToPgNumeric converts a decimal to the NUMERIC parameter type.
func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// FromPgNumeric converts a NUMERIC column to a decimal. NULL and NaN map to zero.
func FromPgNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil || n.NaN {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// ToPgUUID wraps id as a non-null UUID parameter.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// FromPgUUID returns nil for a NULL UUID column.
func FromPgUUID(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

// ToPgText returns a NULL text parameter for an empty string.
func ToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func productFromDB(p db.Product) Product {
	return Product{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Price:     FromPgNumeric(p.Price),
		Stock:     p.Stock,
		Category:  Category(p.Category),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func saleItemFromDB(it db.SaleItem) SaleItem {
	return SaleItem{
		ProductID:   FromPgUUID(it.ProductID),
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		PriceAtSale: FromPgNumeric(it.PriceAtSale),
		Subtotal:    FromPgNumeric(it.Subtotal),
	}
}

func userFromDB(u db.User) User {
	return User{
		ID:           u.ID,
		FullName:     u.FullName,
		Username:     u.Username,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		CreatedAt:    u.CreatedAt,
	}
}

func importRunFromDB(r db.ImportRun) ImportRun {
	return ImportRun{
		ID:         r.ID,
		Kind:       ImportKind(r.Kind),
		FileName:   r.FileName,
		Outcome:    Outcome(r.Outcome),
		Attempted:  int(r.Attempted),
		Succeeded:  int(r.Succeeded),
		Failed:     int(r.Failed),
		DurationMs: r.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}
