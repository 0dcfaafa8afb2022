package core

// extract.go turns an upload into RawRecords.
//
// The upload is spooled to a temp file first so a slow client cannot hold a
// batch transaction open, and so the size cap is enforced before any row is
// parsed. The temp file is removed by Close on every path.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Field is one column of an import schema. Literal fields hold product names,
// which are matched exactly and only get [CleanName].
type Field struct {
	Name     string
	Required bool
	Literal  bool
}

// Schema describes the columns an importer understands. Synonyms maps a
// lowercased header to its canonical field name.
type Schema struct {
	Kind          ImportKind
	Fields        []Field
	Synonyms      map[string]string
	MissingReason string
}

var InventorySchema = Schema{
	Kind: KindInventory,
	Fields: []Field{
		{Name: "name", Required: true, Literal: true},
		{Name: "price", Required: true},
		{Name: "stock", Required: true},
		{Name: "category", Required: true},
	},
	Synonyms: map[string]string{
		"name":        "name",
		"productname": "name",
		"price":       "price",
		"stock":       "stock",
		"category":    "category",
	},
	MissingReason: "Missing required fields (name, price, stock, category).",
}

var SalesSchema = Schema{
	Kind: KindSales,
	Fields: []Field{
		{Name: "productName", Required: true, Literal: true},
		{Name: "quantity", Required: true},
		{Name: "priceAtSale"},
		{Name: "saleDate"},
	},
	Synonyms: map[string]string{
		"productname": "productName",
		"product":     "productName",
		"name":        "productName",
		"quantity":    "quantity",
		"qty":         "quantity",
		"priceatsale": "priceAtSale",
		"price":       "priceAtSale",
		"saledate":    "saleDate",
		"date":        "saleDate",
	},
	MissingReason: "Missing productName or quantity in CSV row.",
}

// SchemaFor returns the schema for kind.
func SchemaFor(kind ImportKind) Schema {
	if kind == KindSales {
		return SalesSchema
	}
	return InventorySchema
}

// ExtractOptions control spooling and header resolution.
type ExtractOptions struct {
	TempDir string
	MaxSize int64

	// Positional lets an unrecognised header stand in for the schema field
	// at the same column index.
	Positional bool
}

// Extractor streams RawRecords out of a spooled upload.
type Extractor struct {
	schema  Schema
	file    *os.File
	path    string
	reader  *csv.Reader
	columns []string // canonical field per column index, "" when ignored
	pending *ParseError
	done    bool
	closed  bool
}

// NewExtractor spools r to a temp file and reads the header row. Errors
// wrapping ErrStream mean the upload was unreadable or too large; header
// problems are reported by the first call to Next instead.
func NewExtractor(r io.Reader, schema Schema, opts ExtractOptions) (*Extractor, error) {
	f, err := os.CreateTemp(opts.TempDir, "bizsight-import-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	e := &Extractor{schema: schema, file: f, path: f.Name()}

	src := r
	if opts.MaxSize > 0 {
		src = io.LimitReader(r, opts.MaxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: spool upload: %v", ErrStream, err)
	}
	if opts.MaxSize > 0 && n > opts.MaxSize {
		e.Close()
		return nil, fmt.Errorf("%w: %w (limit %d bytes)", ErrStream, ErrFileTooLarge, opts.MaxSize)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		e.Close()
		return nil, fmt.Errorf("rewind spool file: %w", err)
	}

	e.reader = csv.NewReader(WrapForStreaming(f))
	e.reader.FieldsPerRecord = -1
	e.reader.LazyQuotes = true
	e.reader.TrimLeadingSpace = true

	header, err := e.reader.Read()
	switch {
	case errors.Is(err, io.EOF):
		e.pending = &ParseError{Line: 1, Reason: "CSV file is empty."}
		return e, nil
	case err != nil:
		e.Close()
		return nil, fmt.Errorf("%w: read header: %v", ErrStream, err)
	}

	e.columns = resolveColumns(header, schema, opts.Positional)
	if missing := missingRequired(e.columns, schema); len(missing) > 0 {
		e.pending = &ParseError{
			Line:   1,
			Reason: fmt.Sprintf("CSV header is missing required columns: %s.", strings.Join(missing, ", ")),
		}
	}
	return e, nil
}

// resolveColumns maps each header cell to a canonical field. Exact synonym
// matches are resolved first; the positional fallback only fills fields no
// header claimed.
func resolveColumns(header []string, schema Schema, positional bool) []string {
	columns := make([]string, len(header))
	claimed := make(map[string]bool, len(schema.Fields))

	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(CleanCell(h), " ", ""))
		field, ok := schema.Synonyms[key]
		if !ok || claimed[field] {
			continue
		}
		columns[i] = field
		claimed[field] = true
	}

	if positional {
		for i := range columns {
			if columns[i] != "" || i >= len(schema.Fields) {
				continue
			}
			if field := schema.Fields[i].Name; !claimed[field] {
				columns[i] = field
				claimed[field] = true
			}
		}
	}
	return columns
}

func missingRequired(columns []string, schema Schema) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, f := range schema.Fields {
		if f.Required && !present[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Next returns the next record. A *ParseError rejects that row only and
// extraction can continue; io.EOF ends the file; any error wrapping
// ErrStream aborts the import. Blank rows are skipped.
func (e *Extractor) Next() (RawRecord, error) {
	if e.pending != nil {
		perr := e.pending
		e.pending = nil
		e.done = true
		return RawRecord{}, perr
	}
	if e.done {
		return RawRecord{}, io.EOF
	}

	for {
		row, err := e.reader.Read()
		if errors.Is(err, io.EOF) {
			e.done = true
			return RawRecord{}, io.EOF
		}
		if err != nil {
			e.done = true
			return RawRecord{}, fmt.Errorf("%w: %v", ErrStream, err)
		}
		if isEmptyRow(row) {
			continue
		}

		line, _ := e.reader.FieldPos(0)
		rec := RawRecord{Line: line, Values: make(map[string]string, len(e.schema.Fields))}
		for i, field := range e.columns {
			if field == "" || i >= len(row) {
				continue
			}
			if e.schema.literal(field) {
				rec.Values[field] = CleanName(row[i])
			} else {
				rec.Values[field] = CleanCell(row[i])
			}
		}

		for _, f := range e.schema.Fields {
			if f.Required && rec.Values[f.Name] == "" {
				return rec, &ParseError{Line: line, Row: rec.Values, Reason: e.schema.MissingReason}
			}
		}
		return rec, nil
	}
}

func (s Schema) literal(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Literal
		}
	}
	return false
}

// Path is the spool file location, for diagnostics.
func (e *Extractor) Path() string {
	return e.path
}

// Close closes and deletes the spool file. It is safe to call more than once.
func (e *Extractor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	closeErr := e.file.Close()
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove spool file: %w", err)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("close spool file: %w", closeErr)
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
