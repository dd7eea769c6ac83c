package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

var requiredColumns = []string{"id", "name.fa", "name.en", "name.ar", "price"}

// CSVImporter reads menu CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses CSV rows and upserts one product per row. The first invalid row aborts the import;
// rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("%w: missing column %q", domain.ErrInvalid, col)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if err := p.Validate(); err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", line, p.ID, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID: pick(record, index, "id"),
		Name: domain.LocalizedText{
			FA: pick(record, index, "name.fa"),
			EN: pick(record, index, "name.en"),
			AR: pick(record, index, "name.ar"),
		},
		Description: domain.LocalizedText{
			FA: pick(record, index, "description.fa"),
			EN: pick(record, index, "description.en"),
			AR: pick(record, index, "description.ar"),
		},
		Category: pick(record, index, "category"),
		Image:    pick(record, index, "image"),
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return p, fmt.Errorf("%w: price: %v", domain.ErrInvalid, err)
	}
	p.Price = price

	if d := pick(record, index, "discount"); d != "" {
		p.Discount, err = strconv.Atoi(d)
		if err != nil {
			return p, fmt.Errorf("%w: discount: %v", domain.ErrInvalid, err)
		}
	}
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
