package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// The storefront and existing backups use plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// Document is the whole persisted state: the unit of every snapshot and backup.
type Document struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Orders     []Order    `json:"orders"`
}

// NewDocument returns an empty document whose collections encode as [] rather than null.
func NewDocument() Document {
	return Document{Products: []Product{}, Categories: []Category{}, Orders: []Order{}}
}

func (d Document) Clone() Document {
	out := Document{
		Products:   append(make([]Product, 0, len(d.Products)), d.Products...),
		Categories: append(make([]Category, 0, len(d.Categories)), d.Categories...),
		Orders:     make([]Order, 0, len(d.Orders)),
	}
	for _, o := range d.Orders {
		out.Orders = append(out.Orders, o.Clone())
	}
	return out
}

// Validate checks uniqueness of ids and every entity's own invariants.
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Products))
	for _, p := range d.Products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate product id %q", ErrInvalid, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", c.ID, err)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalid, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(d.Orders))
	for _, o := range d.Orders {
		if o.ID == "" {
			return fmt.Errorf("%w: order id required", ErrInvalid)
		}
		if !o.Status.Valid() {
			return fmt.Errorf("%w: order %q has unknown status %q", ErrInvalid, o.ID, o.Status)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: duplicate order id %q", ErrInvalid, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

// DecodeDocument parses a backup and requires all three top-level collections to be present.
func DecodeDocument(raw []byte) (Document, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Document{}, fmt.Errorf("%w: document is not a JSON object: %v", ErrInvalid, err)
	}
	for _, k := range []string{"products", "categories", "orders"} {
		if _, ok := keys[k]; !ok {
			return Document{}, fmt.Errorf("%w: document missing %q", ErrInvalid, k)
		}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: decode document: %v", ErrInvalid, err)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Normalize replaces nil collections with empty ones and maps order
// statuses outside the known set onto confirmed (paid) or cancelled.
func (d *Document) Normalize() {
	for i := range d.Orders {
		o := &d.Orders[i]
		if o.Status.Valid() {
			continue
		}
		o.LegacyStatus = string(o.Status)
		if o.Paid {
			o.Status = StatusConfirmed
		} else {
			o.Status = StatusCancelled
		}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
}
