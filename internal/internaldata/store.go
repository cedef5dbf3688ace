// Package internaldata provides the internal sales collaborator: keyword
// search over historical thrift sales records, aggregated into the pricing
// core's InternalRecord. Backed by either a CSV file or PostgreSQL.
package internaldata

import (
	"context"
	"time"

	"priceintel/internal/domain/pricing"
)

// Store searches internal sales history for a term. A nil record with a nil
// error means no match: absence is a valid state, not a failure.
type Store interface {
	Search(ctx context.Context, term string) (*pricing.InternalRecord, error)
}

// SaleRow is one inventory item from the sales history.
//
// CSV columns and postgres column names share these identifiers:
// item_id, department, category, subcategory, brand, production_date,
// sold_date, days_to_sell, production_price, sold_price.
type SaleRow struct {
	ItemID          string     `db:"item_id"`
	Department      string     `db:"department"`
	Category        string     `db:"category"`
	Subcategory     string     `db:"subcategory"`
	Brand           string     `db:"brand"`
	ProductionDate  *time.Time `db:"production_date"`
	SoldDate        *time.Time `db:"sold_date"`
	DaysToSell      *int       `db:"days_to_sell"`
	ProductionPrice float64    `db:"production_price"`
	SoldPrice       *float64   `db:"sold_price"`
}

// Sold reports whether the item has a recorded sale.
func (r SaleRow) Sold() bool { return r.SoldDate != nil }
