package internaldata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"priceintel/internal/domain/pricing"
)

// CSVStore serves internal sales lookups from a CSV file loaded once at
// startup. Suitable for deployments without PostgreSQL.
type CSVStore struct {
	rows []SaleRow
}

// NewCSVStore loads the sales history CSV. Rows with unparseable prices are
// skipped with a warning rather than failing the load.
func NewCSVStore(path string) (*CSVStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales csv: %w", err)
	}
	defer f.Close()

	rows, err := readSaleRows(f)
	if err != nil {
		return nil, fmt.Errorf("parse sales csv %s: %w", path, err)
	}

	sold := 0
	for _, r := range rows {
		if r.Sold() {
			sold++
		}
	}
	log.Info().Str("path", path).Int("records", len(rows)).Int("sold", sold).
		Msg("Loaded internal sales data")

	return &CSVStore{rows: rows}, nil
}

// Search runs the fuzzy match cascade over the loaded rows.
func (s *CSVStore) Search(_ context.Context, term string) (*pricing.InternalRecord, error) {
	matched := matchRows(s.rows, term)
	if len(matched) == 0 {
		log.Info().Str("term", term).Msg("No internal data found")
		return nil, nil
	}
	return Aggregate(matched, term), nil
}

// Rows exposes the loaded rows, used by the postgres migration command.
func (s *CSVStore) Rows() []SaleRow { return s.rows }

func readSaleRows(r io.Reader) ([]SaleRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"item_id", "category", "brand", "production_price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []SaleRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		line++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		productionPrice, err := strconv.ParseFloat(field("production_price"), 64)
		if err != nil {
			log.Warn().Int("line", line).Str("value", field("production_price")).
				Msg("Skipping row with bad production price")
			continue
		}

		row := SaleRow{
			ItemID:          field("item_id"),
			Department:      field("department"),
			Category:        field("category"),
			Subcategory:     field("subcategory"),
			Brand:           field("brand"),
			ProductionDate:  parseDate(field("production_date")),
			SoldDate:        parseDate(field("sold_date")),
			ProductionPrice: productionPrice,
		}
		if v, err := strconv.Atoi(field("days_to_sell")); err == nil {
			row.DaysToSell = &v
		}
		if v, err := strconv.ParseFloat(field("sold_price"), 64); err == nil {
			row.SoldPrice = &v
		}

		rows = append(rows, row)
	}

	return rows, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
