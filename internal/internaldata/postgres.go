package internaldata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"priceintel/internal/domain/pricing"
)

// QueryTimeout bounds every sales history query.
const QueryTimeout = 10 * time.Second

const saleColumns = `item_id, department, category, subcategory, brand,
	production_date, sold_date, days_to_sell, production_price, sold_price`

// PostgresStore searches the sales_data table. The fuzzy cascade mirrors the
// CSV store: phrase match, then word-by-word, then brand-only.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Search(ctx context.Context, term string) (*pricing.InternalRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.queryPhrase(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rows, err = s.queryWords(ctx, term)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		rows, err = s.queryBrand(ctx, term)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		log.Info().Str("term", term).Msg("No internal data found")
		return nil, nil
	}

	return Aggregate(rows, term), nil
}

func (s *PostgresStore) queryPhrase(ctx context.Context, term string) ([]SaleRow, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sales_data
		WHERE brand ILIKE $1 OR department ILIKE $1
		   OR category ILIKE $1 OR subcategory ILIKE $1`, saleColumns)

	var rows []SaleRow
	if err := s.db.SelectContext(ctx, &rows, query, "%"+term+"%"); err != nil {
		return nil, fmt.Errorf("phrase search: %w", err)
	}
	return rows, nil
}

func (s *PostgresStore) queryWords(ctx context.Context, term string) ([]SaleRow, error) {
	if len(strings.Fields(term)) < 2 {
		return nil, nil
	}
	words := searchWords(term)
	if len(words) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(words))
	args := make([]interface{}, 0, len(words))
	for i, word := range words {
		p := fmt.Sprintf("$%d", i+1)
		clauses = append(clauses, fmt.Sprintf(
			"brand ILIKE %[1]s OR department ILIKE %[1]s OR category ILIKE %[1]s OR subcategory ILIKE %[1]s", p))
		args = append(args, "%"+word+"%")
	}
	query := fmt.Sprintf("SELECT %s FROM sales_data WHERE %s",
		saleColumns, strings.Join(clauses, " OR "))

	var rows []SaleRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("word search: %w", err)
	}
	return rows, nil
}

func (s *PostgresStore) queryBrand(ctx context.Context, term string) ([]SaleRow, error) {
	words := strings.Fields(term)
	if len(words) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM sales_data WHERE brand ILIKE $1", saleColumns)

	var rows []SaleRow
	if err := s.db.SelectContext(ctx, &rows, query, "%"+words[0]+"%"); err != nil {
		return nil, fmt.Errorf("brand search: %w", err)
	}
	return rows, nil
}

// Schema creates the sales_data table when missing. Used by the migrate
// command before bulk loading.
const Schema = `
CREATE TABLE IF NOT EXISTS sales_data (
	item_id          TEXT PRIMARY KEY,
	department       TEXT,
	category         TEXT,
	subcategory      TEXT,
	brand            TEXT,
	production_date  DATE,
	sold_date        DATE,
	days_to_sell     INTEGER,
	production_price NUMERIC(10,2) NOT NULL,
	sold_price       NUMERIC(10,2)
);
CREATE INDEX IF NOT EXISTS idx_sales_brand ON sales_data (LOWER(brand));
CREATE INDEX IF NOT EXISTS idx_sales_category ON sales_data (LOWER(category));
`

// Insert upserts one sale row, keyed by item_id.
func (s *PostgresStore) Insert(ctx context.Context, row SaleRow) error {
	query := fmt.Sprintf(`
		INSERT INTO sales_data (%s)
		VALUES (:item_id, :department, :category, :subcategory, :brand,
			:production_date, :sold_date, :days_to_sell, :production_price, :sold_price)
		ON CONFLICT (item_id) DO UPDATE SET
			sold_date = EXCLUDED.sold_date,
			days_to_sell = EXCLUDED.days_to_sell,
			sold_price = EXCLUDED.sold_price`, saleColumns)

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert sale %s: %w", row.ItemID, err)
	}
	return nil
}

// EnsureSchema applies the sales_data schema.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure sales schema: %w", err)
	}
	return nil
}
