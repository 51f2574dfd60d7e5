package symbols

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equimeter/internal/contracts"
)

// DefaultSearchLimit caps search results for type-ahead
const DefaultSearchLimit = 5

// Repository looks up listed companies in the companies table
// ⭐ SSOT: 종목명 ↔ 심볼 매핑 조회는 여기서만
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// likePattern wraps q for a substring ILIKE match, escaping wildcards
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

// Search matches company name or symbol, case-insensitive
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]contracts.Company, error) {
	if strings.TrimSpace(query) == "" {
		return []contracts.Company{}, nil
	}
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	sql := `
		SELECT name_of_company, symbol
		FROM companies
		WHERE name_of_company ILIKE $1 OR symbol ILIKE $1
		ORDER BY (upper(symbol) = upper($2)) DESC, name_of_company
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, sql, likePattern(query), strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}

	companies, err := pgx.CollectRows(rows, pgx.RowToStructByPos[contracts.Company])
	if err != nil {
		return nil, fmt.Errorf("scan companies: %w", err)
	}
	return companies, nil
}

// Resolve returns the symbol for an exact company name
func (r *Repository) Resolve(ctx context.Context, companyName string) (string, error) {
	sql := `SELECT symbol FROM companies WHERE name_of_company = $1 LIMIT 1`

	var symbol string
	err := r.db.QueryRow(ctx, sql, strings.TrimSpace(companyName)).Scan(&symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("company %q: %w", companyName, contracts.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve company: %w", err)
	}
	return symbol, nil
}
