package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// quoteDB is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type quoteDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores quotes in the relational database.
type PostgresRepository struct {
	db quoteDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("quotes: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an alternate pgx-compatible database,
// used by tests.
func NewPostgresRepositoryWithDB(db quoteDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateQuoteRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	details, err := json.Marshal(req.Details)
	if err != nil {
		return nil, fmt.Errorf("quotes: marshal details: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO quotes (id, company_id, customer_name, address, space_type, surfaces, paint_grade, prep_condition, timeline, details, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.CompanyID,
		req.CustomerName,
		req.Address,
		req.SpaceType,
		req.Surfaces,
		req.PaintGrade,
		req.PrepCondition,
		req.Timeline,
		details,
		req.Source,
		StatusDraft,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("quotes: insert failed: %w", err)
	}

	return &Quote{
		ID:            id.String(),
		CompanyID:     req.CompanyID,
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		SpaceType:     req.SpaceType,
		Surfaces:      req.Surfaces,
		PaintGrade:    req.PaintGrade,
		PrepCondition: req.PrepCondition,
		Timeline:      req.Timeline,
		Details:       req.Details,
		Source:        req.Source,
		Status:        StatusDraft,
		CreatedAt:     createdAt,
	}, nil
}

const quoteColumns = `id, company_id, customer_name, address, space_type, surfaces, paint_grade, prep_condition, timeline, details, source, status, created_at`

// GetByID fetches a quote scoped to the company.
func (r *PostgresRepository) GetByID(ctx context.Context, companyID, id string) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND company_id = $2`
	quote, err := scanQuote(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quotes: select failed: %w", err)
	}
	return quote, nil
}

// ListByCompany returns the company's quotes, newest first.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID string, filter ListQuotesFilter) ([]*Quote, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE company_id = $1`
	args := []any{companyID}
	if filter.Status != "" {
		query += ` AND status = $2`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quotes: list failed: %w", err)
	}
	defer rows.Close()

	var quotes []*Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("quotes: scan failed: %w", err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quotes: list rows: %w", err)
	}
	return quotes, nil
}

// UpdateStatus transitions a quote's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, companyID, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotes SET status = $1 WHERE id = $2 AND company_id = $3`,
		status, id, companyID,
	)
	if err != nil {
		return fmt.Errorf("quotes: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var quote Quote
	var details []byte
	if err := row.Scan(
		&quote.ID,
		&quote.CompanyID,
		&quote.CustomerName,
		&quote.Address,
		&quote.SpaceType,
		&quote.Surfaces,
		&quote.PaintGrade,
		&quote.PrepCondition,
		&quote.Timeline,
		&details,
		&quote.Source,
		&quote.Status,
		&quote.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &quote.Details); err != nil {
			return nil, fmt.Errorf("quotes: unmarshal details: %w", err)
		}
	}
	return &quote, nil
}
