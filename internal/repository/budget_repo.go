package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notekeeper/internal/domain"
)

const budgetColumns = `id, owner_id, spending_type, category, description, amount, spent_on, created_at, updated_at`

// PgBudgetRepository implementa BudgetRepository usando pgxpool.
type PgBudgetRepository struct {
	pool *pgxpool.Pool
}

func NewPgBudgetRepository(pool *pgxpool.Pool) *PgBudgetRepository {
	return &PgBudgetRepository{pool: pool}
}

func (r *PgBudgetRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.BudgetEntry, error) {
	const query = `
		SELECT ` + budgetColumns + `
		FROM budget_entries
		WHERE owner_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.BudgetEntry, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, b)
	}
	return entries, rows.Err()
}

func (r *PgBudgetRepository) Create(ctx context.Context, entry domain.BudgetEntry) error {
	const query = `
		INSERT INTO budget_entries (id, owner_id, spending_type, category, description, amount, spent_on, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.SpendingType,
		entry.Category,
		entry.Description,
		entry.Amount,
		entry.Date,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return translate(err)
}

func (r *PgBudgetRepository) UpdateOwned(ctx context.Context, ownerID, id string, patch domain.BudgetPatch, updatedAt time.Time) (domain.BudgetEntry, error) {
	const query = `
		UPDATE budget_entries SET
			spending_type = CASE WHEN $3 THEN $4 ELSE spending_type END,
			category = CASE WHEN $5 THEN $6 ELSE category END,
			description = CASE WHEN $7 THEN $8 ELSE description END,
			amount = CASE WHEN $9 THEN $10 ELSE amount END,
			spent_on = CASE WHEN $11 THEN $12 ELSE spent_on END,
			updated_at = $13
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + budgetColumns
	row := r.pool.QueryRow(ctx, query,
		id, ownerID,
		patch.SpendingType.Set, patch.SpendingType.Value,
		patch.Category.Set, patch.Category.Value,
		patch.Description.Set, patch.Description.Value,
		patch.Amount.Set, patch.Amount.Value,
		patch.Date.Set, patch.Date.Value,
		updatedAt,
	)
	b, err := scanBudget(row)
	if err != nil {
		return domain.BudgetEntry{}, translate(err)
	}
	return b, nil
}

func (r *PgBudgetRepository) DeleteOwned(ctx context.Context, ownerID, id string) (domain.BudgetEntry, error) {
	const query = `
		DELETE FROM budget_entries
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + budgetColumns
	b, err := scanBudget(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return domain.BudgetEntry{}, translate(err)
	}
	return b, nil
}

func (r *PgBudgetRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM budget_entries WHERE id = $1)`
	var ok bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}

func scanBudget(row pgx.Row) (domain.BudgetEntry, error) {
	var b domain.BudgetEntry
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.SpendingType,
		&b.Category,
		&b.Description,
		&b.Amount,
		&b.Date,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}
