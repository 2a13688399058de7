package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notekeeper/internal/domain"
)

const noteColumns = `id, owner_id, title, body, tag, created_at, updated_at`

// PgNoteRepository implementa NoteRepository usando pgxpool.
type PgNoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgNoteRepository(pool *pgxpool.Pool) *PgNoteRepository {
	return &PgNoteRepository{pool: pool}
}

func (r *PgNoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	const query = `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE owner_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *PgNoteRepository) Create(ctx context.Context, note domain.Note) error {
	const query = `
		INSERT INTO notes (id, owner_id, title, body, tag, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.OwnerID,
		note.Title,
		note.Body,
		note.Tag,
		note.CreatedAt,
		note.UpdatedAt,
	)
	return translate(err)
}

func (r *PgNoteRepository) UpdateOwned(ctx context.Context, ownerID, id string, patch domain.NotePatch, updatedAt time.Time) (domain.Note, error) {
	const query = `
		UPDATE notes SET
			title = CASE WHEN $3 THEN $4 ELSE title END,
			body = CASE WHEN $5 THEN $6 ELSE body END,
			tag = CASE WHEN $7 THEN $8 ELSE tag END,
			updated_at = $9
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + noteColumns
	row := r.pool.QueryRow(ctx, query,
		id, ownerID,
		patch.Title.Set, patch.Title.Value,
		patch.Body.Set, patch.Body.Value,
		patch.Tag.Set, patch.Tag.Value,
		updatedAt,
	)
	n, err := scanNote(row)
	if err != nil {
		return domain.Note{}, translate(err)
	}
	return n, nil
}

func (r *PgNoteRepository) DeleteOwned(ctx context.Context, ownerID, id string) (domain.Note, error) {
	const query = `
		DELETE FROM notes
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + noteColumns
	n, err := scanNote(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return domain.Note{}, translate(err)
	}
	return n, nil
}

func (r *PgNoteRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM notes WHERE id = $1)`
	var ok bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}

func scanNote(row pgx.Row) (domain.Note, error) {
	var n domain.Note
	err := row.Scan(
		&n.ID,
		&n.OwnerID,
		&n.Title,
		&n.Body,
		&n.Tag,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}
