package repository

import (
	"context"
	"time"

	"notekeeper/internal/domain"
)

// OwnedStore persiste registros con un único dueño. Las mutaciones se
// condicionan al id del registro y al id del dueño; si alguno no coincide
// devuelven ErrNotFound sin cambiar nada.
type OwnedStore[R any, P any] interface {
	ListByOwner(ctx context.Context, ownerID string) ([]R, error)
	Create(ctx context.Context, record R) error
	UpdateOwned(ctx context.Context, ownerID, id string, patch P, updatedAt time.Time) (R, error)
	DeleteOwned(ctx context.Context, ownerID, id string) (R, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type NoteRepository = OwnedStore[domain.Note, domain.NotePatch]

type BudgetRepository = OwnedStore[domain.BudgetEntry, domain.BudgetPatch]
