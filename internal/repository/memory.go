package repository

import (
	"context"
	"sync"
	"time"

	"notekeeper/internal/domain"
)

// MemoryUserRepository guarda identidades en memoria. La unicidad se verifica
// y el registro se inserta bajo el mismo lock.
type MemoryUserRepository struct {
	mu       sync.RWMutex
	byID     map[string]domain.User
	byEmail  map[string]string
	byHandle map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:     make(map[string]domain.User),
		byEmail:  make(map[string]string),
		byHandle: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; ok {
		return &DuplicateError{Constraint: "users_pkey"}
	}
	if _, ok := r.byHandle[user.Handle]; ok {
		return &DuplicateError{Constraint: "users_handle_key"}
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return &DuplicateError{Constraint: "users_email_key"}
	}
	r.byID[user.ID] = user
	r.byHandle[user.Handle] = user.ID
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Count devuelve la cantidad de identidades guardadas.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// MemoryOwnedStore implementa OwnedStore sobre un slice en orden de inserción.
type MemoryOwnedStore[R any, P any] struct {
	mu      sync.Mutex
	records []R
	idOf    func(R) string
	ownerOf func(R) string
	apply   func(R, P, time.Time) R
}

func NewMemoryNoteRepository() *MemoryOwnedStore[domain.Note, domain.NotePatch] {
	return &MemoryOwnedStore[domain.Note, domain.NotePatch]{
		idOf:    func(n domain.Note) string { return n.ID },
		ownerOf: func(n domain.Note) string { return n.OwnerID },
		apply: func(n domain.Note, p domain.NotePatch, at time.Time) domain.Note {
			n = p.Apply(n)
			n.UpdatedAt = at
			return n
		},
	}
}

func NewMemoryBudgetRepository() *MemoryOwnedStore[domain.BudgetEntry, domain.BudgetPatch] {
	return &MemoryOwnedStore[domain.BudgetEntry, domain.BudgetPatch]{
		idOf:    func(b domain.BudgetEntry) string { return b.ID },
		ownerOf: func(b domain.BudgetEntry) string { return b.OwnerID },
		apply: func(b domain.BudgetEntry, p domain.BudgetPatch, at time.Time) domain.BudgetEntry {
			b = p.Apply(b)
			b.UpdatedAt = at
			return b
		},
	}
}

func (s *MemoryOwnedStore[R, P]) ListByOwner(_ context.Context, ownerID string) ([]R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]R, 0)
	for _, rec := range s.records {
		if s.ownerOf(rec) == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryOwnedStore[R, P]) Create(_ context.Context, record R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if s.idOf(rec) == s.idOf(record) {
			return &DuplicateError{Constraint: "pkey"}
		}
	}
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryOwnedStore[R, P]) UpdateOwned(_ context.Context, ownerID, id string, patch P, updatedAt time.Time) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOwned(ownerID, id)
	if i < 0 {
		var zero R
		return zero, ErrNotFound
	}
	s.records[i] = s.apply(s.records[i], patch, updatedAt)
	return s.records[i], nil
}

func (s *MemoryOwnedStore[R, P]) DeleteOwned(_ context.Context, ownerID, id string) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOwned(ownerID, id)
	if i < 0 {
		var zero R
		return zero, ErrNotFound
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return removed, nil
}

func (s *MemoryOwnedStore[R, P]) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if s.idOf(rec) == id {
			return true, nil
		}
	}
	return false, nil
}

// Get devuelve un registro por id sin mirar el dueño.
func (s *MemoryOwnedStore[R, P]) Get(id string) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if s.idOf(rec) == id {
			return rec, true
		}
	}
	var zero R
	return zero, false
}

func (s *MemoryOwnedStore[R, P]) indexOwned(ownerID, id string) int {
	for i, rec := range s.records {
		if s.idOf(rec) == id && s.ownerOf(rec) == ownerID {
			return i
		}
	}
	return -1
}
