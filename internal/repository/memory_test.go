package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"notekeeper/internal/domain"
)

func TestMemoryUserRepository_UniqueHandleAndEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, domain.User{ID: "u1", Handle: "alice", Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, domain.User{ID: "u2", Handle: "alice", Email: "b@x.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for handle, got %v", err)
	}
	err = repo.Create(ctx, domain.User{ID: "u3", Handle: "bob", Email: "a@x.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one stored user, got %d", repo.Count())
	}

	if _, err := repo.GetByEmail(ctx, "missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	u, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("unexpected lookup result %+v, %v", u, err)
	}
}

func TestMemoryOwnedStore_ConditionalMutations(t *testing.T) {
	store := NewMemoryNoteRepository()
	ctx := context.Background()

	_ = store.Create(ctx, domain.Note{ID: "n1", OwnerID: "alice", Title: "a1"})
	_ = store.Create(ctx, domain.Note{ID: "n2", OwnerID: "bob", Title: "b1"})
	_ = store.Create(ctx, domain.Note{ID: "n3", OwnerID: "alice", Title: "a2"})

	list, _ := store.ListByOwner(ctx, "alice")
	if len(list) != 2 || list[0].ID != "n1" || list[1].ID != "n3" {
		t.Fatalf("expected alice's notes in insertion order, got %+v", list)
	}

	if _, err := store.UpdateOwned(ctx, "bob", "n1", domain.NotePatch{Title: domain.Some("hijack")}, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected miss for wrong owner, got %v", err)
	}
	if n, _ := store.Get("n1"); n.Title != "a1" {
		t.Fatalf("record changed by non-owner: %+v", n)
	}

	if _, err := store.DeleteOwned(ctx, "bob", "n1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected miss for wrong owner delete, got %v", err)
	}
	removed, err := store.DeleteOwned(ctx, "alice", "n1")
	if err != nil || removed.ID != "n1" {
		t.Fatalf("delete: %+v, %v", removed, err)
	}
	if ok, _ := store.Exists(ctx, "n1"); ok {
		t.Fatalf("expected n1 gone")
	}
}
