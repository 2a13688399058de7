package service

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
)

type (
	NoteService   = OwnedService[domain.Note, domain.NoteFields, domain.NotePatch]
	BudgetService = OwnedService[domain.BudgetEntry, domain.BudgetFields, domain.BudgetPatch]
)

func NewNoteService(logger *zap.Logger, store repository.NoteRepository) *NoteService {
	return NewOwnedService(logger, store, NoteRules)
}

func NewBudgetService(logger *zap.Logger, store repository.BudgetRepository) *BudgetService {
	return NewOwnedService(logger, store, BudgetRules)
}

var NoteRules = ResourceRules[domain.Note, domain.NoteFields, domain.NotePatch]{
	Kind: "note",
	Build: func(id, ownerID string, f domain.NoteFields, now time.Time) (domain.Note, error) {
		n := domain.Note{
			ID:        id,
			OwnerID:   ownerID,
			Title:     strings.TrimSpace(f.Title),
			Body:      strings.TrimSpace(f.Body),
			Tag:       strings.TrimSpace(f.Tag),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if n.Tag == "" {
			n.Tag = domain.DefaultNoteTag
		}
		verr := &ValidationError{}
		requireText(verr, "title", n.Title)
		requireText(verr, "body", n.Body)
		return n, verr.errOrNil()
	},
	Normalize: func(p domain.NotePatch) (domain.NotePatch, error) {
		verr := &ValidationError{}
		p.Title = trimmed(p.Title)
		p.Body = trimmed(p.Body)
		p.Tag = trimmed(p.Tag)
		requireIfSet(verr, "title", p.Title)
		requireIfSet(verr, "body", p.Body)
		if p.Tag.Set && p.Tag.Value == "" {
			p.Tag = domain.Some(domain.DefaultNoteTag)
		}
		return p, verr.errOrNil()
	},
}

var BudgetRules = ResourceRules[domain.BudgetEntry, domain.BudgetFields, domain.BudgetPatch]{
	Kind: "budget",
	Build: func(id, ownerID string, f domain.BudgetFields, now time.Time) (domain.BudgetEntry, error) {
		b := domain.BudgetEntry{
			ID:           id,
			OwnerID:      ownerID,
			SpendingType: strings.TrimSpace(f.SpendingType),
			Category:     strings.TrimSpace(f.Category),
			Description:  strings.TrimSpace(f.Description),
			Amount:       f.Amount,
			Date:         now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if b.SpendingType == "" {
			b.SpendingType = domain.DefaultSpendingType
		}
		if f.Date != nil && !f.Date.IsZero() {
			b.Date = f.Date.UTC()
		}
		verr := &ValidationError{}
		requireText(verr, "category", b.Category)
		requirePositive(verr, "amount", b.Amount)
		return b, verr.errOrNil()
	},
	Normalize: func(p domain.BudgetPatch) (domain.BudgetPatch, error) {
		verr := &ValidationError{}
		p.SpendingType = trimmed(p.SpendingType)
		p.Category = trimmed(p.Category)
		p.Description = trimmed(p.Description)
		requireIfSet(verr, "spending_type", p.SpendingType)
		requireIfSet(verr, "category", p.Category)
		if p.Amount.Set {
			if p.Amount.Null {
				verr.add("amount", "is required")
			} else {
				requirePositive(verr, "amount", p.Amount.Value)
			}
		}
		if p.Date.Set {
			if p.Date.Null || p.Date.Value.IsZero() {
				verr.add("date", "is required")
			} else {
				p.Date.Value = p.Date.Value.UTC()
			}
		}
		return p, verr.errOrNil()
	},
}

func requireText(verr *ValidationError, field, value string) {
	if value == "" {
		verr.add(field, "is required")
	}
}

func requireIfSet(verr *ValidationError, field string, o domain.Optional[string]) {
	if o.Set && o.Value == "" {
		verr.add(field, "is required")
	}
}

func requirePositive(verr *ValidationError, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		verr.add(field, "must be a positive number")
	}
}

// trimmed recorta un string enviado; un null de JSON queda como string vacío.
func trimmed(o domain.Optional[string]) domain.Optional[string] {
	if !o.Set {
		return o
	}
	return domain.Some(strings.TrimSpace(o.Value))
}
