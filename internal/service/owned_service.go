package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notekeeper/internal/repository"
)

// ResourceRules adapta OwnedService a un tipo de registro: R es el registro
// guardado, F el payload de alta y P la actualización parcial.
type ResourceRules[R any, F any, P any] struct {
	Kind string
	// Build valida los campos y devuelve un registro de ownerID.
	Build func(id, ownerID string, fields F, now time.Time) (R, error)
	// Normalize valida un patch y completa defaults de campos opcionales borrados.
	Normalize func(patch P) (P, error)
}

// OwnedService ejecuta list/create/update/delete acotados al llamador. Cada
// mutación es una sola sentencia condicionada a id y dueño: un registro solo
// cambia si el llamador es su dueño al momento de escribir.
type OwnedService[R any, F any, P any] struct {
	logger *zap.Logger
	store  repository.OwnedStore[R, P]
	rules  ResourceRules[R, F, P]
	now    func() time.Time
}

func NewOwnedService[R any, F any, P any](logger *zap.Logger, store repository.OwnedStore[R, P], rules ResourceRules[R, F, P]) *OwnedService[R, F, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnedService[R, F, P]{
		logger: logger,
		store:  store,
		rules:  rules,
		now:    time.Now,
	}
}

func (s *OwnedService[R, F, P]) List(ctx context.Context, callerID string) ([]R, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	records, err := s.store.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, s.storageErr("list", err)
	}
	if records == nil {
		records = []R{}
	}
	return records, nil
}

func (s *OwnedService[R, F, P]) Create(ctx context.Context, callerID string, fields F) (R, error) {
	var zero R
	if callerID == "" {
		return zero, ErrUnauthenticated
	}
	record, err := s.rules.Build(uuid.NewString(), callerID, fields, s.now().UTC())
	if err != nil {
		return zero, err
	}
	if err := s.store.Create(ctx, record); err != nil {
		return zero, s.storageErr("create", err)
	}
	return record, nil
}

func (s *OwnedService[R, F, P]) Update(ctx context.Context, callerID, id string, patch P) (R, error) {
	var zero R
	if callerID == "" {
		return zero, ErrUnauthenticated
	}
	patch, err := s.rules.Normalize(patch)
	if err != nil {
		return zero, err
	}
	if !validID(id) {
		return zero, ErrNotFound
	}
	updated, err := s.store.UpdateOwned(ctx, callerID, id, patch, s.now().UTC())
	if err == nil {
		return updated, nil
	}
	return zero, s.classifyMiss(ctx, "update", callerID, id, err)
}

func (s *OwnedService[R, F, P]) Delete(ctx context.Context, callerID, id string) (R, error) {
	var zero R
	if callerID == "" {
		return zero, ErrUnauthenticated
	}
	if !validID(id) {
		return zero, ErrNotFound
	}
	removed, err := s.store.DeleteOwned(ctx, callerID, id)
	if err == nil {
		return removed, nil
	}
	return zero, s.classifyMiss(ctx, "delete", callerID, id, err)
}

// classifyMiss convierte una escritura condicional sin filas en ErrNotFound o
// ErrForbidden. En ambos casos no se escribió nada.
func (s *OwnedService[R, F, P]) classifyMiss(ctx context.Context, op, callerID, id string, err error) error {
	if !errors.Is(err, repository.ErrNotFound) {
		return s.storageErr(op, err)
	}
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return s.storageErr(op, err)
	}
	if !exists {
		return ErrNotFound
	}
	s.logger.Warn("cross-owner access rejected",
		zap.String("kind", s.rules.Kind),
		zap.String("op", op),
		zap.String("user_id", callerID),
		zap.String("resource_id", id),
	)
	return ErrForbidden
}

func (s *OwnedService[R, F, P]) storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStorageUnavailable, op, s.rules.Kind, err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
