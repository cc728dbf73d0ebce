package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

var ErrPartNotFound = errors.New("part not found")

type Repository interface {
	Create(ctx context.Context, part *Part) error
	GetByID(ctx context.Context, id string) (*Part, error)
	List(ctx context.Context) ([]Part, error)
	Update(ctx context.Context, part *Part) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	parts store.Collection[Part]
}

func NewRepository(parts store.Collection[Part]) Repository {
	return &repository{parts: parts}
}

func (r *repository) Create(ctx context.Context, part *Part) error {
	if err := r.parts.Insert(ctx, part.ID, part); err != nil {
		return fmt.Errorf("repository: insert part: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Part, error) {
	part, err := r.parts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, fmt.Errorf("repository: get part: %w", err)
	}
	return part, nil
}

func (r *repository) List(ctx context.Context) ([]Part, error) {
	parts, err := r.parts.Find(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("repository: list parts: %w", err)
	}
	return parts, nil
}

func (r *repository) Update(ctx context.Context, part *Part) error {
	if err := r.parts.Replace(ctx, part.ID, part); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPartNotFound
		}
		return fmt.Errorf("repository: replace part: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.parts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPartNotFound
		}
		return fmt.Errorf("repository: delete part: %w", err)
	}
	return nil
}
