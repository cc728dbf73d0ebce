package servicepackage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

var ErrPackageNotFound = errors.New("service package not found")

type Repository interface {
	Create(ctx context.Context, p *Package) error
	GetByID(ctx context.Context, id string) (*Package, error)
	List(ctx context.Context) ([]Package, error)
	Update(ctx context.Context, p *Package) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	packages store.Collection[Package]
}

func NewRepository(packages store.Collection[Package]) Repository {
	return &repository{packages: packages}
}

func (r *repository) Create(ctx context.Context, p *Package) error {
	if err := r.packages.Insert(ctx, p.ID, p); err != nil {
		return fmt.Errorf("repository: insert service package: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Package, error) {
	p, err := r.packages.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("repository: get service package: %w", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context) ([]Package, error) {
	list, err := r.packages.Find(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("repository: list service packages: %w", err)
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, p *Package) error {
	if err := r.packages.Replace(ctx, p.ID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("repository: replace service package: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.packages.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("repository: delete service package: %w", err)
	}
	return nil
}
