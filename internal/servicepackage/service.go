package servicepackage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
)

var (
	ErrNameRequired     = errors.New("package name is required")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNoServices       = errors.New("package must include at least one service")
	ErrNegativeDuration = errors.New("durationMinutes cannot be negative")
)

type Service interface {
	CreatePackage(ctx context.Context, in PackageInput) (*Package, error)
	GetPackageByID(ctx context.Context, id string) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
	UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error)
	DeletePackage(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePackage(ctx context.Context, in PackageInput) (*Package, error) {
	if in.Name == nil {
		return nil, apperr.Invalid(ErrNameRequired, "name")
	}
	if in.Services == nil {
		return nil, apperr.Invalid(ErrNoServices, "services")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate package id: %w", err)
	}

	p := &Package{ID: id.String(), CreatedAt: time.Now().UTC()}
	if err := apply(p, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create service package in repository")
		return nil, fmt.Errorf("service: failed to create service package: %w", err)
	}

	log.Info().Str("package_id", p.ID).Str("name", p.Name).Msg("service: service package created")
	return p, nil
}

func (s *service) GetPackageByID(ctx context.Context, id string) (*Package, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			log.Warn().Str("package_id", id).Msg("service: service package not found")
			return nil, apperr.NotFound(ErrPackageNotFound, id)
		}
		log.Error().Err(err).Str("package_id", id).Msg("service: failed to get service package")
		return nil, fmt.Errorf("service: failed to get service package: %w", err)
	}
	return p, nil
}

func (s *service) ListPackages(ctx context.Context) ([]Package, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list service packages")
		return nil, fmt.Errorf("service: failed to list service packages: %w", err)
	}
	return list, nil
}

func (s *service) UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error) {
	p, err := s.GetPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, apperr.NotFound(ErrPackageNotFound, id)
		}
		log.Error().Err(err).Str("package_id", id).Msg("service: failed to update service package")
		return nil, fmt.Errorf("service: failed to update service package: %w", err)
	}

	log.Info().Str("package_id", id).Msg("service: service package updated")
	return p, nil
}

func (s *service) DeletePackage(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			log.Warn().Str("package_id", id).Msg("service: service package not found, nothing to delete")
			return apperr.NotFound(ErrPackageNotFound, id)
		}
		log.Error().Err(err).Str("package_id", id).Msg("service: failed to delete service package")
		return fmt.Errorf("service: failed to delete service package: %w", err)
	}

	log.Info().Str("package_id", id).Msg("service: service package deleted")
	return nil
}

func apply(p *Package, in PackageInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Invalid(ErrNameRequired, "name")
		}
		p.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return apperr.Invalid(ErrNegativePrice, "price")
		}
		p.Price = *in.Price
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes < 0 {
			return apperr.Invalid(ErrNegativeDuration, "durationMinutes")
		}
		p.DurationMinutes = *in.DurationMinutes
	}
	if in.Services != nil {
		services := make([]string, 0, len(in.Services))
		for _, name := range in.Services {
			if name = strings.TrimSpace(name); name != "" {
				services = append(services, name)
			}
		}
		if len(services) == 0 {
			return apperr.Invalid(ErrNoServices, "services")
		}
		p.Services = services
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	return nil
}
