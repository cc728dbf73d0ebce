package inventory

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
	ErrNameRequired     = errors.New("part name is required")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrNegativePrice    = errors.New("price cannot be negative")
)

type Service interface {
	CreatePart(ctx context.Context, in PartInput) (*Part, error)
	GetPartByID(ctx context.Context, id string) (*Part, error)
	ListParts(ctx context.Context) ([]Part, error)
	UpdatePart(ctx context.Context, id string, in PartInput) (*Part, error)
	DeletePart(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePart(ctx context.Context, in PartInput) (*Part, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid(ErrNameRequired, "name")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate part id: %w", err)
	}

	part := &Part{ID: id.String(), CreatedAt: time.Now().UTC()}
	if err := apply(part, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, part); err != nil {
		log.Error().Err(err).Msg("service: failed to create part in repository")
		return nil, fmt.Errorf("service: failed to create part: %w", err)
	}

	log.Info().Str("part_id", part.ID).Str("name", part.Name).Msg("service: part created")
	return part, nil
}

func (s *service) GetPartByID(ctx context.Context, id string) (*Part, error) {
	part, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPartNotFound) {
			log.Warn().Str("part_id", id).Msg("service: part not found")
			return nil, apperr.NotFound(ErrPartNotFound, id)
		}
		log.Error().Err(err).Str("part_id", id).Msg("service: failed to get part")
		return nil, fmt.Errorf("service: failed to get part: %w", err)
	}
	return part, nil
}

func (s *service) ListParts(ctx context.Context) ([]Part, error) {
	parts, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list parts")
		return nil, fmt.Errorf("service: failed to list parts: %w", err)
	}
	return parts, nil
}

func (s *service) UpdatePart(ctx context.Context, id string, in PartInput) (*Part, error) {
	part, err := s.GetPartByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid(ErrNameRequired, "name")
	}
	if err := apply(part, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, part); err != nil {
		if errors.Is(err, ErrPartNotFound) {
			return nil, apperr.NotFound(ErrPartNotFound, id)
		}
		log.Error().Err(err).Str("part_id", id).Msg("service: failed to update part")
		return nil, fmt.Errorf("service: failed to update part: %w", err)
	}

	log.Info().Str("part_id", id).Msg("service: part updated")
	return part, nil
}

func (s *service) DeletePart(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPartNotFound) {
			log.Warn().Str("part_id", id).Msg("service: part not found, nothing to delete")
			return apperr.NotFound(ErrPartNotFound, id)
		}
		log.Error().Err(err).Str("part_id", id).Msg("service: failed to delete part")
		return fmt.Errorf("service: failed to delete part: %w", err)
	}

	log.Info().Str("part_id", id).Msg("service: part deleted")
	return nil
}

func apply(part *Part, in PartInput) error {
	if in.Quantity != nil && *in.Quantity < 0 {
		return apperr.Invalid(ErrNegativeQuantity, "quantity")
	}
	if in.Price != nil && *in.Price < 0 {
		return apperr.Invalid(ErrNegativePrice, "price")
	}

	if in.Name != nil {
		part.Name = strings.TrimSpace(*in.Name)
	}
	if in.Brand != nil {
		part.Brand = *in.Brand
	}
	if in.ModelNumber != nil {
		part.ModelNumber = *in.ModelNumber
	}
	if in.Quantity != nil {
		part.Quantity = *in.Quantity
	}
	if in.Price != nil {
		part.Price = *in.Price
	}
	if in.Color != nil {
		part.Color = *in.Color
	}
	if in.Dimensions != nil {
		part.Dimensions = *in.Dimensions
	}
	if in.ImageURL != nil {
		part.ImageURL = *in.ImageURL
	}
	return nil
}
