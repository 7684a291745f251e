package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu/entity"
)

// Store is the persistence the menu service needs.
type Store interface {
	ListActive(ctx context.Context) ([]*entity.MenuItem, error)
	Create(ctx context.Context, in *entity.MenuItem) (*entity.MenuItem, error)
}

// sentinel errors for common failure modes
var (
	ErrInvalidInput  = errors.New("name and price are required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// CreateInput is the body accepted by POST /api/menu. Pointers distinguish
// absent fields from zero values.
type CreateInput struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
	ImageURL *string  `json:"image_url"`
	Active   *bool    `json:"active"`
}

// Service encapsulates menu rules on top of a Store.
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// List returns active items, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.MenuItem, error) {
	return s.store.ListActive(ctx)
}

// Create validates in and inserts it. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.MenuItem, error) {
	item, err := in.toEntity()
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, item)
}

func (in CreateInput) toEntity() (*entity.MenuItem, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Price == nil || *in.Price == 0 {
		return nil, ErrInvalidInput
	}
	if *in.Price < 0 {
		return nil, ErrNegativePrice
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return &entity.MenuItem{
		Name:     strings.TrimSpace(*in.Name),
		Price:    *in.Price,
		Category: emptyToNil(in.Category),
		ImageURL: emptyToNil(in.ImageURL),
		Active:   active,
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
