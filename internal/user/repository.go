package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

type repository struct {
	users store.Collection[User]
}

// NewRepository expects users to enforce uniqueness of the email field.
func NewRepository(users store.Collection[User]) Repository {
	return &repository{users: users}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	if err := r.users.Insert(ctx, user.ID, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: insert user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := r.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get user: %w", err)
	}
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	users, err := r.users.Find(ctx, store.Query{Filter: map[string]any{"email": email}})
	if err != nil {
		return nil, fmt.Errorf("repository: find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	users, err := r.users.Find(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("repository: list users: %w", err)
	}
	return users, nil
}
