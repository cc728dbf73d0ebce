package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/auth"
)

const minPasswordLength = 8

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenIssuer signs access tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Generate(id auth.Identity) (string, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type service struct {
	repo        Repository
	tokens      TokenIssuer
	adminEmails map[string]struct{}
	hashCost    int
}

// NewService builds the user service. Accounts registered with one of adminEmails get the admin role.
func NewService(repo Repository, tokens TokenIssuer, adminEmails []string) Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}

	return &service{
		repo:        repo,
		tokens:      tokens,
		adminEmails: admins,
		hashCost:    bcrypt.DefaultCost,
	}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	switch {
	case name == "":
		return nil, apperr.Invalid(ErrNameRequired, "name")
	case !validEmail(email):
		return nil, apperr.Invalid(ErrInvalidEmail, "email")
	case len(in.Password) < minPasswordLength:
		return nil, apperr.Invalid(ErrWeakPassword, "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user id: %w", err)
	}

	role := auth.RoleCustomer
	if _, ok := s.adminEmails[email]; ok {
		role = auth.RoleAdmin
	}

	user := &User{
		ID:           id.String(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Warn().Str("email", email).Msg("service: email already registered")
			return nil, apperr.Conflict(ErrEmailExists)
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to save user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("role", role).Msg("service: user registered")
	return user, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong password are indistinguishable.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("email", email).Msg("service: login for unknown email")
			return nil, apperr.Unauthorized(ErrInvalidCredentials)
		}
		log.Error().Err(err).Msg("service: failed to load user for login")
		return nil, fmt.Errorf("service: failed to login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("user_id", user.ID).Msg("service: wrong password")
		return nil, apperr.Unauthorized(ErrInvalidCredentials)
	}

	token, err := s.tokens.Generate(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("service: failed to issue token")
		return nil, fmt.Errorf("service: failed to issue token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

func (s *service) GetUserByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("user_id", id).Msg("service: user not found")
			return nil, apperr.NotFound(ErrNotFound, id)
		}
		log.Error().Err(err).Str("user_id", id).Msg("service: failed to get user by id in repository")
		return nil, fmt.Errorf("service: failed to get user by id '%s': %w", id, err)
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
