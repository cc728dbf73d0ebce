package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/store"
	"github.com/vasiliy-maslov/garage-platform/internal/user"
)

const testSecret = "test-secret"

func newService(adminEmails ...string) (user.Service, *auth.TokenManager) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	repo := user.NewRepository(store.NewMemoryCollection[user.User]("email"))
	return user.NewService(repo, tokens, adminEmails), tokens
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name     string
		in       user.RegisterInput
		wantErr  error
		wantKind apperr.Kind
	}{
		{
			name: "success",
			in:   user.RegisterInput{Name: "Ivan Petrov", Email: " Ivan@Example.com ", Password: "password123"},
		},
		{
			name:     "missing_name",
			in:       user.RegisterInput{Email: "ivan@example.com", Password: "password123"},
			wantErr:  user.ErrNameRequired,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "invalid_email",
			in:       user.RegisterInput{Name: "Ivan", Email: "not-an-email", Password: "password123"},
			wantErr:  user.ErrInvalidEmail,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "short_password",
			in:       user.RegisterInput{Name: "Ivan", Email: "ivan@example.com", Password: "1234"},
			wantErr:  user.ErrWeakPassword,
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService()

			u, err := svc.Register(context.Background(), tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, u.ID)
			assert.Equal(t, "ivan@example.com", u.Email)
			assert.Equal(t, auth.RoleCustomer, u.Role)
			assert.NotEqual(t, tt.in.Password, u.PasswordHash)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, user.RegisterInput{Name: "First", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, user.RegisterInput{Name: "Second", Email: "DUP@example.com", Password: "password456"})
	require.Error(t, err)
	assert.ErrorIs(t, err, user.ErrEmailExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestService_Register_AdminEmail(t *testing.T) {
	svc, _ := newService("Owner@Garage.test")

	u, err := svc.Register(context.Background(), user.RegisterInput{Name: "Owner", Email: "owner@garage.test", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newService()

	registered, err := svc.Register(ctx, user.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		session, err := svc.Login(ctx, "ANA@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, session.User.ID)

		id, err := tokens.Parse(session.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, id.UserID)
		assert.Equal(t, auth.RoleCustomer, id.Role)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ana@example.com", "wrong-password")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})
}

func TestService_GetUserByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	u, err := svc.Register(ctx, user.RegisterInput{Name: "Lee", Email: "lee@example.com", Password: "password123"})
	require.NoError(t, err)

	found, err := svc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lee", found.Name)

	_, err = svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func TestService_RepositoryFailureIsInternal(t *testing.T) {
	repo := new(mockRepository)
	dbErr := errors.New("connection reset")
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(dbErr).Once()

	svc := user.NewService(repo, auth.NewTokenManager(testSecret, time.Hour), nil)

	_, err := svc.Register(context.Background(), user.RegisterInput{Name: "Max", Email: "max@example.com", Password: "password123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	repo.AssertExpectations(t)
}
