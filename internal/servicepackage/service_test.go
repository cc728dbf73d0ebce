package servicepackage_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/servicepackage"
	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newService() servicepackage.Service {
	return servicepackage.NewService(servicepackage.NewRepository(store.NewMemoryCollection[servicepackage.Package]()))
}

func TestService_CreatePackage(t *testing.T) {
	tests := []struct {
		name    string
		in      servicepackage.PackageInput
		wantErr error
	}{
		{
			name: "success",
			in: servicepackage.PackageInput{
				Name:            ptr(" Winter check "),
				Price:           ptr(89.0),
				Services:        []string{"Battery test", "Antifreeze top-up"},
				DurationMinutes: ptr(60),
			},
		},
		{
			name:    "missing_name",
			in:      servicepackage.PackageInput{Services: []string{"Wash"}},
			wantErr: servicepackage.ErrNameRequired,
		},
		{
			name:    "missing_services",
			in:      servicepackage.PackageInput{Name: ptr("Basic")},
			wantErr: servicepackage.ErrNoServices,
		},
		{
			name:    "negative_price",
			in:      servicepackage.PackageInput{Name: ptr("Basic"), Services: []string{"Wash"}, Price: ptr(-1.0)},
			wantErr: servicepackage.ErrNegativePrice,
		},
		{
			name:    "negative_duration",
			in:      servicepackage.PackageInput{Name: ptr("Basic"), Services: []string{"Wash"}, DurationMinutes: ptr(-30)},
			wantErr: servicepackage.ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()

			p, err := svc.CreatePackage(context.Background(), tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			stored, err := svc.GetPackageByID(context.Background(), p.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(p, stored); diff != "" {
				t.Errorf("stored package mismatch (-created +stored):\n%s", diff)
			}
			assert.Equal(t, "Winter check", stored.Name)
		})
	}
}

func TestService_UpdateAndDeletePackage(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.CreatePackage(ctx, servicepackage.PackageInput{Name: ptr("Full service"), Services: []string{"Oil", "Filters"}, Price: ptr(150.0)})
	require.NoError(t, err)

	updated, err := svc.UpdatePackage(ctx, p.ID, servicepackage.PackageInput{Price: ptr(135.0)})
	require.NoError(t, err)
	assert.Equal(t, 135.0, updated.Price)
	assert.Equal(t, []string{"Oil", "Filters"}, updated.Services)

	list, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 135.0, list[0].Price)

	require.NoError(t, svc.DeletePackage(ctx, p.ID))

	_, err = svc.GetPackageByID(ctx, p.ID)
	assert.ErrorIs(t, err, servicepackage.ErrPackageNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.UpdatePackage(ctx, p.ID, servicepackage.PackageInput{Price: ptr(1.0)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
