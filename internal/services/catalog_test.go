package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/testutil"
)

func TestPrintSizeService(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewPrintSizeService(db)
	ctx := context.Background()

	sizes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sizes, 6)
	assert.Equal(t, "Mini", sizes[0].Name)
	assert.Equal(t, "XXL", sizes[5].Name)

	got, err := svc.Get(ctx, sizes[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "199.00", got.PriceUSD.StringFixed(2))

	hidden := &models.PrintSize{Name: "Prototype", Dimensions: "1cm", PriceUSD: decimal.NewFromInt(1), SortOrder: 99}
	require.NoError(t, db.CreatePrintSize(ctx, hidden))
	require.NoError(t, db.DB().Model(hidden).Update("is_active", false).Error)

	_, err = svc.Get(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	id := uuid.New()

	u, err := svc.EnsureUser(ctx, id, "pet@example.com", "Pet Owner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pet@example.com", got.Email.String)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
