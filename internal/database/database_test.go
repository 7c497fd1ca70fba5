package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/models"
	"pet3d-backend/internal/testutil"
)

func TestMigrationNamesSorted(t *testing.T) {
	names, err := database.MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_operator_notifications.sql"}, names)
}

func TestSeedPrintSizesIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedPrintSizes(ctx))

	sizes, err := db.ListActivePrintSizes(ctx)
	require.NoError(t, err)
	require.Len(t, sizes, 6)
	assert.Equal(t, "Mini", sizes[0].Name)
	assert.Equal(t, "XXL", sizes[5].Name)
	assert.True(t, sizes[1].PriceUSD.Equal(decimal.RequireFromString("199.00")))
}

func TestEnsureUserPreservesRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	id := uuid.New()

	u, err := db.EnsureUser(ctx, id, "a@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "a@example.com", u.Email.String)

	require.NoError(t, db.SetUserRole(ctx, id, models.RoleAdmin))

	u, err = db.EnsureUser(ctx, id, "", "Alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "a@example.com", u.Email.String)
	assert.Equal(t, "Alice", u.Name.String)
}

func TestOwnerScopedLookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)

	img := testutil.CreatePetImage(t, db, owner)
	model := testutil.CreateModel(t, db, owner, img.ID, models.ModelStatusProcessing)

	_, err := db.GetPetImage(ctx, other, img.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = db.GetModel(ctx, other, model.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, db.DeleteModel(ctx, other, model.ID), database.ErrNotFound)

	got, err := db.GetModel(ctx, owner, model.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobID, got.JobID)
}

func TestModelTransitionsOnlyFromProcessing(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	img := testutil.CreatePetImage(t, db, owner)
	model := testutil.CreateModel(t, db, owner, img.ID, models.ModelStatusProcessing)

	ok, err := db.CompleteModel(ctx, model.ID, database.ModelCompletion{
		GLBURL:      "https://cdn.example.com/m.glb",
		StorageKey:  "models/x.glb",
		CompletedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.FailModel(ctx, model.ID, "too late")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := db.GetModel(ctx, owner, model.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModelStatusCompleted, got.Status)
	assert.False(t, got.ErrorMessage.Valid)
	assert.True(t, got.CompletedAt.Valid)
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	img := testutil.CreatePetImage(t, db, owner)
	model := testutil.CreateModel(t, db, owner, img.ID, models.ModelStatusCompleted)
	size := testutil.PrintSizeByName(t, db, "Small")

	newOrder := func() *models.Order {
		return &models.Order{
			OrderNumber:   "PET3D-1-ABCDEF",
			UserID:        owner,
			Model3DID:     model.ID,
			PrintSizeID:   size.ID,
			Quantity:      1,
			UnitPriceUSD:  size.PriceUSD,
			TotalPriceUSD: size.PriceUSD,
			Status:        models.OrderStatusPending,
		}
	}

	require.NoError(t, db.CreateOrder(ctx, newOrder()))
	assert.ErrorIs(t, db.CreateOrder(ctx, newOrder()), database.ErrDuplicateKey)
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	img := testutil.CreatePetImage(t, db, owner)
	model := testutil.CreateModel(t, db, owner, img.ID, models.ModelStatusCompleted)
	size := testutil.PrintSizeByName(t, db, "Mini")

	order := &models.Order{
		OrderNumber:   "PET3D-2-ZZZZZZ",
		UserID:        owner,
		Model3DID:     model.ID,
		PrintSizeID:   size.ID,
		Quantity:      1,
		UnitPriceUSD:  size.PriceUSD,
		TotalPriceUSD: size.PriceUSD,
		Status:        models.OrderStatusPending,
	}
	require.NoError(t, db.CreateOrder(ctx, order))

	payment := &models.Payment{
		OrderID:         order.ID,
		ProviderOrderID: "PAYPAL-1",
		AmountUSD:       order.TotalPriceUSD,
		Currency:        "USD",
		Status:          models.PaymentStatusPending,
		RawResponse:     datatypes.JSON(`{"id":"PAYPAL-1"}`),
	}
	require.NoError(t, db.CreatePayment(ctx, payment))

	err := db.Transaction(ctx, func(tx *database.DatabaseClient) error {
		ok, err := tx.CompletePayment(ctx, payment.ID, database.PaymentCapture{CaptureID: "CAP-1"})
		require.NoError(t, err)
		require.True(t, ok)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := db.GetPaymentByProviderOrderID(ctx, "PAYPAL-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.Status)
	assert.False(t, got.ProviderCaptureID.Valid)
}

func TestVoidPendingPayments(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	orderID := uuid.New()

	for _, pid := range []string{"P-1", "P-2"} {
		require.NoError(t, db.CreatePayment(ctx, &models.Payment{
			OrderID:         orderID,
			ProviderOrderID: pid,
			AmountUSD:       decimal.RequireFromString("99.00"),
			Currency:        "USD",
			Status:          models.PaymentStatusPending,
		}))
	}

	n, err := db.VoidPendingPayments(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := db.ListPaymentsForOrder(ctx, orderID)
	require.NoError(t, err)
	for _, p := range list {
		assert.Equal(t, models.PaymentStatusFailed, p.Status)
	}
}

func TestSystemConfigRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSystemConfig(ctx, "PAYPAL_MODE", "sandbox"))
	require.NoError(t, db.SetSystemConfig(ctx, "PAYPAL_MODE", "live"))

	values, err := db.LoadSystemConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PAYPAL_MODE": "live"}, values)
}
