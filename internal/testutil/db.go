// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/models"
)

// NewTestDB opens a private in-memory sqlite database with the full schema and
// the default print sizes.
func NewTestDB(t *testing.T) *database.DatabaseClient {
	t.Helper()
	dsn := fmt.Sprintf("file:pet3d_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.SeedPrintSizes(ctx))
	return db
}

func CreateUser(t *testing.T, db *database.DatabaseClient) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.EnsureUser(context.Background(), id, id.String()[:8]+"@example.com", "Test User")
	require.NoError(t, err)
	return id
}

func CreatePetImage(t *testing.T, db *database.DatabaseClient, ownerID uuid.UUID) *models.PetImage {
	t.Helper()
	img := &models.PetImage{
		UserID:      ownerID,
		OriginalURL: "https://assets.example.com/pet-images/" + ownerID.String() + "/dog.jpg",
		FileName:    "dog.jpg",
		MimeType:    "image/jpeg",
		StorageKey:  "pet-images/" + ownerID.String() + "/dog.jpg",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.CreatePetImage(context.Background(), img))
	return img
}

func CreateModel(t *testing.T, db *database.DatabaseClient, ownerID, imageID uuid.UUID, status models.ModelStatus) *models.Model3D {
	t.Helper()
	m := &models.Model3D{
		UserID:     ownerID,
		PetImageID: imageID,
		JobID:      "job-" + uuid.NewString()[:8],
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if status == models.ModelStatusCompleted {
		m.GLBURL = sql.NullString{String: "https://assets.example.com/models/" + ownerID.String() + "/m.glb", Valid: true}
		m.CompletedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	require.NoError(t, db.CreateModel(context.Background(), m))
	return m
}

// PrintSizeByName returns one of the seeded print sizes.
func PrintSizeByName(t *testing.T, db *database.DatabaseClient, name string) *models.PrintSize {
	t.Helper()
	sizes, err := db.ListActivePrintSizes(context.Background())
	require.NoError(t, err)
	for i := range sizes {
		if sizes[i].Name == name {
			return &sizes[i]
		}
	}
	t.Fatalf("print size %q not seeded", name)
	return nil
}
