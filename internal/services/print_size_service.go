package services

import (
	"context"

	"github.com/google/uuid"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/models"
)

type PrintSizeService struct {
	db *database.DatabaseClient
}

func NewPrintSizeService(db *database.DatabaseClient) *PrintSizeService {
	return &PrintSizeService{db: db}
}

// List returns the active catalog ordered for display.
func (s *PrintSizeService) List(ctx context.Context) ([]models.PrintSize, error) {
	sizes, err := s.db.ListActivePrintSizes(ctx)
	if err != nil {
		return nil, internalError("list print sizes", err)
	}
	return sizes, nil
}

// Get returns an active print size. Inactive sizes are reported as not found.
func (s *PrintSizeService) Get(ctx context.Context, id uuid.UUID) (*models.PrintSize, error) {
	size, err := s.db.GetActivePrintSize(ctx, id)
	if err != nil {
		return nil, dbError("print size", err)
	}
	return size, nil
}
