package services

import (
	"context"

	"github.com/google/uuid"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/models"
)

type UserService struct {
	db *database.DatabaseClient
}

func NewUserService(db *database.DatabaseClient) *UserService {
	return &UserService{db: db}
}

// EnsureUser records a sign-in, creating the user on first sight.
func (s *UserService) EnsureUser(ctx context.Context, id uuid.UUID, email, name string) (*models.User, error) {
	user, err := s.db.EnsureUser(ctx, id, email, name)
	if err != nil {
		return nil, internalError("ensure user", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, dbError("user", err)
	}
	return user, nil
}
