package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"pet3d-backend/internal/models"
)

// EnsureUser creates the user on first sign-in and refreshes last_signed_in
// (and any non-empty profile fields) afterwards. The stored role is preserved.
func (c *DatabaseClient) EnsureUser(ctx context.Context, id uuid.UUID, email, name string) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:           id,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	updates := map[string]interface{}{
		"last_signed_in": now,
		"updated_at":     now,
	}
	if email != "" {
		user.Email.String, user.Email.Valid = email, true
		updates["email"] = email
	}
	if name != "" {
		user.Name.String, user.Name.Valid = name, true
		updates["name"] = name
	}

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return c.GetUser(ctx, id)
}

func (c *DatabaseClient) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *DatabaseClient) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	res := c.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
