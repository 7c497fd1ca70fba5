package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pet3d-backend/internal/models"
)

func (c *DatabaseClient) CreateModel(ctx context.Context, m *models.Model3D) error {
	return translateError(c.db.WithContext(ctx).Create(m).Error)
}

func (c *DatabaseClient) GetModel(ctx context.Context, ownerID, id uuid.UUID) (*models.Model3D, error) {
	var m models.Model3D
	err := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

func (c *DatabaseClient) ListModels(ctx context.Context, ownerID uuid.UUID) ([]models.Model3D, error) {
	var list []models.Model3D
	err := c.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (c *DatabaseClient) DeleteModel(ctx context.Context, ownerID, id uuid.UUID) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Model3D{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) CountOrdersForModel(ctx context.Context, modelID uuid.UUID) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Order{}).
		Where("model_3d_id = ?", modelID).
		Count(&n).Error
	return n, translateError(err)
}

type ModelCompletion struct {
	GLBURL      string
	PreviewURL  string
	StorageKey  string
	CompletedAt time.Time
}

// CompleteModel moves a processing model to completed. It reports false when
// the row was no longer processing.
func (c *DatabaseClient) CompleteModel(ctx context.Context, id uuid.UUID, done ModelCompletion) (bool, error) {
	updates := map[string]interface{}{
		"status":       models.ModelStatusCompleted,
		"glb_url":      done.GLBURL,
		"storage_key":  done.StorageKey,
		"completed_at": done.CompletedAt,
	}
	if done.PreviewURL != "" {
		updates["preview_url"] = done.PreviewURL
	}
	return c.transitionModel(ctx, id, updates)
}

// FailModel moves a processing model to failed with the provider's message.
func (c *DatabaseClient) FailModel(ctx context.Context, id uuid.UUID, message string) (bool, error) {
	return c.transitionModel(ctx, id, map[string]interface{}{
		"status":        models.ModelStatusFailed,
		"error_message": message,
	})
}

func (c *DatabaseClient) transitionModel(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	res := c.db.WithContext(ctx).Model(&models.Model3D{}).
		Where("id = ? AND status = ?", id, models.ModelStatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
