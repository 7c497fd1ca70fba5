package database

import (
	"context"

	"github.com/google/uuid"

	"pet3d-backend/internal/models"
)

func (c *DatabaseClient) CreatePetImage(ctx context.Context, img *models.PetImage) error {
	return translateError(c.db.WithContext(ctx).Create(img).Error)
}

func (c *DatabaseClient) GetPetImage(ctx context.Context, ownerID, id uuid.UUID) (*models.PetImage, error) {
	var img models.PetImage
	err := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&img).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &img, nil
}

func (c *DatabaseClient) ListPetImages(ctx context.Context, ownerID uuid.UUID) ([]models.PetImage, error) {
	var images []models.PetImage
	err := c.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&images).Error
	if err != nil {
		return nil, translateError(err)
	}
	return images, nil
}

// DeletePetImage removes the image if it is owned by ownerID.
func (c *DatabaseClient) DeletePetImage(ctx context.Context, ownerID, id uuid.UUID) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.PetImage{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) CountModelsForImage(ctx context.Context, imageID uuid.UUID) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Model3D{}).
		Where("pet_image_id = ?", imageID).
		Count(&n).Error
	return n, translateError(err)
}
