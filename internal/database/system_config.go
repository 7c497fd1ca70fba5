package database

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"pet3d-backend/internal/models"
)

// LoadSystemConfig returns every key/value row of system_config.
func (c *DatabaseClient) LoadSystemConfig(ctx context.Context) (map[string]string, error) {
	var rows []models.SystemConfig
	if err := c.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (c *DatabaseClient) SetSystemConfig(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	row := models.SystemConfig{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value, "updated_at": now}),
	}).Create(&row).Error
	return translateError(err)
}
