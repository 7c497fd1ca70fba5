package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"pet3d-backend/internal/models"
)

// DefaultPrintSizes is the catalog seeded on first start.
var DefaultPrintSizes = []models.PrintSize{
	{Name: "Mini", Description: nullString("Perfect for desk decoration"), Dimensions: "5cm x 5cm x 5cm", PriceUSD: decimal.RequireFromString("99.00"), SortOrder: 1},
	{Name: "Small", Description: nullString("Great gift size"), Dimensions: "8cm x 8cm x 8cm", PriceUSD: decimal.RequireFromString("199.00"), SortOrder: 2},
	{Name: "Medium", Description: nullString("Ideal for display"), Dimensions: "12cm x 12cm x 12cm", PriceUSD: decimal.RequireFromString("349.00"), SortOrder: 3},
	{Name: "Large", Description: nullString("Statement piece"), Dimensions: "18cm x 18cm x 18cm", PriceUSD: decimal.RequireFromString("549.00"), SortOrder: 4},
	{Name: "XL", Description: nullString("Premium showcase"), Dimensions: "25cm x 25cm x 25cm", PriceUSD: decimal.RequireFromString("749.00"), SortOrder: 5},
	{Name: "XXL", Description: nullString("Ultimate collector edition"), Dimensions: "35cm x 35cm x 35cm", PriceUSD: decimal.RequireFromString("999.00"), SortOrder: 6},
}

// SeedPrintSizes inserts the default catalog. Existing names are left as they are.
func (c *DatabaseClient) SeedPrintSizes(ctx context.Context) error {
	for _, def := range DefaultPrintSizes {
		size := def
		size.IsActive = true
		err := c.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&size).Error
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

func (c *DatabaseClient) ListActivePrintSizes(ctx context.Context) ([]models.PrintSize, error) {
	var sizes []models.PrintSize
	err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&sizes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return sizes, nil
}

func (c *DatabaseClient) GetActivePrintSize(ctx context.Context, id uuid.UUID) (*models.PrintSize, error) {
	var size models.PrintSize
	err := c.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&size).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &size, nil
}

func (c *DatabaseClient) CreatePrintSize(ctx context.Context, size *models.PrintSize) error {
	return translateError(c.db.WithContext(ctx).Create(size).Error)
}

func (c *DatabaseClient) UpdatePrintSizePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	res := c.db.WithContext(ctx).Model(&models.PrintSize{}).
		Where("id = ?", id).
		Update("price_usd", price)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
