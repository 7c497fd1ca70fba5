package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type ModelStatus string

const (
	ModelStatusPending    ModelStatus = "pending"
	ModelStatusProcessing ModelStatus = "processing"
	ModelStatusCompleted  ModelStatus = "completed"
	ModelStatusFailed     ModelStatus = "failed"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists every allowed order status edge.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey"`
	Email        sql.NullString `gorm:"size:320"`
	Name         sql.NullString `gorm:"size:255"`
	Role         Role           `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

type PetImage struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID      `gorm:"type:char(36);not null;index"`
	OriginalURL  string         `gorm:"not null"`
	ThumbnailURL sql.NullString
	FileName     string        `gorm:"size:255"`
	FileSize     sql.NullInt64
	MimeType     string        `gorm:"size:50"`
	Width        sql.NullInt64
	Height       sql.NullInt64
	StorageKey   string        `gorm:"size:500"`
	CreatedAt    time.Time
}

func (p *PetImage) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

type Model3D struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID      `gorm:"type:char(36);not null;index"`
	PetImageID   uuid.UUID      `gorm:"type:char(36);not null;index"`
	JobID        string         `gorm:"size:100;index"`
	Status       ModelStatus    `gorm:"size:16;not null;default:pending"`
	GLBURL       sql.NullString `gorm:"column:glb_url"`
	PreviewURL   sql.NullString
	StorageKey   sql.NullString `gorm:"size:500"`
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	CompletedAt  sql.NullTime
}

func (Model3D) TableName() string { return "models_3d" }

func (m *Model3D) BeforeCreate(*gorm.DB) error {
	m.ID = ensureID(m.ID)
	return nil
}

type PrintSize struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Name        string          `gorm:"size:50;not null;uniqueIndex"`
	Description sql.NullString
	Dimensions  string          `gorm:"size:50;not null"`
	PriceUSD    decimal.Decimal `gorm:"column:price_usd;type:numeric(10,2);not null"`
	IsActive    bool            `gorm:"not null;default:true"`
	SortOrder   int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

func (p *PrintSize) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

type Order struct {
	ID                 uuid.UUID       `gorm:"type:char(36);primaryKey"`
	OrderNumber        string          `gorm:"size:50;not null;uniqueIndex"`
	UserID             uuid.UUID       `gorm:"type:char(36);not null;index"`
	Model3DID          uuid.UUID       `gorm:"column:model_3d_id;type:char(36);not null;index"`
	PrintSizeID        uuid.UUID       `gorm:"type:char(36);not null"`
	Quantity           int             `gorm:"not null;default:1"`
	UnitPriceUSD       decimal.Decimal `gorm:"column:unit_price_usd;type:numeric(10,2);not null"`
	TotalPriceUSD      decimal.Decimal `gorm:"column:total_price_usd;type:numeric(10,2);not null"`
	Status             OrderStatus     `gorm:"size:16;not null;default:pending"`
	ShippingName       string          `gorm:"size:100"`
	ShippingAddress    string
	ShippingCity       string         `gorm:"size:100"`
	ShippingState      string         `gorm:"size:100"`
	ShippingCountry    string         `gorm:"size:100"`
	ShippingPostalCode string         `gorm:"size:20"`
	ShippingPhone      sql.NullString `gorm:"size:50"`
	Notes              sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.ID = ensureID(o.ID)
	return nil
}

type Payment struct {
	ID                uuid.UUID       `gorm:"type:char(36);primaryKey"`
	OrderID           uuid.UUID       `gorm:"type:char(36);not null;index"`
	ProviderOrderID   string          `gorm:"size:100;not null;uniqueIndex"`
	ProviderCaptureID sql.NullString  `gorm:"size:100"`
	AmountUSD         decimal.Decimal `gorm:"column:amount_usd;type:numeric(10,2);not null"`
	Currency          string          `gorm:"size:10;not null;default:USD"`
	Status            PaymentStatus   `gorm:"size:16;not null;default:pending"`
	PayerEmail        sql.NullString  `gorm:"size:255"`
	PayerID           sql.NullString  `gorm:"size:100"`
	RawResponse       datatypes.JSON
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

type SystemConfig struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"size:100;not null;uniqueIndex"`
	Value       string `gorm:"not null"`
	Description sql.NullString
	IsEncrypted bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SystemConfig) TableName() string { return "system_config" }

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	Name       string
	Address    string
	City       string
	State      string
	Country    string
	PostalCode string
	Phone      string
	Notes      string
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
