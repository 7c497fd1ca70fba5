package services

import (
	"context"

	"pet3d-backend/internal/hunyuan"
	"pet3d-backend/internal/paypal"
)

// AssetStore is durable blob storage returning publicly retrievable URLs.
type AssetStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type GenerationProvider interface {
	SubmitJob(ctx context.Context, imageURL string) (string, error)
	QueryJob(ctx context.Context, jobID string) (*hunyuan.JobResult, error)
	DownloadAsset(ctx context.Context, url string) ([]byte, string, error)
}

type PaymentProvider interface {
	CreateOrder(ctx context.Context, in paypal.CreateOrderInput) (*paypal.CreatedOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
	GetOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
	Currency() string
}

// Notifier sends best-effort operator notifications without blocking.
type Notifier interface {
	Dispatch(title, content string)
}
