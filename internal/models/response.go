package models

import "time"

type HealthResponse struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Email:        u.Email.String,
		Name:         u.Name.String,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

type PetImageResponse struct {
	ID           string    `json:"id"`
	OriginalURL  string    `json:"original_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size,omitempty"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPetImageResponse(img *PetImage) PetImageResponse {
	return PetImageResponse{
		ID:           img.ID.String(),
		OriginalURL:  img.OriginalURL,
		ThumbnailURL: img.ThumbnailURL.String,
		FileName:     img.FileName,
		FileSize:     img.FileSize.Int64,
		MimeType:     img.MimeType,
		CreatedAt:    img.CreatedAt,
	}
}

type PetImageListResponse struct {
	Images []PetImageResponse `json:"images"`
}

type ModelResponse struct {
	ID           string     `json:"id"`
	PetImageID   string     `json:"pet_image_id"`
	Status       string     `json:"status"`
	GLBURL       string     `json:"glb_url,omitempty"`
	PreviewURL   string     `json:"preview_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func NewModelResponse(m *Model3D) ModelResponse {
	resp := ModelResponse{
		ID:           m.ID.String(),
		PetImageID:   m.PetImageID.String(),
		Status:       string(m.Status),
		GLBURL:       m.GLBURL.String,
		PreviewURL:   m.PreviewURL.String,
		ErrorMessage: m.ErrorMessage.String,
		CreatedAt:    m.CreatedAt,
	}
	if m.CompletedAt.Valid {
		t := m.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}

type ModelListResponse struct {
	Models []ModelResponse `json:"models"`
}

type PrintSizeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Dimensions  string `json:"dimensions"`
	PriceUSD    string `json:"price_usd" example:"199.00"`
	SortOrder   int    `json:"sort_order"`
}

func NewPrintSizeResponse(p *PrintSize) PrintSizeResponse {
	return PrintSizeResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description.String,
		Dimensions:  p.Dimensions,
		PriceUSD:    p.PriceUSD.StringFixed(2),
		SortOrder:   p.SortOrder,
	}
}

type PrintSizeListResponse struct {
	PrintSizes []PrintSizeResponse `json:"print_sizes"`
}

type ShippingResponse struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone,omitempty"`
}

type OrderResponse struct {
	ID            string           `json:"id"`
	OrderNumber   string           `json:"order_number"`
	ModelID       string           `json:"model_id"`
	PrintSizeID   string           `json:"print_size_id"`
	Quantity      int              `json:"quantity"`
	UnitPriceUSD  string           `json:"unit_price_usd"`
	TotalPriceUSD string           `json:"total_price_usd"`
	Status        string           `json:"status"`
	Shipping      ShippingResponse `json:"shipping"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		ModelID:       o.Model3DID.String(),
		PrintSizeID:   o.PrintSizeID.String(),
		Quantity:      o.Quantity,
		UnitPriceUSD:  o.UnitPriceUSD.StringFixed(2),
		TotalPriceUSD: o.TotalPriceUSD.StringFixed(2),
		Status:        string(o.Status),
		Shipping: ShippingResponse{
			Name:       o.ShippingName,
			Address:    o.ShippingAddress,
			City:       o.ShippingCity,
			State:      o.ShippingState,
			Country:    o.ShippingCountry,
			PostalCode: o.ShippingPostalCode,
			Phone:      o.ShippingPhone.String,
		},
		Notes:     o.Notes.String,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type PaymentResponse struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"order_id"`
	PayPalOrderID   string    `json:"paypal_order_id"`
	PayPalCaptureID string    `json:"paypal_capture_id,omitempty"`
	AmountUSD       string    `json:"amount_usd"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PayerEmail      string    `json:"payer_email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID.String(),
		OrderID:         p.OrderID.String(),
		PayPalOrderID:   p.ProviderOrderID,
		PayPalCaptureID: p.ProviderCaptureID.String,
		AmountUSD:       p.AmountUSD.StringFixed(2),
		Currency:        p.Currency,
		Status:          string(p.Status),
		PayerEmail:      p.PayerEmail.String,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type InitiatePaymentResponse struct {
	PaymentID     string `json:"payment_id"`
	PayPalOrderID string `json:"paypal_order_id"`
	ApprovalURL   string `json:"approval_url"`
}

type CapturePaymentResponse struct {
	Success bool             `json:"success"`
	Status  string           `json:"status"`
	Payment *PaymentResponse `json:"payment,omitempty"`
	Order   *OrderResponse   `json:"order,omitempty"`
}
