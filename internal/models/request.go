package models

type CreateModelRequest struct {
	PetImageID string `json:"pet_image_id" binding:"required" example:"5b1c0e0a-3f7e-4a59-9a43-1d1f0b0c9d11"`
}

type ShippingRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"required,max=100"`
	Country    string `json:"country" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Phone      string `json:"phone,omitempty" binding:"max=50"`
}

type CreateOrderRequest struct {
	ModelID     string          `json:"model_id" binding:"required"`
	PrintSizeID string          `json:"print_size_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1,max=100" example:"1"`
	Shipping    ShippingRequest `json:"shipping" binding:"required"`
	Notes       string          `json:"notes,omitempty"`
}

// ShippingInfo converts the request body into the service-level type.
func (r CreateOrderRequest) ShippingInfo() ShippingInfo {
	return ShippingInfo{
		Name:       r.Shipping.Name,
		Address:    r.Shipping.Address,
		City:       r.Shipping.City,
		State:      r.Shipping.State,
		Country:    r.Shipping.Country,
		PostalCode: r.Shipping.PostalCode,
		Phone:      r.Shipping.Phone,
		Notes:      r.Notes,
	}
}

type InitiatePaymentRequest struct {
	ReturnURL string `json:"return_url" binding:"required,url"`
	CancelURL string `json:"cancel_url" binding:"required,url"`
}

type CapturePaymentRequest struct {
	// PayPalOrderID is the "token" query parameter PayPal appends to the return URL.
	PayPalOrderID string `json:"paypal_order_id" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"shipped"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
