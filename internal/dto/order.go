package dto

import "github.com/joshu-sajeev/notifyqueue/internal/config"

type OrderItem struct {
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type OrderConfirmationPayload struct {
	Email    string      `json:"email" validate:"required,email"`
	Name     string      `json:"name" validate:"required"`
	OrderID  string      `json:"order_id" validate:"required"`
	Items    []OrderItem `json:"items" validate:"required,min=1,dive"`
	Total    float64     `json:"total" validate:"gte=0"`
	Currency string      `json:"currency" validate:"required,len=3"`
}

func (OrderConfirmationPayload) JobType() config.JobType { return config.JobTypeOrderConfirmation }
func (p OrderConfirmationPayload) Recipient() string    { return p.Email }

type OrderStatusUpdatePayload struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required"`
	OrderID        string `json:"order_id" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

func (OrderStatusUpdatePayload) JobType() config.JobType { return config.JobTypeOrderStatusUpdate }
func (p OrderStatusUpdatePayload) Recipient() string    { return p.Email }

// AdminNewOrderPayload alerts the back office about a new order. AdminEmail
// overrides the configured admin address when set.
type AdminNewOrderPayload struct {
	OrderID       string  `json:"order_id" validate:"required"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	Total         float64 `json:"total" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	ItemCount     int     `json:"item_count" validate:"gte=1"`
	AdminEmail    string  `json:"admin_email,omitempty" validate:"omitempty,email"`
}

func (AdminNewOrderPayload) JobType() config.JobType { return config.JobTypeAdminNewOrder }
func (p AdminNewOrderPayload) Recipient() string    { return p.AdminEmail }
