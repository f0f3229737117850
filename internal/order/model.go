package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingAddress is the address copied onto an order at checkout. Later
// edits to the address book never reach it.
type ShippingAddress struct {
	FullName     string  `json:"fullName"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	PhoneNumber  string  `json:"phoneNumber"`
}

type Order struct {
	ID          int64           `json:"id"`
	UserID      uint            `json:"userId"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`

	Status        Status        `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`

	ShippingAddress ShippingAddress `json:"shippingAddress"`

	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ShippedAt         *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
	TrackingNumber    *string    `json:"trackingNumber,omitempty"`
	CourierName       *string    `json:"courierName,omitempty"`

	IdempotencyKey *string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items []OrderItem `json:"items"`
}

// OrderItem freezes product name, image and unit price at checkout time.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"orderId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// CheckoutLine is a locked cart row joined with live product data.
type CheckoutLine struct {
	CartItemID   int64
	ProductID    int64
	ProductName  string
	ProductImage string
	Price        decimal.Decimal
	Quantity     int
	Size         string
	Color        string
}

type CheckoutInput struct {
	AddressID      int64  `json:"addressId"`
	PaymentMethod  string `json:"paymentMethod"`
	IdempotencyKey string `json:"-"`
}

type CheckoutResult struct {
	OrderID     int64
	OrderNumber string
	// Replayed is set when an earlier order with the same idempotency key
	// was returned instead of creating a new one.
	Replayed bool
}

type StatusUpdate struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	CourierName    string `json:"courierName"`
}
