package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func orderKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

type orderCreatedPayload struct {
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	UserID        uint            `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	ItemCount     int             `json:"itemCount"`
}

type statusChangedPayload struct {
	OrderID        int64   `json:"orderId"`
	OrderNumber    string  `json:"orderNumber"`
	From           Status  `json:"from"`
	To             Status  `json:"to"`
	TrackingNumber *string `json:"trackingNumber,omitempty"`
	CourierName    *string `json:"courierName,omitempty"`
}

type paymentChangedPayload struct {
	OrderID     int64         `json:"orderId"`
	OrderNumber string        `json:"orderNumber"`
	From        PaymentStatus `json:"from"`
	To          PaymentStatus `json:"to"`
}

func toOrderItem(orderID int64, l CheckoutLine) OrderItem {
	return OrderItem{
		OrderID:      orderID,
		ProductID:    l.ProductID,
		ProductName:  l.ProductName,
		ProductImage: l.ProductImage,
		Price:        l.Price,
		Quantity:     l.Quantity,
		Size:         l.Size,
		Color:        l.Color,
		Subtotal:     l.Price.Mul(decimalFromInt(l.Quantity)),
	}
}
