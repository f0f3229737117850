package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. Size and Color are empty when the
// product has no variant selection.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    uint      `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLine is a cart item joined with the live product data needed to price it.
type CartLine struct {
	CartItem
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items         []CartLine      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type AddToCartInput struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}
