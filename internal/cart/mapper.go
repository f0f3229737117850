package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

func normalizeVariant(s string) string {
	return strings.TrimSpace(s)
}

// buildCart prices every line and sums the totals.
func buildCart(lines []CartLine) *Cart {
	c := &Cart{Items: make([]CartLine, 0, len(lines)), TotalAmount: decimal.Zero}
	for _, l := range lines {
		l.Subtotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		c.TotalQuantity += l.Quantity
		c.TotalAmount = c.TotalAmount.Add(l.Subtotal)
		c.Items = append(c.Items, l)
	}
	return c
}
