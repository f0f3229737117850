package order

import (
	"fmt"
	"strings"

	"stylemart-be/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// rank orders the forward path. Cancelled sits outside it.
var rank = map[Status]int{
	StatusPending:   1,
	StatusConfirmed: 2,
	StatusShipped:   3,
	StatusDelivered: 4,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", apperr.NewValidationError(map[string]string{
		"status": fmt.Sprintf("unknown order status %q", s),
	})
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Forward moves may skip states; cancellation is allowed until the order is
// delivered; nothing leaves a terminal state.
func CanTransition(from, to Status) bool {
	if from.Terminal() || from == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fr, ok := rank[from]
	if !ok {
		return false
	}
	tr, ok := rank[to]
	return ok && tr > fr
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch ps {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return ps, nil
	}
	return "", apperr.NewValidationError(map[string]string{
		"paymentStatus": fmt.Sprintf("unknown payment status %q", s),
	})
}
