package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"stylemart-be/internal/apperr"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/outbox"
	"stylemart-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxOrderNumberAttempts = 3

	defaultListLimit = 50
	maxListLimit     = 200
)

// Checkout outcomes reported to the Observer.
const (
	OutcomeSuccess           = "success"
	OutcomeReplayed          = "replayed"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInvalidAddress    = "invalid_address"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

// CartInvalidator drops cached cart views after the cart rows change.
type CartInvalidator interface {
	Invalidate(ctx context.Context, userID uint)
}

type Observer interface {
	ObserveCheckout(outcome string)
	ObserveTransition(from, to string)
}

type Options struct {
	DeliveryDays int
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (CheckoutResult, error)

	GetUserOrders(ctx context.Context) ([]Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error)
	UpdateStatus(ctx context.Context, orderID int64, update StatusUpdate) (Order, error)

	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
	AdminUpdateStatus(ctx context.Context, orderID int64, update StatusUpdate) (Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (Order, error)
}

type service struct {
	repo     Repository
	cart     CartInvalidator
	observer Observer
	opts     Options

	now            func() time.Time
	newOrderNumber func() string
}

func NewService(repo Repository, cart CartInvalidator, observer Observer, opts Options) Service {
	if opts.DeliveryDays <= 0 {
		opts.DeliveryDays = 7
	}
	return &service{
		repo:           repo,
		cart:           cart,
		observer:       observer,
		opts:           opts,
		now:            time.Now,
		newOrderNumber: utils.GenerateOrderNumber,
	}
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (CheckoutResult, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return CheckoutResult{}, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "order"),
		zap.String("method", "Checkout"),
		zap.Int64("address_id", input.AddressID),
	)

	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)

	fields := map[string]string{}
	if input.AddressID <= 0 {
		fields["addressId"] = "address id is required"
	}
	if input.PaymentMethod == "" {
		fields["paymentMethod"] = "payment method is required"
	}
	if len(fields) > 0 {
		return CheckoutResult{}, apperr.NewValidationError(fields)
	}

	if input.IdempotencyKey != "" {
		if res, found, err := s.replay(ctx, userID, input.IdempotencyKey); err != nil || found {
			return res, err
		}
	}

	var (
		o   *Order
		err error
	)
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		o, err = s.placeOrder(ctx, userID, input)
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		log.Warn("order number collision, retrying", zap.Int("attempt", attempt))
	}

	if errors.Is(err, errDuplicateIdempotent) {
		// a concurrent request with the same key committed first
		res, found, rerr := s.replay(ctx, userID, input.IdempotencyKey)
		if rerr != nil {
			return CheckoutResult{}, rerr
		}
		if found {
			return res, nil
		}
		s.observeCheckout(OutcomeError)
		return CheckoutResult{}, ErrConcurrentUpdate
	}
	if err != nil {
		s.observeCheckout(checkoutOutcome(err))
		if isCheckoutRejection(err) {
			log.Info("checkout rejected", zap.Error(err))
		} else {
			log.Error("checkout failed", zap.Error(err))
		}
		return CheckoutResult{}, err
	}

	s.observeCheckout(OutcomeSuccess)
	if s.cart != nil {
		s.cart.Invalidate(ctx, userID)
	}

	log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.String()),
	)
	return CheckoutResult{OrderID: o.ID, OrderNumber: o.OrderNumber}, nil
}

func (s *service) replay(ctx context.Context, userID uint, key string) (CheckoutResult, bool, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, ErrOrderNotFound) {
		return CheckoutResult{}, false, nil
	}
	if err != nil {
		return CheckoutResult{}, false, err
	}
	s.observeCheckout(OutcomeReplayed)
	return CheckoutResult{OrderID: existing.ID, OrderNumber: existing.OrderNumber, Replayed: true}, true, nil
}

// placeOrder converts the user's cart into an order in one transaction.
func (s *service) placeOrder(ctx context.Context, userID uint, input CheckoutInput) (*Order, error) {
	var placed *Order

	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ownerID, addr, err := tx.GetShippingAddress(ctx, input.AddressID)
		if errors.Is(err, errAddressNotFound) {
			return ErrInvalidAddress
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return ErrInvalidAddress
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.Price.Mul(decimalFromInt(l.Quantity)))
		}

		now := s.now()
		eta := now.AddDate(0, 0, s.opts.DeliveryDays)
		o := &Order{
			UserID:            userID,
			OrderNumber:       s.newOrderNumber(),
			TotalAmount:       total,
			Status:            StatusPending,
			PaymentMethod:     input.PaymentMethod,
			PaymentStatus:     PaymentPending,
			ShippingAddress:   addr,
			EstimatedDelivery: &eta,
			IdempotencyKey:    optionalString(input.IdempotencyKey),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		// products are locked in id order so concurrent checkouts cannot deadlock
		byProduct := make([]CheckoutLine, len(lines))
		copy(byProduct, lines)
		sort.SliceStable(byProduct, func(i, j int) bool {
			return byProduct[i].ProductID < byProduct[j].ProductID
		})
		for _, l := range byProduct {
			ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock
			}
		}

		o.Items = make([]OrderItem, 0, len(lines))
		for _, l := range lines {
			item := toOrderItem(o.ID, l)
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return err
			}
			o.Items = append(o.Items, item)
		}
		if len(o.Items) == 0 {
			return ErrOrderItemCreationFailed
		}

		if _, err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}

		if err := tx.InsertEvent(ctx, outbox.Event{
			Type: outbox.EventOrderCreated,
			Key:  orderKey(o.ID),
			Payload: orderCreatedPayload{
				OrderID:       o.ID,
				OrderNumber:   o.OrderNumber,
				UserID:        userID,
				TotalAmount:   o.TotalAmount,
				PaymentMethod: o.PaymentMethod,
				ItemCount:     len(o.Items),
			},
		}); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) GetUserOrders(ctx context.Context) ([]Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("service", "order"),
			zap.String("method", "GetUserOrders"),
			zap.Error(err),
		)
		return nil, err
	}
	return orders, nil
}

func (s *service) GetOrderByID(ctx context.Context, orderID int64) (Order, error) {
	return s.getVisible(ctx, "GetOrderByID", func() (Order, error) {
		return s.repo.GetByID(ctx, orderID)
	})
}

func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	return s.getVisible(ctx, "GetByOrderNumber", func() (Order, error) {
		return s.repo.GetByOrderNumber(ctx, orderNumber)
	})
}

// getVisible loads an order the caller owns. Admins see every order.
func (s *service) getVisible(ctx context.Context, method string, load func() (Order, error)) (Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Order{}, apperr.ErrUnauthenticated
	}

	o, err := load()
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			logger.FromCtx(ctx).Error("failed to load order",
				zap.String("service", "order"),
				zap.String("method", method),
				zap.Error(err),
			)
		}
		return Order{}, err
	}
	if o.UserID != userID && !utils.IsAdmin(ctx) {
		return Order{}, ErrOrderForbidden
	}
	return o, nil
}

func (s *service) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list all orders",
			zap.String("service", "order"),
			zap.String("method", "ListAll"),
			zap.Error(err),
		)
		return nil, err
	}
	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, update StatusUpdate) (Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Order{}, apperr.ErrUnauthenticated
	}
	return s.transition(ctx, "UpdateStatus", orderID, update, func(o Order) error {
		if o.UserID != userID {
			return ErrOrderForbidden
		}
		return nil
	})
}

func (s *service) AdminUpdateStatus(ctx context.Context, orderID int64, update StatusUpdate) (Order, error) {
	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return Order{}, apperr.ErrUnauthenticated
	}
	return s.transition(ctx, "AdminUpdateStatus", orderID, update, nil)
}

func (s *service) transition(ctx context.Context, method string, orderID int64, update StatusUpdate, authorize func(Order) error) (Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "order"),
		zap.String("method", method),
		zap.Int64("order_id", orderID),
	)

	to, err := ParseStatus(update.Status)
	if err != nil {
		return Order{}, err
	}

	var from Status
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		o, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(o); err != nil {
				return err
			}
		}

		from = o.Status
		if !CanTransition(from, to) {
			return ErrIllegalTransition
		}

		now := s.now()
		o.Status = to
		o.UpdatedAt = now
		switch to {
		case StatusShipped:
			o.ShippedAt = &now
			o.TrackingNumber = optionalString(update.TrackingNumber)
			o.CourierName = optionalString(update.CourierName)
		case StatusDelivered:
			o.DeliveredAt = &now
		}

		swapped, err := tx.UpdateStatus(ctx, &o, from)
		if err != nil {
			return err
		}
		if !swapped {
			return ErrConcurrentUpdate
		}

		return tx.InsertEvent(ctx, outbox.Event{
			Type: outbox.EventOrderStatusChanged,
			Key:  orderKey(o.ID),
			Payload: statusChangedPayload{
				OrderID:        o.ID,
				OrderNumber:    o.OrderNumber,
				From:           from,
				To:             to,
				TrackingNumber: o.TrackingNumber,
				CourierName:    o.CourierName,
			},
		})
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrForbidden) || errors.Is(err, apperr.ErrConflict) {
			log.Info("status update rejected", zap.String("to", string(to)), zap.Error(err))
		} else {
			log.Error("status update failed", zap.Error(err))
		}
		return Order{}, err
	}

	if s.observer != nil {
		s.observer.ObserveTransition(string(from), string(to))
	}
	log.Info("order status updated", zap.String("from", string(from)), zap.String("to", string(to)))

	return s.repo.GetByID(ctx, orderID)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (Order, error) {
	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return Order{}, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "order"),
		zap.String("method", "UpdatePaymentStatus"),
		zap.Int64("order_id", orderID),
	)

	to, err := ParsePaymentStatus(status)
	if err != nil {
		return Order{}, err
	}

	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		o, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.UpdatePaymentStatus(ctx, orderID, to, s.now()); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, outbox.Event{
			Type: outbox.EventOrderPaymentStatusChanged,
			Key:  orderKey(o.ID),
			Payload: paymentChangedPayload{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				From:        o.PaymentStatus,
				To:          to,
			},
		})
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			log.Error("payment status update failed", zap.Error(err))
		}
		return Order{}, err
	}

	log.Info("payment status updated", zap.String("to", string(to)))
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) observeCheckout(outcome string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(outcome)
	}
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return OutcomeEmptyCart
	case errors.Is(err, ErrInvalidAddress):
		return OutcomeInvalidAddress
	case errors.Is(err, ErrInsufficientStock):
		return OutcomeInsufficientStock
	}
	return OutcomeError
}

func isCheckoutRejection(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInsufficientStock)
}
