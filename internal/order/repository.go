package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stylemart-be/internal/db"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/outbox"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	pgUniqueViolation = "23505"

	constraintOrderNumber    = "orders_order_number_key"
	constraintIdempotencyKey = "orders_user_idempotency_key"
)

type Repository interface {
	// WithTx runs fn inside one database transaction.
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error

	GetByID(ctx context.Context, id int64) (Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error)
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
}

type TxRepository interface {
	LockCart(ctx context.Context, userID uint) ([]CheckoutLine, error)
	GetShippingAddress(ctx context.Context, addressID int64) (uint, ShippingAddress, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertOrderItem(ctx context.Context, item *OrderItem) error
	// DecrementStock reports false when the product has fewer than qty units.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
	ClearCart(ctx context.Context, userID uint) (int64, error)

	GetForUpdate(ctx context.Context, id int64) (Order, error)
	// UpdateStatus writes the lifecycle fields of o only if the stored status
	// still equals prev.
	UpdateStatus(ctx context.Context, o *Order, prev Status) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus, at time.Time) error

	InsertEvent(ctx context.Context, e outbox.Event) error
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repository struct {
	db          *sql.DB
	eventsTopic string
}

func NewRepository(db *sql.DB, eventsTopic string) Repository {
	return &repository{db: db, eventsTopic: eventsTopic}
}

const orderColumns = `
	o.id, o.user_id, o.order_number, o.total_amount, o.status,
	o.payment_method, o.payment_status,
	o.shipping_full_name, o.shipping_address_line1, o.shipping_address_line2,
	o.shipping_city, o.shipping_state, o.shipping_postal_code, o.shipping_phone_number,
	o.estimated_delivery, o.shipped_at, o.delivered_at, o.tracking_number, o.courier_name,
	o.idempotency_key, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	a := &o.ShippingAddress
	return row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.Status,
		&o.PaymentMethod, &o.PaymentStatus,
		&a.FullName, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.PhoneNumber,
		&o.EstimatedDelivery, &o.ShippedAt, &o.DeliveredAt, &o.TrackingNumber, &o.CourierName,
		&o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *repository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&txRepository{q: tx, eventsTopic: r.eventsTopic})
	})
}

func (r *repository) GetByID(ctx context.Context, id int64) (Order, error) {
	return r.getOne(ctx, "GetByID", `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
}

func (r *repository) GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error) {
	return r.getOne(ctx, "GetByOrderNumber", `SELECT `+orderColumns+` FROM orders o WHERE o.order_number = $1`, orderNumber)
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (Order, error) {
	return r.getOne(ctx, "FindByIdempotencyKey",
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 AND o.idempotency_key = $2`,
		userID, key)
}

func (r *repository) getOne(ctx context.Context, method, query string, args ...any) (Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "order"),
		zap.String("method", method),
	)

	var o Order
	err := scanOrder(r.db.QueryRowContext(ctx, query, args...), &o)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return Order{}, err
	}

	orders := []Order{o}
	if err := loadItems(ctx, r.db, orders); err != nil {
		log.Error("failed to load order items", zap.Int64("order_id", o.ID), zap.Error(err))
		return Order{}, err
	}
	return orders[0], nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return r.list(ctx, "ListByUser",
		`SELECT `+orderColumns+` FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`,
		userID)
}

func (r *repository) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	return r.list(ctx, "ListAll",
		`SELECT `+orderColumns+` FROM orders o
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *repository) list(ctx context.Context, method, query string, args ...any) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "order"),
		zap.String("method", method),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	if err := loadItems(ctx, r.db, orders); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// loadItems fills Items for every order with a single query.
func loadItems(ctx context.Context, q queryer, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []OrderItem{}
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, product_image, price, quantity, size, color
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`,
		pq.Array(ids),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductImage,
			&it.Price, &it.Quantity, &it.Size, &it.Color); err != nil {
			return err
		}
		it.Subtotal = it.Price.Mul(decimalFromInt(it.Quantity))
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

type txRepository struct {
	q           queryer
	eventsTopic string
}

func (r *txRepository) LockCart(ctx context.Context, userID uint) ([]CheckoutLine, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT c.id, c.product_id, p.name,
		       COALESCE((SELECT pi.url FROM product_images pi
		                 WHERE pi.product_id = p.id
		                 ORDER BY pi.position LIMIT 1), ''),
		       p.price, c.quantity, c.size, c.color
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
		FOR UPDATE OF c`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []CheckoutLine
	for rows.Next() {
		var l CheckoutLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.ProductName, &l.ProductImage,
			&l.Price, &l.Quantity, &l.Size, &l.Color); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *txRepository) GetShippingAddress(ctx context.Context, addressID int64) (uint, ShippingAddress, error) {
	var (
		ownerID uint
		a       ShippingAddress
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, full_name, address_line1, address_line2,
		        city, state, postal_code, phone_number
		FROM addresses
		WHERE id = $1
		FOR SHARE`,
		addressID,
	).Scan(&ownerID, &a.FullName, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ShippingAddress{}, errAddressNotFound
	}
	return ownerID, a, err
}

func (r *txRepository) InsertOrder(ctx context.Context, o *Order) error {
	a := o.ShippingAddress
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO orders (
			user_id, order_number, total_amount, status, payment_method, payment_status,
			idempotency_key,
			shipping_full_name, shipping_address_line1, shipping_address_line2,
			shipping_city, shipping_state, shipping_postal_code, shipping_phone_number,
			estimated_delivery, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`,
		o.UserID, o.OrderNumber, o.TotalAmount, o.Status, o.PaymentMethod, o.PaymentStatus,
		o.IdempotencyKey,
		a.FullName, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.PhoneNumber,
		o.EstimatedDelivery, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		switch pqErr.Constraint {
		case constraintOrderNumber:
			return errOrderNumberTaken
		case constraintIdempotencyKey:
			return errDuplicateIdempotent
		}
	}
	return err
}

func (r *txRepository) InsertOrderItem(ctx context.Context, it *OrderItem) error {
	return r.q.QueryRowContext(ctx,
		`INSERT INTO order_items (
			order_id, product_id, product_name, product_image, price, quantity, size, color
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		it.OrderID, it.ProductID, it.ProductName, it.ProductImage, it.Price, it.Quantity, it.Size, it.Color,
	).Scan(&it.ID)
}

func (r *txRepository) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`,
		qty, productID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *txRepository) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *txRepository) GetForUpdate(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := scanOrder(r.q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id), &o)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *txRepository) UpdateStatus(ctx context.Context, o *Order, prev Status) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders
		SET status = $2, shipped_at = $3, delivered_at = $4,
		    tracking_number = $5, courier_name = $6, updated_at = $7
		WHERE id = $1 AND status = $8`,
		o.ID, o.Status, o.ShippedAt, o.DeliveredAt,
		o.TrackingNumber, o.CourierName, o.UpdatedAt, prev,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *txRepository) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1`,
		id, status, at,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *txRepository) InsertEvent(ctx context.Context, e outbox.Event) error {
	return outbox.Insert(ctx, r.q, r.eventsTopic, e)
}
