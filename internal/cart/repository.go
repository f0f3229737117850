package cart

import (
	"context"
	"database/sql"
	"errors"

	"stylemart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetItem(ctx context.Context, id int64) (CartItem, error)
	// AddOrMerge inserts the item or adds its quantity to the matching
	// (user, product, size, color) row, provided the merged quantity stays
	// within maxQuantity.
	AddOrMerge(ctx context.Context, item CartItem, maxQuantity int) (CartItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	ListLines(ctx context.Context, userID uint) ([]CartLine, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `id, user_id, product_id, quantity, size, color, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }, c *CartItem) error {
	return row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.Size, &c.Color, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repository) GetItem(ctx context.Context, id int64) (CartItem, error) {
	var c CartItem
	err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM cart_items WHERE id = $1`, id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return CartItem{}, ErrCartItemNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart item",
			zap.String("repo", "cart"),
			zap.Int64("cart_item_id", id),
			zap.Error(err),
		)
		return CartItem{}, err
	}
	return c, nil
}

func (r *repository) AddOrMerge(ctx context.Context, item CartItem, maxQuantity int) (CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "cart"),
		zap.String("method", "AddOrMerge"),
		zap.Int64("product_id", item.ProductID),
	)

	var c CartItem
	err := scanItem(r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= $6
		RETURNING `+itemColumns,
		item.UserID, item.ProductID, item.Quantity, item.Size, item.Color, maxQuantity,
	), &c)
	if errors.Is(err, sql.ErrNoRows) {
		// conflict row existed but the merged total exceeded stock
		return CartItem{}, ErrInsufficientStock
	}
	if err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return CartItem{}, err
	}
	return c, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update cart item",
			zap.String("repo", "cart"),
			zap.Int64("cart_item_id", id),
			zap.Error(err),
		)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete cart item",
			zap.String("repo", "cart"),
			zap.Int64("cart_item_id", id),
			zap.Error(err),
		)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) ListLines(ctx context.Context, userID uint) ([]CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "cart"),
		zap.String("method", "ListLines"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.size, c.color, c.created_at, c.updated_at,
		       p.name, p.price, p.stock, p.is_active,
		       COALESCE((SELECT pi.url FROM product_images pi
		                 WHERE pi.product_id = p.id
		                 ORDER BY pi.position LIMIT 1), '')
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := []CartLine{}
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.Size, &l.Color, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.Price, &l.Stock, &l.IsActive, &l.Image,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}
	return lines, nil
}
