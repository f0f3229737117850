package catalog

import (
	"context"
	"database/sql"
	"errors"

	"stylemart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const getProductQuery = `
SELECT p.id, p.name, p.description, p.price, p.stock, p.is_active,
       COALESCE(array_agg(pi.url ORDER BY pi.position) FILTER (WHERE pi.url IS NOT NULL), '{}')
FROM products p
LEFT JOIN product_images pi ON pi.product_id = p.id
WHERE p.id = $1
GROUP BY p.id`

func (r *repository) GetByID(ctx context.Context, id int64) (Product, error) {
	var (
		p      Product
		images []string
	)
	err := r.db.QueryRowContext(ctx, getProductQuery, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive,
		pq.Array(&images),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load product",
			zap.String("repo", "catalog"),
			zap.Int64("product_id", id),
			zap.Error(err),
		)
		return Product{}, err
	}

	p.Images = images
	return p, nil
}
