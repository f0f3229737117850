package address

import (
	"context"
	"database/sql"
	"errors"

	"stylemart-be/internal/db"
	"stylemart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListByUser(ctx context.Context, userID uint) ([]Address, error)

	// WithUserLock runs fn in a transaction that holds the user's advisory
	// lock, serialising every address mutation for that user.
	WithUserLock(ctx context.Context, userID uint, fn func(tx TxRepository) error) error
}

type TxRepository interface {
	Stats(ctx context.Context, userID uint) (defaultStats, error)
	GetByID(ctx context.Context, id int64) (Address, error)
	Insert(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, userID uint, addressID int64) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addressColumns = `
	id, user_id, full_name, address_line1, address_line2,
	city, state, postal_code, phone_number, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(...any) error }, a *Address) error {
	return row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.PhoneNumber, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "address"),
		zap.String("method", "ListByUser"),
	)

	rows, err := r.db.QueryContext(ctx,
		`SELECT`+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	res := []Address{}
	for rows.Next() {
		var a Address
		if err := scanAddress(rows, &a); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	return res, nil
}

func (r *repository) WithUserLock(ctx context.Context, userID uint, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(userID)); err != nil {
			logger.FromCtx(ctx).Error("failed to acquire address lock",
				zap.String("repo", "address"),
				zap.Error(err),
			)
			return err
		}
		return fn(&txRepository{q: tx})
	})
}

type txRepository struct {
	q queryer
}

func (r *txRepository) Stats(ctx context.Context, userID uint) (defaultStats, error) {
	var s defaultStats
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_default)
		FROM addresses
		WHERE user_id = $1`,
		userID,
	).Scan(&s.Total, &s.Defaults)
	return s, err
}

func (r *txRepository) GetByID(ctx context.Context, id int64) (Address, error) {
	var a Address
	err := scanAddress(r.q.QueryRowContext(ctx,
		`SELECT`+addressColumns+`
		FROM addresses
		WHERE id = $1`,
		id,
	), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrAddressNotFound
	}
	return a, err
}

func (r *txRepository) Insert(ctx context.Context, a *Address) error {
	return r.q.QueryRowContext(ctx,
		`INSERT INTO addresses (
			user_id, full_name, address_line1, address_line2,
			city, state, postal_code, phone_number, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING id, created_at, updated_at`,
		a.UserID, a.FullName, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.PhoneNumber,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *txRepository) Update(ctx context.Context, a *Address) error {
	return r.q.QueryRowContext(ctx,
		`UPDATE addresses SET
			full_name = $2, address_line1 = $3, address_line2 = $4,
			city = $5, state = $6, postal_code = $7, phone_number = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.FullName, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.PhoneNumber,
	).Scan(&a.UpdatedAt)
}

func (r *txRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	return err
}

// SetDefault flips every address of the user in one statement so exactly the
// target row ends up default.
func (r *txRepository) SetDefault(ctx context.Context, userID uint, addressID int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE addresses
		SET is_default = (id = $2),
		    updated_at = CASE WHEN is_default <> (id = $2) THEN NOW() ELSE updated_at END
		WHERE user_id = $1`,
		userID, addressID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAddressNotFound
	}
	return nil
}
