package address

import (
	"context"

	"stylemart-be/internal/apperr"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/utils"

	"go.uber.org/zap"
)

// Service manages a user's address book and keeps exactly one default
// address whenever the book is non-empty.
type Service interface {
	List(ctx context.Context) ([]Address, error)
	Create(ctx context.Context, input AddressInput) (Address, error)
	Update(ctx context.Context, addressID int64, input AddressInput) (Address, error)
	Delete(ctx context.Context, addressID int64) error
	Validate(input AddressInput) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Address, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Validate(input AddressInput) error {
	return Validate(input)
}

func (s *service) Create(ctx context.Context, input AddressInput) (Address, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Address{}, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "address"),
		zap.String("method", "Create"),
	)

	if err := Validate(input); err != nil {
		return Address{}, err
	}
	input = normalize(input)

	addr := Address{UserID: userID}
	addr.apply(input)

	err := s.repo.WithUserLock(ctx, userID, func(tx TxRepository) error {
		stats, err := tx.Stats(ctx, userID)
		if err != nil {
			return err
		}

		if err := tx.Insert(ctx, &addr); err != nil {
			return err
		}

		// first address, explicit request, or a book left without a default
		if input.IsDefault || stats.Total == 0 || stats.Defaults == 0 {
			if err := tx.SetDefault(ctx, userID, addr.ID); err != nil {
				return err
			}
			addr.IsDefault = true
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create address", zap.Error(err))
		return Address{}, err
	}

	log.Info("address created",
		zap.Int64("address_id", addr.ID),
		zap.Bool("is_default", addr.IsDefault),
	)
	return addr, nil
}

func (s *service) Update(ctx context.Context, addressID int64, input AddressInput) (Address, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Address{}, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "address"),
		zap.String("method", "Update"),
		zap.Int64("address_id", addressID),
	)

	if err := Validate(input); err != nil {
		return Address{}, err
	}
	input = normalize(input)

	var addr Address
	err := s.repo.WithUserLock(ctx, userID, func(tx TxRepository) error {
		existing, err := tx.GetByID(ctx, addressID)
		if err != nil {
			return err
		}
		if existing.UserID != userID {
			return ErrAddressForbidden
		}

		existing.apply(input)
		if err := tx.Update(ctx, &existing); err != nil {
			return err
		}

		// an unchecked default flag never demotes the current default
		if input.IsDefault && !existing.IsDefault {
			if err := tx.SetDefault(ctx, userID, existing.ID); err != nil {
				return err
			}
			existing.IsDefault = true
		}

		addr = existing
		return nil
	})
	if err != nil {
		log.Warn("failed to update address", zap.Error(err))
		return Address{}, err
	}

	log.Info("address updated", zap.Bool("is_default", addr.IsDefault))
	return addr, nil
}

func (s *service) Delete(ctx context.Context, addressID int64) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "address"),
		zap.String("method", "Delete"),
		zap.Int64("address_id", addressID),
	)

	err := s.repo.WithUserLock(ctx, userID, func(tx TxRepository) error {
		existing, err := tx.GetByID(ctx, addressID)
		if err != nil {
			return err
		}
		if existing.UserID != userID {
			return ErrAddressForbidden
		}
		return tx.Delete(ctx, addressID)
	})
	if err != nil {
		log.Warn("failed to delete address", zap.Error(err))
		return err
	}

	log.Info("address deleted")
	return nil
}
