package cart

import (
	"context"
	"errors"
	"strconv"

	"stylemart-be/internal/apperr"
	"stylemart-be/internal/catalog"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
}

type CacheObserver interface {
	ObserveCacheLookup(hit bool)
}

type Service interface {
	AddToCart(ctx context.Context, input AddToCartInput) (CartItem, error)
	GetCart(ctx context.Context) (*Cart, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	RemoveFromCart(ctx context.Context, itemID int64) error
	// Invalidate drops the cached cart view for userID.
	Invalidate(ctx context.Context, userID uint)
}

type service struct {
	repo     Repository
	products ProductReader
	cache    Cache
	observer CacheObserver
	sfg      singleflight.Group
}

func NewService(repo Repository, products ProductReader, cache Cache, observer CacheObserver) Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &service{repo: repo, products: products, cache: cache, observer: observer}
}

func (s *service) AddToCart(ctx context.Context, input AddToCartInput) (CartItem, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return CartItem{}, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "cart"),
		zap.String("method", "AddToCart"),
		zap.Int64("product_id", input.ProductID),
	)

	if input.Quantity <= 0 {
		return CartItem{}, apperr.NewValidationError(map[string]string{
			"quantity": "quantity must be greater than zero",
		})
	}

	p, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return CartItem{}, err
	}
	if !p.IsActive {
		return CartItem{}, catalog.ErrProductInactive
	}
	if input.Quantity > p.Stock {
		return CartItem{}, ErrInsufficientStock
	}

	item, err := s.repo.AddOrMerge(ctx, CartItem{
		UserID:    userID,
		ProductID: p.ID,
		Quantity:  input.Quantity,
		Size:      normalizeVariant(input.Size),
		Color:     normalizeVariant(input.Color),
	}, p.Stock)
	if err != nil {
		log.Warn("failed to add to cart", zap.Error(err))
		return CartItem{}, err
	}

	s.Invalidate(ctx, userID)
	log.Info("cart item saved",
		zap.Int64("cart_item_id", item.ID),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (s *service) GetCart(ctx context.Context) (*Cart, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "cart"),
		zap.String("method", "GetCart"),
	)

	// concurrent misses for one user share a single database read that
	// outlives any one caller's request
	loadCtx := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
		return s.loadCart(loadCtx, userID, log)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			log.Error("failed to load cart", zap.Error(res.Err))
			return nil, res.Err
		}
		return res.Val.(*Cart), nil
	}
}

func (s *service) loadCart(ctx context.Context, userID uint, log *zap.Logger) (*Cart, error) {
	c, err := s.cache.Get(ctx, userID)
	if err == nil {
		s.observe(true)
		return c, nil
	}
	s.observe(false)
	if !errors.Is(err, ErrCacheMiss) {
		log.Warn("cart cache read failed", zap.Error(err))
	}

	// read before the rows so an Invalidate racing this load wins
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		log.Warn("cart cache generation read failed", zap.Error(genErr))
	}

	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	c = buildCart(lines)

	if genErr != nil {
		return c, nil
	}
	switch err := s.cache.Set(ctx, userID, gen, c); {
	case err == nil:
	case errors.Is(err, ErrStaleGeneration):
		log.Debug("cart changed during load, skipping cache write")
	default:
		log.Warn("cart cache write failed", zap.Error(err))
	}
	return c, nil
}

func (s *service) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return apperr.ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "cart"),
		zap.String("method", "UpdateCartItem"),
		zap.Int64("cart_item_id", itemID),
	)

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		if err := s.repo.Delete(ctx, itemID); err != nil {
			return err
		}
		s.Invalidate(ctx, userID)
		log.Info("cart item removed by zero quantity")
		return nil
	}

	p, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}

	if err := s.repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return err
	}

	s.Invalidate(ctx, userID)
	log.Info("cart item quantity updated", zap.Int("quantity", quantity))
	return nil
}

func (s *service) RemoveFromCart(ctx context.Context, itemID int64) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return apperr.ErrUnauthenticated
	}

	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.Invalidate(ctx, userID)
	logger.FromCtx(ctx).Info("cart item removed",
		zap.String("service", "cart"),
		zap.Int64("cart_item_id", itemID),
	)
	return nil
}

func (s *service) Invalidate(ctx context.Context, userID uint) {
	// the rows already changed, so a client disconnect must not skip this
	if err := s.cache.Delete(context.WithoutCancel(ctx), userID); err != nil {
		logger.FromCtx(ctx).Warn("cart cache invalidation failed",
			zap.String("service", "cart"),
			zap.Error(err),
		)
	}
}

func (s *service) ownedItem(ctx context.Context, userID uint, itemID int64) (CartItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return CartItem{}, err
	}
	if item.UserID != userID {
		return CartItem{}, ErrCartItemForbidden
	}
	return item, nil
}

func (s *service) observe(hit bool) {
	if s.observer != nil {
		s.observer.ObserveCacheLookup(hit)
	}
}
