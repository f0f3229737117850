package handler

import (
	"context"

	"stylemart-be/internal/address"
	"stylemart-be/internal/auth"
	"stylemart-be/internal/cart"
	"stylemart-be/internal/order"
	"stylemart-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(user.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(user.AuthResult), args.Error(1)
}

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) List(ctx context.Context) ([]address.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddressService) Create(ctx context.Context, input address.AddressInput) (address.Address, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(address.Address), args.Error(1)
}

func (m *MockAddressService) Update(ctx context.Context, id int64, input address.AddressInput) (address.Address, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(address.Address), args.Error(1)
}

func (m *MockAddressService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAddressService) Validate(input address.AddressInput) error {
	return address.Validate(input)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddToCart(ctx context.Context, input cart.AddToCartInput) (cart.CartItem, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(cart.CartItem), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context) (*cart.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	return m.Called(ctx, itemID, quantity).Error(0)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, itemID int64) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockCartService) Invalidate(ctx context.Context, userID uint) {
	m.Called(ctx, userID)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (order.CheckoutResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(order.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) GetUserOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, id int64) (order.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) GetByOrderNumber(ctx context.Context, number string) (order.Order, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id int64, update order.StatusUpdate) (order.Order, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, limit, offset int) ([]order.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) AdminUpdateStatus(ctx context.Context, id int64, update order.StatusUpdate) (order.Order, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, id int64, status string) (order.Order, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(order.Order), args.Error(1)
}

// fakeTokens resolves fixed bearer tokens to claims.
type fakeTokens map[string]*auth.Claims

func (f fakeTokens) Parse(token string) (*auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return c, nil
}
