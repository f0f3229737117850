package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"stylemart-be/internal/outbox"

	"github.com/shopspring/decimal"
)

type fakeProduct struct {
	Name  string
	Image string
	Price decimal.Decimal
	Stock int
}

type fakeCartItem struct {
	ID        int64
	ProductID int64
	Quantity  int
	Size      string
	Color     string
}

type fakeAddress struct {
	OwnerID uint
	Address ShippingAddress
}

type fakeState struct {
	products  map[int64]fakeProduct
	carts     map[uint][]fakeCartItem
	addresses map[int64]fakeAddress
	orders    []Order
	events    []outbox.Event

	nextOrderID int64
	nextItemID  int64
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		products:    make(map[int64]fakeProduct, len(s.products)),
		carts:       make(map[uint][]fakeCartItem, len(s.carts)),
		addresses:   make(map[int64]fakeAddress, len(s.addresses)),
		orders:      make([]Order, len(s.orders)),
		events:      append([]outbox.Event(nil), s.events...),
		nextOrderID: s.nextOrderID,
		nextItemID:  s.nextItemID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]fakeCartItem(nil), v...)
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for i, o := range s.orders {
		o.Items = append([]OrderItem(nil), o.Items...)
		c.orders[i] = o
	}
	return c
}

// fakeRepository keeps everything in memory. WithTx works on a copy of the
// state and only publishes it when fn succeeds.
type fakeRepository struct {
	mu    sync.Mutex
	state *fakeState

	failItemInsert bool
	failSwap       bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{state: &fakeState{
		products:  map[int64]fakeProduct{},
		carts:     map[uint][]fakeCartItem{},
		addresses: map[int64]fakeAddress{},
	}}
}

func (r *fakeRepository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(&fakeTx{repo: r, st: work}); err != nil {
		return err
	}
	r.state = work
	return nil
}

func (r *fakeRepository) find(match func(Order) bool) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.state.orders {
		if match(o) {
			o.Items = append([]OrderItem(nil), o.Items...)
			return o, nil
		}
	}
	return Order{}, ErrOrderNotFound
}

func (r *fakeRepository) GetByID(ctx context.Context, id int64) (Order, error) {
	return r.find(func(o Order) bool { return o.ID == id })
}

func (r *fakeRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error) {
	return r.find(func(o Order) bool { return o.OrderNumber == orderNumber })
}

func (r *fakeRepository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (Order, error) {
	return r.find(func(o Order) bool {
		return o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key
	})
}

func (r *fakeRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	all, _ := r.ListAll(ctx, 1<<30, 0)
	out := []Order{}
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, len(r.state.orders))
	copy(out, r.state.orders)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset >= len(out) {
		return []Order{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// cartSize and stock read committed state.
func (r *fakeRepository) cartSize(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.carts[userID])
}

func (r *fakeRepository) stock(productID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.products[productID].Stock
}

func (r *fakeRepository) orderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.orders)
}

func (r *fakeRepository) events() []outbox.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outbox.Event(nil), r.state.events...)
}

type fakeTx struct {
	repo *fakeRepository
	st   *fakeState
}

func (t *fakeTx) LockCart(ctx context.Context, userID uint) ([]CheckoutLine, error) {
	var lines []CheckoutLine
	for _, ci := range t.st.carts[userID] {
		p := t.st.products[ci.ProductID]
		lines = append(lines, CheckoutLine{
			CartItemID:   ci.ID,
			ProductID:    ci.ProductID,
			ProductName:  p.Name,
			ProductImage: p.Image,
			Price:        p.Price,
			Quantity:     ci.Quantity,
			Size:         ci.Size,
			Color:        ci.Color,
		})
	}
	return lines, nil
}

func (t *fakeTx) GetShippingAddress(ctx context.Context, addressID int64) (uint, ShippingAddress, error) {
	a, ok := t.st.addresses[addressID]
	if !ok {
		return 0, ShippingAddress{}, errAddressNotFound
	}
	return a.OwnerID, a.Address, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, o *Order) error {
	for _, existing := range t.st.orders {
		if existing.OrderNumber == o.OrderNumber {
			return errOrderNumberTaken
		}
		if o.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			existing.UserID == o.UserID && *existing.IdempotencyKey == *o.IdempotencyKey {
			return errDuplicateIdempotent
		}
	}
	t.st.nextOrderID++
	o.ID = t.st.nextOrderID
	stored := *o
	stored.Items = nil
	t.st.orders = append(t.st.orders, stored)
	return nil
}

func (t *fakeTx) InsertOrderItem(ctx context.Context, it *OrderItem) error {
	if t.repo.failItemInsert {
		return assertErr("item insert failed")
	}
	t.st.nextItemID++
	it.ID = t.st.nextItemID
	for i := range t.st.orders {
		if t.st.orders[i].ID == it.OrderID {
			t.st.orders[i].Items = append(t.st.orders[i].Items, *it)
			return nil
		}
	}
	return ErrOrderNotFound
}

func (t *fakeTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	p, ok := t.st.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.st.products[productID] = p
	return true, nil
}

func (t *fakeTx) ClearCart(ctx context.Context, userID uint) (int64, error) {
	n := int64(len(t.st.carts[userID]))
	delete(t.st.carts, userID)
	return n, nil
}

func (t *fakeTx) GetForUpdate(ctx context.Context, id int64) (Order, error) {
	for _, o := range t.st.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrOrderNotFound
}

func (t *fakeTx) UpdateStatus(ctx context.Context, o *Order, prev Status) (bool, error) {
	if t.repo.failSwap {
		return false, nil
	}
	for i := range t.st.orders {
		cur := &t.st.orders[i]
		if cur.ID != o.ID {
			continue
		}
		if cur.Status != prev {
			return false, nil
		}
		cur.Status = o.Status
		cur.ShippedAt = o.ShippedAt
		cur.DeliveredAt = o.DeliveredAt
		cur.TrackingNumber = o.TrackingNumber
		cur.CourierName = o.CourierName
		cur.UpdatedAt = o.UpdatedAt
		return true, nil
	}
	return false, nil
}

func (t *fakeTx) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus, at time.Time) error {
	for i := range t.st.orders {
		if t.st.orders[i].ID == id {
			t.st.orders[i].PaymentStatus = status
			t.st.orders[i].UpdatedAt = at
			return nil
		}
	}
	return ErrOrderNotFound
}

func (t *fakeTx) InsertEvent(ctx context.Context, e outbox.Event) error {
	t.st.events = append(t.st.events, e)
	return nil
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
