package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockStore) MarkSent(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type fakePublisher struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	failOn string
	closed bool
}

func (f *fakePublisher) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		if string(m.Key) == f.failOn {
			return errors.New("broker unavailable")
		}
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func (f *fakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type resultCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *resultCounter) ObserveOutbox(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[result]++
}

func records() []Record {
	return []Record{
		{ID: 1, EventID: "e-1", Topic: "order-events", Key: "10", EventType: EventOrderCreated, Payload: []byte(`{}`)},
		{ID: 2, EventID: "e-2", Topic: "order-events", Key: "11", EventType: EventOrderCreated, Payload: []byte(`{}`)},
		{ID: 3, EventID: "e-3", Topic: "order-events", Key: "10", EventType: EventOrderStatusChanged, Payload: []byte(`{}`)},
	}
}

func TestRelay_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Publishes and marks all", func(t *testing.T) {
		store := new(MockStore)
		pub := &fakePublisher{}
		obs := &resultCounter{counts: map[string]int{}}
		relay := NewRelay(store, pub, time.Second, obs)

		store.On("FetchPending", ctx, defaultBatchSize).Return(records(), nil)
		store.On("MarkSent", ctx, int64(1)).Return(nil)
		store.On("MarkSent", ctx, int64(2)).Return(nil)
		store.On("MarkSent", ctx, int64(3)).Return(nil)

		sent, err := relay.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, sent)
		require.Len(t, pub.msgs, 3)
		assert.Equal(t, "order-events", pub.msgs[0].Topic)
		assert.Equal(t, "event_type", pub.msgs[2].Headers[0].Key)
		assert.Equal(t, EventOrderStatusChanged, string(pub.msgs[2].Headers[0].Value))
		assert.Equal(t, 3, obs.counts["sent"])
		store.AssertExpectations(t)
	})

	t.Run("Stops at first publish failure", func(t *testing.T) {
		store := new(MockStore)
		pub := &fakePublisher{failOn: "11"}
		relay := NewRelay(store, pub, time.Second, nil)

		store.On("FetchPending", ctx, defaultBatchSize).Return(records(), nil)
		store.On("MarkSent", ctx, int64(1)).Return(nil)

		sent, err := relay.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		store.AssertNotCalled(t, "MarkSent", ctx, int64(2))
		store.AssertNotCalled(t, "MarkSent", ctx, int64(3))
	})

	t.Run("Fetch error", func(t *testing.T) {
		store := new(MockStore)
		relay := NewRelay(store, &fakePublisher{}, time.Second, nil)
		store.On("FetchPending", ctx, defaultBatchSize).Return(nil, errors.New("db down"))

		_, err := relay.ProcessBatch(ctx)
		assert.EqualError(t, err, "db down")
	})

	t.Run("Mark error", func(t *testing.T) {
		store := new(MockStore)
		relay := NewRelay(store, &fakePublisher{}, time.Second, nil)
		store.On("FetchPending", ctx, defaultBatchSize).Return(records()[:1], nil)
		store.On("MarkSent", ctx, int64(1)).Return(errors.New("db down"))

		sent, err := relay.ProcessBatch(ctx)
		assert.EqualError(t, err, "db down")
		assert.Equal(t, 0, sent)
	})
}

func TestRelay_Run(t *testing.T) {
	store := new(MockStore)
	pub := &fakePublisher{}
	relay := NewRelay(store, pub, 10*time.Millisecond, nil)
	store.On("FetchPending", mock.Anything, defaultBatchSize).Return([]Record{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.True(t, pub.closed)
	store.AssertCalled(t, "FetchPending", mock.Anything, defaultBatchSize)
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"})
	assert.Empty(t, w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
