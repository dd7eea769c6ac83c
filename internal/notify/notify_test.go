package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restaurant-orders/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	mu    sync.Mutex
	err   error
	panic bool
	got   []string
}

func (s *stubNotifier) Notify(_ context.Context, o domain.Order) error {
	if s.panic {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, o.ID)
	return s.err
}

func TestDispatcherDelivers(t *testing.T) {
	n := &stubNotifier{}
	d := NewDispatcher(n, time.Second, nil)

	d.Dispatch(domain.Order{ID: "o1"})
	d.Dispatch(domain.Order{ID: "o2"})
	require.NoError(t, d.Wait(context.Background()))

	assert.ElementsMatch(t, []string{"o1", "o2"}, n.got)
	assert.Equal(t, int64(2), d.Sent())
	assert.Equal(t, int64(0), d.Failures())
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	d := NewDispatcher(&stubNotifier{err: errors.New("telegram down")}, time.Second, nil)
	d.Dispatch(domain.Order{ID: "o1"})
	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, int64(1), d.Failures())

	d = NewDispatcher(&stubNotifier{panic: true}, time.Second, nil)
	d.Dispatch(domain.Order{ID: "o2"})
	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, int64(1), d.Failures())
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(domain.Order{ID: "o1"})
}
