// Package notify delivers order summaries to the operator. Delivery is best effort.
package notify

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"restaurant-orders/internal/domain"
)

// Notifier delivers one confirmed order to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, order domain.Order) error
}

// Dispatcher runs notifications off the caller's path. Failures are logged and counted only.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *log.Logger
	wg       sync.WaitGroup
	failures atomic.Int64
	sent     atomic.Int64
}

func NewDispatcher(n Notifier, timeout time.Duration, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout, logger: logger}
}

// Dispatch hands the order to a background goroutine and returns immediately.
func (d *Dispatcher) Dispatch(order domain.Order) {
	if d == nil || d.notifier == nil {
		return
	}
	order = order.Clone()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.failures.Add(1)
				d.logger.Printf("notify: order_id=%s panic=%v", order.ID, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, order); err != nil {
			d.failures.Add(1)
			d.logger.Printf("notify: order_id=%s error=%v", order.ID, err)
			return
		}
		d.sent.Add(1)
	}()
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Failures() int64 {
	return d.failures.Load()
}

func (d *Dispatcher) Sent() int64 {
	return d.sent.Load()
}
