package notification

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
)

// Config sizes the dispatcher.
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers notifications on a fixed pool of workers reading a
// bounded queue. Delivery failures never reach the caller.
type Dispatcher struct {
	notifier port.Notifier
	queue    chan domain.Notification
	timeout  time.Duration
	workers  int
	failures prometheus.Counter
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher builds a dispatcher; call Start to launch the workers.
// failures may be nil.
func NewDispatcher(notifier port.Notifier, cfg Config, failures prometheus.Counter, log *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		notifier: notifier,
		queue:    make(chan domain.Notification, cfg.QueueSize),
		timeout:  cfg.SendTimeout,
		workers:  cfg.Workers,
		failures: failures,
		logger:   log,
	}
}

// Start launches the workers. It returns immediately.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for n := range d.queue {
				d.deliver(n)
			}
		}()
	}
}

// Enqueue hands n to the workers without blocking. It returns false when the
// queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Enqueue(n domain.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.fail(n, "dispatcher closed", nil)
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		d.fail(n, "notification queue full", nil)
		return false
	}
}

// Shutdown stops accepting work and waits for queued notifications to drain
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

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

func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Send(ctx, n); err != nil {
		d.fail(n, "notification delivery failed", err)
	}
}

func (d *Dispatcher) fail(n domain.Notification, msg string, err error) {
	if d.failures != nil {
		d.failures.Inc()
	}
	fields := []zap.Field{
		zap.String("recipient", logger.MaskEmail(n.Recipient)),
		zap.String("kind", n.Kind),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	d.logger.Warn(msg, fields...)
}

var _ port.NotificationQueue = (*Dispatcher)(nil)
