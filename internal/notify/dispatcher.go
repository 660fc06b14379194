package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueClosed = errors.New("notification queue is closed")
	ErrQueueFull   = errors.New("notification queue is full")
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 10 * time.Second

// Config sizes the dispatcher.
type Config struct {
	Workers   int
	QueueSize int
}

// Dispatcher queues messages and delivers them from a fixed pool of worker
// goroutines. Enqueueing never blocks; delivery failures are logged only.
type Dispatcher struct {
	mailer  Mailer
	workers int

	mu     sync.RWMutex
	queue  chan Message
	closed bool

	wg sync.WaitGroup
}

// NewDispatcher creates a stopped dispatcher. Call Start to begin delivery.
func NewDispatcher(mailer Mailer, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Dispatcher{
		mailer:  mailer,
		workers: cfg.Workers,
		queue:   make(chan Message, cfg.QueueSize),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	slog.Info("notification dispatcher started", "workers", d.workers, "queue_cap", cap(d.queue))
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.mailer.Send(ctx, msg); err != nil {
			slog.Error("failed to deliver email", "worker", id, "to", msg.To, "subject", msg.Subject, "error", err)
		}
		cancel()
	}
}

// Enqueue adds msg to the queue without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to drain it or for ctx to
// end, whichever comes first.
func (d *Dispatcher) Stop(ctx context.Context) error {
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
		slog.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotifyWelcome queues the welcome email for a new account.
func (d *Dispatcher) NotifyWelcome(email, name string) {
	d.submit(WelcomeMessage(email, name))
}

// NotifyCancellation queues the goodbye email for a deleted account.
func (d *Dispatcher) NotifyCancellation(email, name string) {
	d.submit(CancellationMessage(email, name))
}

func (d *Dispatcher) submit(msg Message) {
	if err := d.Enqueue(msg); err != nil {
		slog.Warn("email dropped", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
