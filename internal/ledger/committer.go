package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize  = 256
	defaultRetryDelay = 50 * time.Millisecond
	applyTimeout      = 30 * time.Second
	resultRetention   = 10 * time.Minute
)

type Option func(*Committer)

// WithQueueSize задает размер очереди отправленных пачек
func WithQueueSize(n int) Option {
	return func(c *Committer) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithApplyRetries - сколько раз повторять применение при сбое бэкенда (не при конфликте версий)
func WithApplyRetries(n int, baseDelay time.Duration) Option {
	return func(c *Committer) {
		if n >= 0 {
			c.applyRetries = n
		}
		if baseDelay > 0 {
			c.retryDelay = baseDelay
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Committer) {
		c.observer = o
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Committer) {
		c.now = now
	}
}

// Committer реализует Client поверх Store: одна горутина вычитывает очередь
// и применяет пачки строго по порядку отправки.
type Committer struct {
	store    Store
	logger   *logrus.Logger
	observer Observer
	now      func() time.Time

	queueSize    int
	applyRetries int
	retryDelay   time.Duration

	queue   chan submission
	stop    chan struct{}
	stopped chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	pending map[uuid.UUID]*pending
}

type submission struct {
	handle Handle
	entry  Entry
}

type pending struct {
	done       chan struct{}
	receipt    Receipt
	err        error
	resolvedAt time.Time
}

// NewCommitter создает клиент журнала и запускает горутину применения
func NewCommitter(store Store, logger *logrus.Logger, opts ...Option) *Committer {
	c := &Committer{
		store:      store,
		logger:     logger,
		now:        time.Now,
		queueSize:  defaultQueueSize,
		retryDelay: defaultRetryDelay,
		pending:    make(map[uuid.UUID]*pending),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = make(chan submission, c.queueSize)
	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})

	c.wg.Add(1)
	go c.run()
	return c
}

// SubmitAppend ставит пачку в очередь. Отмена ctx влияет только на постановку в очередь:
// принятая пачка будет применена независимо от дальнейшей судьбы вызывающего.
func (c *Committer) SubmitAppend(ctx context.Context, entry Entry) (Handle, error) {
	if err := entry.Validate(); err != nil {
		return Handle{}, err
	}
	entry.Mutations = slices.Clone(entry.Mutations)
	handle := Handle{ID: uuid.New(), SubmittedAt: c.now()}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Handle{}, ErrClosed
	}
	c.prune(handle.SubmittedAt)
	c.pending[handle.ID] = &pending{done: make(chan struct{})}
	c.mu.Unlock()

	select {
	case c.queue <- submission{handle: handle, entry: entry}:
		return handle, nil
	case <-c.stop:
		c.forget(handle.ID)
		return Handle{}, ErrClosed
	case <-ctx.Done():
		c.forget(handle.ID)
		return Handle{}, ctx.Err()
	}
}

// AwaitConfirmation ждет исхода пачки. timeout <= 0 - ждать, пока жив ctx.
// ErrTimeout означает, что исход неизвестен: пачка могла быть применена позже.
func (c *Committer) AwaitConfirmation(ctx context.Context, handle Handle, timeout time.Duration) (Receipt, error) {
	c.mu.Lock()
	p, ok := c.pending[handle.ID]
	c.mu.Unlock()
	if !ok {
		return Receipt{}, ErrUnknownHandle
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-p.done:
		c.forget(handle.ID)
		return p.receipt, p.err
	case <-expired:
		return Receipt{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return Receipt{}, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case <-c.stopped:
		select {
		case <-p.done:
			c.forget(handle.ID)
			return p.receipt, p.err
		default:
			return Receipt{}, ErrClosed
		}
	}
}

func (c *Committer) ReadRecord(ctx context.Context, kind Kind, key string) (*Record, error) {
	return c.store.Read(ctx, kind, key)
}

func (c *Committer) Head(ctx context.Context, kind Kind) (int64, error) {
	return c.store.Head(ctx, kind)
}

// Close останавливает прием пачек, дожидается текущего применения,
// отклоняет оставшиеся в очереди пачки и закрывает бэкенд.
func (c *Committer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	for drained := false; !drained; {
		select {
		case sub := <-c.queue:
			c.resolve(sub.handle, Receipt{}, ErrClosed)
		default:
			drained = true
		}
	}
	close(c.stopped)

	return c.store.Close()
}

func (c *Committer) run() {
	defer c.wg.Done()
	for {
		// остановка важнее очереди: после Close новые пачки не применяются
		select {
		case <-c.stop:
			return
		default:
		}
		select {
		case <-c.stop:
			return
		case sub := <-c.queue:
			c.apply(sub)
		}
	}
}

func (c *Committer) apply(sub submission) {
	log := c.logger.WithFields(logrus.Fields{
		"component": "ledger",
		"handle":    sub.handle.ID,
		"mutations": len(sub.entry.Mutations),
	})
	start := c.now()

	var (
		receipt Receipt
		err     error
	)
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
		receipt, err = c.store.Apply(ctx, sub.handle, sub.entry, c.now().UTC())
		cancel()
		if err == nil || errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrRejected) || attempt >= c.applyRetries {
			break
		}

		delay := c.retryDelay << attempt
		log.WithError(err).Warnf("Failed to apply ledger entry. Retrying in %v. Retries left: %d", delay, c.applyRetries-attempt)
		select {
		case <-time.After(delay):
		case <-c.stop:
			err = fmt.Errorf("%w: %w", ErrClosed, err)
		}
		if errors.Is(err, ErrClosed) {
			break
		}
	}
	if err != nil && !errors.Is(err, ErrVersionConflict) && !errors.Is(err, ErrRejected) {
		err = fmt.Errorf("%w: %w", ErrRejected, err)
	}

	outcome := Outcome(err)
	if c.observer != nil {
		c.observer.ObserveConfirmation(outcome, c.now().Sub(start))
	}
	if err != nil {
		log.WithError(err).WithField("outcome", outcome).Debug("Ledger entry not applied")
	} else {
		log.WithField("seq", receipt.Seq).Debug("Ledger entry confirmed")
	}

	c.resolve(sub.handle, receipt, err)
}

func (c *Committer) resolve(handle Handle, receipt Receipt, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[handle.ID]
	if !ok {
		return
	}
	p.receipt = receipt
	p.err = err
	p.resolvedAt = c.now()
	close(p.done)
}

func (c *Committer) forget(id uuid.UUID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// prune удаляет результаты, которые никто не забрал (вызывающий ушел по таймауту)
func (c *Committer) prune(now time.Time) {
	for id, p := range c.pending {
		if !p.resolvedAt.IsZero() && now.Sub(p.resolvedAt) > resultRetention {
			delete(c.pending, id)
		}
	}
}
