package repositories

import (
	"context"
	"sync"
	"time"

	"mixmodas/internal/models"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// queuePerWorker sizes the backlog of pending mirror tasks per worker.
const queuePerWorker = 256

type mirrorTask struct {
	op     string
	target string
	fn     func(ctx context.Context) error
}

// Mirror runs best-effort copies of primary writes on a bounded worker pool.
// A mirror task never blocks the caller, is never retried, and its failure is
// only logged. Bursts wait in a bounded queue; a task is dropped only when
// that queue is full.
type Mirror struct {
	pool    *ants.Pool
	timeout time.Duration
	queue   chan mirrorTask
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewMirror creates a mirror with the given number of workers.
func NewMirror(workers int, timeout time.Duration) (*Mirror, error) {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	m := &Mirror{
		pool:    pool,
		timeout: timeout,
		queue:   make(chan mirrorTask, workers*queuePerWorker),
		done:    make(chan struct{}),
	}
	go m.dispatch()
	return m, nil
}

// Submit queues op against target. The request context is not used: the
// primary response has usually been sent by the time op runs.
func (m *Mirror) Submit(op, target string, fn func(ctx context.Context) error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		zap.L().Warn("mirror released, dropping write", zap.String("op", op), zap.String("target", target))
		return
	}
	select {
	case m.queue <- mirrorTask{op: op, target: target, fn: fn}:
	default:
		zap.L().Warn("mirror queue full, dropping write",
			zap.String("op", op), zap.String("target", target), zap.Int("queued", len(m.queue)))
	}
}

// dispatch hands queued tasks to the pool, waiting for a free worker.
func (m *Mirror) dispatch() {
	defer close(m.done)
	for task := range m.queue {
		task := task
		if err := m.pool.Submit(func() { m.run(task) }); err != nil {
			zap.L().Warn("mirror submit failed", zap.String("op", task.op), zap.String("target", task.target), zap.Error(err))
		}
	}
}

func (m *Mirror) run(task mirrorTask) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := task.fn(ctx); err != nil {
		zap.L().Warn("mirror write failed",
			zap.String("op", task.op),
			zap.String("target", task.target),
			zap.Error(err),
		)
		return
	}
	zap.L().Debug("mirror write done", zap.String("op", task.op), zap.String("target", task.target))
}

// Release stops accepting tasks, waits up to timeout for queued and in-flight
// ones, and stops the pool.
func (m *Mirror) Release(timeout time.Duration) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	deadline := time.Now().Add(timeout)
	select {
	case <-m.done:
	case <-time.After(timeout):
		zap.L().Warn("mirror queue not drained before release", zap.Int("queued", len(m.queue)))
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	if err := m.pool.ReleaseTimeout(remaining); err != nil {
		zap.L().Warn("mirror pool release timed out", zap.Int("running", m.pool.Running()), zap.Error(err))
	}
}

// NamedProductMirror labels a mirror target for logging.
type NamedProductMirror struct {
	Name   string
	Target ProductMirror
}

// MirroredProductRepository writes to the authoritative primary repository and
// copies successful writes to each target.
type MirroredProductRepository struct {
	ProductRepository
	mirror  *Mirror
	targets []NamedProductMirror
}

// NewMirroredProductRepository decorates primary with mirror writes.
func NewMirroredProductRepository(primary ProductRepository, mirror *Mirror, targets ...NamedProductMirror) *MirroredProductRepository {
	return &MirroredProductRepository{
		ProductRepository: primary,
		mirror:            mirror,
		targets:           targets,
	}
}

// Create writes to the primary and mirrors the stored record.
func (r *MirroredProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	r.put("create", product)
	return nil
}

// Update writes to the primary and mirrors the stored record.
func (r *MirroredProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.put("update", product)
	return nil
}

// Delete removes from the primary and then from each target.
func (r *MirroredProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	for _, t := range r.targets {
		target := t.Target
		r.mirror.Submit("delete", t.Name, func(ctx context.Context) error {
			return target.RemoveProduct(ctx, id)
		})
	}
	return nil
}

func (r *MirroredProductRepository) put(op string, product *models.Product) {
	snapshot := *product
	for _, t := range r.targets {
		target := t.Target
		r.mirror.Submit(op, t.Name, func(ctx context.Context) error {
			p := snapshot
			return target.PutProduct(ctx, &p)
		})
	}
}

// MirroredUserRepository writes users to the primary and copies them, without
// password hashes, to a secondary.
type MirroredUserRepository struct {
	UserRepository
	mirror *Mirror
	name   string
	target UserMirror
}

// NewMirroredUserRepository decorates primary with mirror writes to target.
func NewMirroredUserRepository(primary UserRepository, mirror *Mirror, name string, target UserMirror) *MirroredUserRepository {
	return &MirroredUserRepository{
		UserRepository: primary,
		mirror:         mirror,
		name:           name,
		target:         target,
	}
}

// Create writes to the primary and mirrors the user.
func (r *MirroredUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	r.put("create", user)
	return nil
}

// Update writes to the primary and mirrors the user.
func (r *MirroredUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.UserRepository.Update(ctx, user); err != nil {
		return err
	}
	r.put("update", user)
	return nil
}

func (r *MirroredUserRepository) put(op string, user *models.User) {
	snapshot := *user
	snapshot.PasswordHash = ""
	r.mirror.Submit(op, r.name, func(ctx context.Context) error {
		u := snapshot
		return r.target.PutUser(ctx, &u)
	})
}
