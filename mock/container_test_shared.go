package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	bootstrap "github.com/K-John/createrington-sub002"
)

// ShutdownLog records the order in which fake services were torn down.
// Shared by reference between fakes registered into one container.
type ShutdownLog struct {
	mu    sync.Mutex
	order []string
}

func (l *ShutdownLog) Record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

func (l *ShutdownLog) Order() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.order...)
}

// Service is a fake container-managed instance with a teardown hook.
type Service struct {
	Name        string
	Log         *ShutdownLog
	ShutdownErr error
	shutdowns   atomic.Int32
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.shutdowns.Add(1)
	if s.Log != nil {
		s.Log.Record(s.Name)
	}
	return s.ShutdownErr
}

func (s *Service) Shutdowns() int {
	return int(s.shutdowns.Load())
}

// Plain is a fake instance without a teardown hook; the container must skip
// it silently during shutdown.
type Plain struct {
	Name string
}

// Counter counts factory invocations across concurrent resolutions.
type Counter struct {
	n atomic.Int32
}

func (c *Counter) Inc() {
	c.n.Add(1)
}

func (c *Counter) Count() int {
	return int(c.n.Load())
}

// Factory returns a bootstrap.Factory producing svc, counting invocations in
// counter and sleeping for delay first when non-zero.
func Factory(svc any, counter *Counter, delay time.Duration) bootstrap.Factory {
	return func(ctx context.Context, c *bootstrap.Container) (any, error) {
		if counter != nil {
			counter.Inc()
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		return svc, nil
	}
}

// FailingFactory returns a bootstrap.Factory that always fails with err.
func FailingFactory(err error, counter *Counter) bootstrap.Factory {
	return func(ctx context.Context, c *bootstrap.Container) (any, error) {
		if counter != nil {
			counter.Inc()
		}
		return nil, err
	}
}
