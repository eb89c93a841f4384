// Package bootstrap provides the service registry and lifecycle container
// that wires together the platform's independently-initializing subsystems
// (database pool, bot clients, websocket gateway, caches, schedulers).
//
// Services are registered by name with a factory and a declared list of
// dependency names. Resolution is asynchronous and memoized: concurrent
// requests for the same service share a single factory invocation, declared
// dependencies are fully ready before a dependent's factory runs, and the
// declared graph is checked for cycles before any work starts.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
)

// serviceDefinition is one registry entry. All fields after the registration
// block are guarded by the container mutex.
type serviceDefinition struct {
	name         string
	factory      Factory
	dependencies []string
	lazy         bool

	state    State
	instance any
	err      error
	done     chan struct{} // non-nil only while state is StateInitializing
}

// Container is the process-wide registry of named, asynchronously-constructed
// singletons. Construct one per process lifetime with New; a container that
// has been shut down is terminally closed and cannot be reused.
type Container struct {
	mu       sync.Mutex
	services map[string]*serviceDefinition
	order    []string // registration order, drives shutdown ordering
	closed   bool
	log      *slog.Logger

	readyHooks    []func(name string)
	failedHooks   []func(name string, err error)
	allReadyHooks []func()
}

// ContainerOption configures a Container at construction time.
type ContainerOption func(*Container)

// WithLogger sets the structured logger the container reports lifecycle
// transitions to. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.log = log
	}
}

// New creates an empty container.
func New(opts ...ContainerOption) *Container {
	c := &Container{
		services: make(map[string]*serviceDefinition, 16),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register declares a service under a unique name. No factory code runs until
// the service is first resolved via Get or swept by InitializeAll.
// Returns DuplicateServiceError if the name is already taken, which is a
// programmer error and should abort registration-phase startup.
func (c *Container) Register(name string, factory Factory, opts ...Option) error {
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return &NilFactoryError{Name: name}
	}

	def := &serviceDefinition{
		name:    name,
		factory: factory,
		state:   StateUninitialized,
	}
	for _, opt := range opts {
		opt(def)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &ContainerClosedError{Op: "register"}
	}
	if _, exists := c.services[name]; exists {
		return &DuplicateServiceError{Name: name}
	}

	c.services[name] = def
	c.order = append(c.order, name)
	return nil
}

// factoryGuardKey marks a context as belonging to a running factory so that
// re-entrant Get calls can be checked against the declared dependency list.
type factoryGuardKey struct{}

// Get resolves a service by name, initializing it on first request.
//
// A READY service returns its memoized instance immediately. While a service
// is INITIALIZING every concurrent caller waits on the same in-flight attempt
// and observes the identical outcome. A FAILED service returns its stored
// error on every subsequent call without re-running the factory.
//
// The context cancels only this caller's wait; an initialization already in
// flight keeps running. The container has no intrinsic factory timeout; a
// hung factory hangs resolution of the service and of everything that
// depends on it.
func (c *Container) Get(ctx context.Context, name string) (any, error) {
	if guard, ok := ctx.Value(factoryGuardKey{}).(*serviceDefinition); ok && guard != nil {
		if !containsName(guard.dependencies, name) {
			return nil, &UndeclaredDependencyError{Service: guard.name, Dependency: name}
		}
	}

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, &ContainerClosedError{Op: "get"}
		}
		def, ok := c.services[name]
		if !ok {
			c.mu.Unlock()
			return nil, &UnknownServiceError{Name: name}
		}

		switch def.state {
		case StateReady:
			instance := def.instance
			c.mu.Unlock()
			return instance, nil

		case StateFailed:
			err := def.err
			c.mu.Unlock()
			return nil, err

		case StateInitializing:
			done := def.done
			c.mu.Unlock()
			select {
			case <-done:
				// Settled; loop to observe the outcome.
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		case StateUninitialized:
			if err := c.checkCycleLocked(name, []string{name}); err != nil {
				// A declared cycle can never resolve, so the member is
				// marked failed rather than left uninitialized.
				def.state = StateFailed
				def.err = err
				failedHooks := append([]func(string, error){}, c.failedHooks...)
				c.mu.Unlock()
				c.log.Error("service failed", "service", name, "error", err)
				for _, hook := range failedHooks {
					hook(name, err)
				}
				return nil, err
			}
			def.state = StateInitializing
			def.done = make(chan struct{})
			c.mu.Unlock()
			// The attempt's lifetime is independent of the caller that
			// triggered it; cancelling ctx abandons only the wait above.
			go c.initialize(context.WithoutCancel(ctx), def)
		}
	}
}

// Resolve resolves a service and asserts it to T.
// Returns TypeMismatchError if the instance is not a T.
func Resolve[T any](ctx context.Context, c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Name:     name,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Got:      reflect.TypeOf(instance).String(),
		}
	}
	return typed, nil
}

// initialize runs the single initialization attempt for def. The caller has
// already transitioned def to StateInitializing and created its done channel;
// ctx carries no caller-local cancellation.
func (c *Container) initialize(ctx context.Context, def *serviceDefinition) {
	err := c.resolveDependencies(ctx, def)

	var instance any
	if err == nil {
		factoryCtx := context.WithValue(ctx, factoryGuardKey{}, def)
		instance, err = def.factory(factoryCtx, c)
		if err != nil {
			err = &InitializationError{Name: def.name, Err: err}
		}
	}

	c.mu.Lock()
	done := def.done
	def.done = nil
	if err != nil {
		def.state = StateFailed
		def.err = err
	} else {
		def.state = StateReady
		def.instance = instance
	}
	readyHooks := append([]func(string){}, c.readyHooks...)
	failedHooks := append([]func(string, error){}, c.failedHooks...)
	c.mu.Unlock()

	close(done)

	if err != nil {
		c.log.Error("service failed", "service", def.name, "error", err)
		for _, hook := range failedHooks {
			hook(def.name, err)
		}
		return
	}

	c.log.Info("service ready", "service", def.name)
	for _, hook := range readyHooks {
		hook(def.name)
	}
}

// resolveDependencies fans out concurrent Get calls for every declared
// dependency and waits for all of them to settle. The first failure is
// wrapped in a DependencyError; the dependent's own factory never runs.
func (c *Container) resolveDependencies(ctx context.Context, def *serviceDefinition) error {
	if len(def.dependencies) == 0 {
		return nil
	}

	// Clear any factory guard so nested resolution is checked against the
	// service being resolved, not an outer factory.
	depCtx := context.WithValue(ctx, factoryGuardKey{}, (*serviceDefinition)(nil))

	var wg sync.WaitGroup
	results := make([]error, len(def.dependencies))
	for i, dep := range def.dependencies {
		wg.Add(1)
		go func(i int, dep string) {
			defer wg.Done()
			_, results[i] = c.Get(depCtx, dep)
		}(i, dep)
	}
	wg.Wait()

	for i, depErr := range results {
		if depErr != nil {
			return &DependencyError{
				Name:       def.name,
				Dependency: def.dependencies[i],
				Err:        depErr,
			}
		}
	}
	return nil
}

// checkCycleLocked walks the declared dependency graph depth-first, carrying
// the current ancestry path. The path is re-seeded per branch so two services
// sharing a common dependency are not reported as a cycle.
func (c *Container) checkCycleLocked(name string, path []string) error {
	def, ok := c.services[name]
	if !ok {
		// Unknown names surface as UnknownServiceError during resolution.
		return nil
	}
	for _, dep := range def.dependencies {
		for _, ancestor := range path {
			if ancestor == dep {
				cycle := append(append([]string{}, path...), dep)
				return &CircularDependencyError{Path: cycle}
			}
		}
		if err := c.checkCycleLocked(dep, append(path, dep)); err != nil {
			return err
		}
	}
	return nil
}

// InitializeAll resolves every non-lazy service concurrently and waits for
// all attempts to settle. Partial failure is tolerated: one broken service
// does not block the others, and no error is returned; callers inspect
// per-service state via States. After it returns, every non-lazy service is
// READY or FAILED. Cancelling ctx abandons the remaining waits only; the
// underlying attempts keep running and settle in the background.
func (c *Container) InitializeAll(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	names := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if !c.services[name].lazy {
			names = append(names, name)
		}
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	results := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, results[i] = c.Get(ctx, name)
		}(i, name)
	}
	wg.Wait()

	ready, failed := 0, 0
	for _, err := range results {
		if err != nil {
			failed++
		} else {
			ready++
		}
	}

	c.mu.Lock()
	hooks := append([]func(){}, c.allReadyHooks...)
	c.mu.Unlock()

	c.log.Info("service sweep complete", "ready", ready, "failed", failed)
	for _, hook := range hooks {
		hook()
	}
}

// Shutdown tears down every service currently holding a live instance that
// implements Shutdowner, in reverse registration order (last registered
// first). In-flight initialization attempts are drained first, bounded by
// ctx, so instances that settle during the drain are torn down too. A
// failing shutdown hook is recorded and the sweep continues; the collected
// failures are returned joined. The registry is cleared and the container is
// terminally closed: subsequent Register and Get calls fail.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	var inflight []chan struct{}
	for _, def := range c.services {
		if def.state == StateInitializing {
			inflight = append(inflight, def.done)
		}
	}
	c.mu.Unlock()

	for _, done := range inflight {
		select {
		case <-done:
		case <-ctx.Done():
			// Give up on the drain; anything settling later is abandoned.
		}
	}

	c.mu.Lock()
	type target struct {
		name     string
		instance Shutdowner
	}
	targets := make([]target, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		def := c.services[c.order[i]]
		if def.state != StateReady {
			continue
		}
		if s, ok := def.instance.(Shutdowner); ok {
			targets = append(targets, target{name: def.name, instance: s})
		}
	}
	c.services = make(map[string]*serviceDefinition)
	c.order = nil
	c.mu.Unlock()

	var errs []error
	for _, t := range targets {
		if err := t.instance.Shutdown(ctx); err != nil {
			c.log.Error("service shutdown failed", "service", t.name, "error", err)
			errs = append(errs, &ShutdownError{Name: t.name, Err: err})
			continue
		}
		c.log.Info("service stopped", "service", t.name)
	}
	return errors.Join(errs...)
}

// State reports the lifecycle state of a registered service.
// The second return is false if the name is not registered.
func (c *Container) State(name string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	def, ok := c.services[name]
	if !ok {
		return "", false
	}
	return def.state, true
}

// States returns a snapshot of every registered service's state.
func (c *Container) States() map[string]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := make(map[string]State, len(c.services))
	for name, def := range c.services {
		states[name] = def.state
	}
	return states
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
