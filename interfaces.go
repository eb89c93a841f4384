package bootstrap

import "context"

// Factory produces a service instance. It receives the container so it can
// resolve its declared dependencies; calling Get on a name absent from the
// service's dependency list fails with UndeclaredDependencyError.
// A factory is invoked at most once per container lifetime.
type Factory func(ctx context.Context, c *Container) (any, error)

// Shutdowner is the optional teardown hook a service instance may expose.
// Instances without it are silently skipped during container shutdown.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// State is the lifecycle state of a registered service.
type State string

// Service lifecycle states.
const (
	// StateUninitialized means the factory has not run yet.
	StateUninitialized State = "uninitialized"
	// StateInitializing means one initialization attempt is in flight.
	StateInitializing State = "initializing"
	// StateReady means the instance is memoized and shared with all callers.
	StateReady State = "ready"
	// StateFailed means initialization failed; the stored error is returned
	// to every subsequent caller.
	StateFailed State = "failed"
)

// Option configures a service at registration time.
type Option func(*serviceDefinition)

// WithDependencies declares the services that must be ready before this
// service's factory runs.
func WithDependencies(names ...string) Option {
	return func(def *serviceDefinition) {
		def.dependencies = append(def.dependencies, names...)
	}
}

// Lazy excludes the service from InitializeAll sweeps; it is constructed
// only on the first explicit Get.
func Lazy() Option {
	return func(def *serviceDefinition) {
		def.lazy = true
	}
}
