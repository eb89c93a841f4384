package bootstrap

// The container exposes three observation hooks. They are invoked outside the
// container lock, after the state transition they report is already visible;
// a hook cannot alter container state, cancel, or retry an attempt. Consumers
// wanting retry-on-failure call Get again themselves.

// OnServiceReady subscribes to successful resolutions. The hook fires exactly
// once per service that reaches StateReady, with the service name.
func (c *Container) OnServiceReady(hook func(name string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyHooks = append(c.readyHooks, hook)
}

// OnServiceFailed subscribes to failed resolutions. The hook fires exactly
// once per failed initialization attempt, with the service name and the
// stored error.
func (c *Container) OnServiceFailed(hook func(name string, err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedHooks = append(c.failedHooks, hook)
}

// OnAllReady subscribes to sweep completion. The hook fires once after each
// InitializeAll finishes, regardless of how many services failed.
func (c *Container) OnAllReady(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allReadyHooks = append(c.allReadyHooks, hook)
}
