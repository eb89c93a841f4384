package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyName is returned when registering a service without a name.
var ErrEmptyName = errors.New("service name must not be empty")

// DuplicateServiceError represents a second registration under a taken name.
type DuplicateServiceError struct {
	Name string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("service already registered: %s", e.Name)
}

// UnknownServiceError represents a lookup of a name that was never registered.
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service: %s", e.Name)
}

// NilFactoryError represents an attempt to register a nil factory.
type NilFactoryError struct {
	Name string
}

func (e *NilFactoryError) Error() string {
	return fmt.Sprintf("nil factory provided for service: %s", e.Name)
}

// CircularDependencyError carries the full cycle found in the declared
// dependency graph, e.g. ["api", "cache", "db", "api"].
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

// InitializationError represents a factory failure for a named service.
type InitializationError struct {
	Name string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for service %s: %v", e.Name, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// DependencyError represents a service failing because one of its declared
// dependencies failed to initialize; the service's own factory never ran.
type DependencyError struct {
	Name       string
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("service %s: dependency %s failed: %v", e.Name, e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// UndeclaredDependencyError represents a factory resolving a service that is
// not in its own declared dependency list, an edge the cycle detector cannot
// see.
type UndeclaredDependencyError struct {
	Service    string
	Dependency string
}

func (e *UndeclaredDependencyError) Error() string {
	return fmt.Sprintf("service %s resolved undeclared dependency: %s", e.Service, e.Dependency)
}

// TypeMismatchError represents a typed resolution whose instance has a
// different concrete type.
type TypeMismatchError struct {
	Name     string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("service %s: type mismatch: expected %s, got %s", e.Name, e.Expected, e.Got)
}

// ShutdownError represents a service shutdown failure.
type ShutdownError struct {
	Name string
	Err  error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown failed for service %s: %v", e.Name, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}

// ContainerClosedError represents an operation on a container that has
// already been shut down.
type ContainerClosedError struct {
	Op string
}

func (e *ContainerClosedError) Error() string {
	return fmt.Sprintf("container is closed: %s", e.Op)
}
