package service

import "github.com/ethicbank/portal-api/internal/registry"

// LookupConfigured returns the registry service name as T. A nil registry,
// an unknown name, a service that is not configured or one that does not
// implement T all yield an *UnavailableError.
func LookupConfigured[T any](reg *registry.Registry, name string) (T, error) {
	var zero T
	if reg == nil {
		return zero, &UnavailableError{Name: name}
	}
	svc, ok := reg.Get(name)
	if !ok || !svc.IsConfigured() {
		return zero, &UnavailableError{Name: name}
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, &UnavailableError{Name: name}
	}
	return typed, nil
}
