package nasc

import (
	"fmt"
	"reflect"
)

// ServiceProvider encapsulates a related group of registrations so a
// host can compose its container from reusable modules instead of one
// long Configure block.
//
// Example:
//
//	type LoggingProvider struct{}
//
//	func (p *LoggingProvider) Register(scope *nasc.Scope) error {
//	    scope.Configure(func(r *nasc.Registrar) {
//	        r.Export((*Logger)(nil), NewConsoleLogger, nasc.WithLifestyle(registry.Singleton))
//	    })
//	    return nil
//	}
type ServiceProvider interface {
	Register(scope *Scope) error
}

// BootableProvider is an optional interface for providers needing a
// boot phase that runs after every provider has registered — so a
// database provider can open its connection only once every other
// provider has had a chance to export its dependencies.
type BootableProvider interface {
	ServiceProvider
	Boot(scope *Scope) error
}

// DeferredProvider is an optional interface for providers that should
// only register themselves conditionally.
type DeferredProvider interface {
	ServiceProvider
	ShouldRegister(scope *Scope) bool
}

type providerEntry struct {
	provider ServiceProvider
	booted   bool
}

// RegisterProvider runs provider's Register method against the root
// scope's container, immediately. Registering the same provider type
// twice is a no-op. If the provider implements BootableProvider, its
// Boot method runs later, when BootProviders is called.
func (s *Scope) RegisterProvider(provider ServiceProvider) error {
	if provider == nil {
		return fmt.Errorf("nasc: provider cannot be nil")
	}
	root := s.root

	if deferred, ok := provider.(DeferredProvider); ok {
		if !deferred.ShouldRegister(root) {
			return nil
		}
	}

	providerType := reflect.TypeOf(provider)
	root.providersMu.Lock()
	for _, entry := range root.providers {
		if reflect.TypeOf(entry.provider) == providerType {
			root.providersMu.Unlock()
			return nil
		}
	}
	root.providersMu.Unlock()

	if err := provider.Register(root); err != nil {
		return fmt.Errorf("nasc: provider registration failed: %w", err)
	}

	root.providersMu.Lock()
	root.providers = append(root.providers, &providerEntry{provider: provider})
	root.providersMu.Unlock()
	return nil
}

// BootProviders calls Boot on every registered provider that implements
// BootableProvider and hasn't already been booted. Call it once every
// RegisterProvider call has run.
func (s *Scope) BootProviders() error {
	root := s.root
	root.providersMu.Lock()
	entries := append([]*providerEntry(nil), root.providers...)
	root.providersMu.Unlock()

	for _, entry := range entries {
		if entry.booted {
			continue
		}
		bootable, ok := entry.provider.(BootableProvider)
		if !ok {
			continue
		}
		if err := bootable.Boot(root); err != nil {
			return fmt.Errorf("nasc: provider boot failed: %w", err)
		}
		entry.booted = true
	}
	return nil
}

// GetProviders returns every provider registered so far, for debugging
// and introspection.
func (s *Scope) GetProviders() []ServiceProvider {
	root := s.root
	root.providersMu.Lock()
	defer root.providersMu.Unlock()
	providers := make([]ServiceProvider, len(root.providers))
	for i, entry := range root.providers {
		providers[i] = entry.provider
	}
	return providers
}
