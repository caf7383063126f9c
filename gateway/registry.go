package gateway

import (
	"fmt"
	"strings"
	"sync"
)

// Builder constructs a gateway from setup arguments. Builders that take no
// configuration simply ignore surplus arguments.
type Builder func(args ...any) (Gateway, error)

// Registry maps adapter identifiers to gateway builders. It is populated
// by adapter packages at load time and read-only thereafter; there is no
// teardown within a process run.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register registers a builder under an adapter identifier.
func (r *Registry) Register(adapter string, b Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter == "" || b == nil {
		return fmt.Errorf("%w: empty adapter or nil builder", ErrInvalidSetup)
	}
	if _, exists := r.builders[adapter]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, adapter)
	}
	r.builders[adapter] = b
	return nil
}

// Lookup resolves an adapter identifier to its builder.
func (r *Registry) Lookup(adapter string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.builders[adapter]
	return b, exists
}

// Adapters returns the registered adapter identifiers in unspecified
// order.
func (r *Registry) Adapters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// Setup resolves its target into a configured gateway:
//
//   - a Gateway instance is returned unchanged; passing extra args with it
//     is ambiguous and fails with ErrInvalidSetup
//   - an adapter identifier is resolved against the registry and its
//     builder invoked with args; unknown identifiers fail with
//     ErrAdapterLoad
//   - a connection URL resolves its adapter from the URL scheme, and the
//     whole URL is prepended to the builder's args; a scheme-less URL fails
//     with ErrRawURL, no scheme inference is attempted
func (r *Registry) Setup(target any, args ...any) (Gateway, error) {
	switch t := target.(type) {
	case Gateway:
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: gateway instance given together with %d constructor args", ErrInvalidSetup, len(args))
		}
		return t, nil

	case string:
		adapter := t
		setupArgs := args
		if i := strings.Index(t, "://"); i >= 0 {
			if i == 0 {
				return nil, fmt.Errorf("%w: %q", ErrRawURL, t)
			}
			adapter = t[:i]
			setupArgs = append([]any{t}, args...)
		}
		b, ok := r.Lookup(adapter)
		if !ok {
			return nil, fmt.Errorf("%w: %q (is the adapter package imported?)", ErrAdapterLoad, adapter)
		}
		return b(setupArgs...)

	default:
		return nil, fmt.Errorf("%w: unsupported setup target %T", ErrInvalidSetup, target)
	}
}

// defaultRegistry is the process-wide registry adapter packages register
// into from their init functions.
var defaultRegistry = NewRegistry()

// Register registers an adapter builder on the process-wide registry. It
// panics on duplicate or invalid registration, mirroring database/sql
// driver registration: both are programmer errors at load time.
func Register(adapter string, b Builder) {
	if err := defaultRegistry.Register(adapter, b); err != nil {
		panic(fmt.Sprintf("gateway: %v", err))
	}
}

// Setup resolves a gateway against the process-wide registry.
func Setup(target any, args ...any) (Gateway, error) {
	return defaultRegistry.Setup(target, args...)
}

// Adapters returns the adapter identifiers registered process-wide.
func Adapters() []string {
	return defaultRegistry.Adapters()
}
