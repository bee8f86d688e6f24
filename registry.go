package serialport

import (
	"sort"
	"sync"
)

// Registry owns the one-connection-per-port invariant: it hands out at most
// one Port per port name, process-wide when the DefaultRegistry is used.
// Entries are inserted on first open and never evicted; closing a Port
// leaves it registered so a later Open reuses and reconfigures the same
// instance. A zero Registry is not usable; call NewRegistry.
type Registry struct {
	mu     sync.Mutex
	ports  map[string]*Port
	opener deviceOpener
}

// NewRegistry returns an empty registry. Separate registries are fully
// isolated, which is the intended seam for tests; production code normally
// uses the package-level Open and DefaultRegistry.
func NewRegistry() *Registry {
	return &Registry{
		ports:  make(map[string]*Port),
		opener: openSystemDevice,
	}
}

// DefaultRegistry is the process-wide registry used by Open.
var DefaultRegistry = NewRegistry()

// Open returns the connection for the named port, creating and registering
// it on first use. Opening a name whose connection is already live fails
// with ErrAlreadyOpen. Opening a name that was closed reconfigures the
// cached instance with the given options and reopens it. With
// WithDeferredOpen the instance is registered and configured but the device
// handle is not acquired; call Port.Open to connect.
func (r *Registry) Open(name string, opts ...Option) (*Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	p, ok := r.ports[name]
	if !ok {
		p = newPort(name, config, r.opener)
		r.ports[name] = p
	}
	r.mu.Unlock()

	if ok {
		if err := p.reconfigure(config); err != nil {
			return nil, err
		}
	}

	if config.deferOpen {
		return p, nil
	}
	if err := p.Open(); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the registered connection for name, if any
func (r *Registry) Get(name string) (*Port, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.ports[name]
	return p, ok
}

// Names returns the registered port names in sorted order
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.ports))
	for name := range r.ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens the named port through the DefaultRegistry. See Registry.Open
// for the open, reuse and deferred-open semantics.
func Open(name string, opts ...Option) (*Port, error) {
	return DefaultRegistry.Open(name, opts...)
}
