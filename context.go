package clusterclient

import (
	"context"
	"sync"

	"clusterhttp/storage"
)

// Parameters is an open bag of request-scoped values that travels beside
// the Request through the whole pipeline. Pipeline modules, weight
// modifiers, and selectors read and write it by string key instead of by
// a fixed struct, so a new concern never needs a signature change here.
type Parameters struct {
	mu     sync.Mutex
	values map[string]any
}

// NewParameters returns an empty Parameters bag.
func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]any)}
}

// Get returns the value stored under key, if any.
func (p *Parameters) Get(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok
}

// Set installs value under key, overwriting any previous value.
func (p *Parameters) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// RequestContext is the per-logical-request state threaded through
// ordering, sending, and the pipeline: the standard context.Context for
// cancellation, the time budget, the Parameters bag, and the storage
// registry weight modifiers use to keep per-replica state between calls.
type RequestContext struct {
	Context  context.Context
	Budget   TimeBudget
	Params   *Parameters
	Replicas []Replica
	// ID correlates the log lines this logical request produces; spans
	// and metrics do not carry it. Stamped once by the Logging module,
	// which is the only stage that knows the request has truly begun.
	ID       string
	registry *storageRegistry

	// rawResults is how the Execution module hands its pass's
	// ReplicaResults to the innermost ResultFinalization module, since
	// NextFunc's signature has no room for it.
	rawResults []ReplicaResult
}

// newRequestContext builds a RequestContext for one logical request.
// registry is shared across requests (it lives on the Client), so
// per-replica state accumulated by weight modifiers persists across calls.
func newRequestContext(ctx context.Context, budget TimeBudget, replicas []Replica, registry *storageRegistry) *RequestContext {
	return &RequestContext{
		Context:  ctx,
		Budget:   budget,
		Params:   NewParameters(),
		Replicas: replicas,
		registry: registry,
	}
}

// withContext returns a shallow copy of rc with its Context replaced,
// used by the parallel and forking strategies to give each sibling
// attempt its own cancellation scope while sharing the same budget,
// params, and storage registry.
func (rc *RequestContext) withContext(ctx context.Context) *RequestContext {
	c := *rc
	c.Context = ctx
	return &c
}

// storageRegistry holds one storage.Map per named scope, lazily created on
// first use. Each WeightModifier gets its own named scope so independent
// modifiers never collide on the same replica-keyed state.
type storageRegistry struct {
	mu     sync.Mutex
	scopes map[string]any
}

func newStorageRegistry() *storageRegistry {
	return &storageRegistry{scopes: make(map[string]any)}
}

// obtainStorage returns the storage.Map[Replica, V] registered under name,
// creating it on first use. Every caller for a given name must agree on V;
// mixing V for the same name panics, which only happens from a
// programming error inside this package since names are internal constants.
func obtainStorage[V comparable](r *storageRegistry, name string) *storage.Map[Replica, V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.scopes[name]; ok {
		m, ok := existing.(*storage.Map[Replica, V])
		if !ok {
			panic("clusterhttp: storage scope " + name + " reused with a different value type")
		}
		return m
	}
	m := storage.New[Replica, V]()
	r.scopes[name] = m
	return m
}
