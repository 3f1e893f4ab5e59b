package clusterclient

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"clusterhttp/logging"
	"clusterhttp/metrics"
	"clusterhttp/throttle"
)

// ThrottleConfig tunes the adaptive client-side throttle. A nil
// *ThrottleConfig on Config disables throttling entirely.
type ThrottleConfig struct {
	MinimumRequests         int
	MinimumRatio            float64
	RejectionProbabilityCap float64
}

// LoggingConfig tunes the structured logger the pipeline's Logging module
// uses. The zero value disables logging (logging.Noop).
type LoggingConfig struct {
	Level   logging.Level
	Enabled bool
}

// Config is everything needed to construct a Client. Transport,
// ClusterProvider, a positive DefaultTimeout and a positive
// MaxReplicasUsedPerRequest are required; everything else has a
// documented built-in default.
type Config struct {
	Transport        Transport
	ClusterProvider  ClusterProvider
	ReplicaTransform ReplicaTransform

	Classifier      *Classifier
	WeightModifiers []WeightModifier
	Strategy        RequestStrategy
	// MaxWeight caps every replica's computed weight before ordering
	// draws from it. <= 0 selects a built-in default.
	MaxWeight float64

	DefaultTimeout            time.Duration
	ConnectTimeout            time.Duration
	MaxReplicasUsedPerRequest int
	ValidateHTTPMethod        bool
	DeduplicateRequestURL     bool

	RetryPolicy                 RetryPolicy
	ResponseSelector            ResponseSelector
	ClusterResultStatusSelector ClusterResultStatusSelector

	RequestTransforms  []func(Request) Request
	ResponseTransforms []func(Response) Response

	Throttle *ThrottleConfig
	Logging  LoggingConfig
	Registry prometheus.Registerer

	// ExtraModules are folded into the pipeline alongside the built-in
	// modules, ordered by their own Group like everything else.
	ExtraModules []Module
}

func (c Config) validate() error {
	if c.Transport == nil {
		return ErrTransportRequired
	}
	if c.ClusterProvider == nil {
		return ErrClusterProviderRequired
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxReplicasUsedPerRequest <= 0 {
		return ErrInvalidReplicaCap
	}
	return nil
}

// Client is a cluster-aware HTTP client: one configured pipeline, ordering
// engine, and sender, reused across every Send call. A Client is safe for
// concurrent use.
type Client struct {
	cfg     Config
	chain   NextFunc
	ordering *OrderingEngine
	registry *storageRegistry
	closed  atomic.Bool
}

// New validates cfg, fills in documented defaults for every unset
// optional field, and assembles the pipeline.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.ReplicaTransform == nil {
		cfg.ReplicaTransform = NewDefaultReplicaTransform()
	}
	if cfg.Classifier == nil {
		classifier, err := NewClassifier(
			NewNetworkErrorCriterion(),
			NewStatusCategoryCriterion(
				func(c StatusCategory) bool { return c == CategorySuccess },
				func(c StatusCategory) bool { return c == CategoryServerFailure },
			),
			AlwaysAccept,
		)
		if err != nil {
			return nil, err
		}
		cfg.Classifier = classifier
	}
	if cfg.Strategy == nil {
		cfg.Strategy = NewSequentialStrategy(NewEqualTimeoutsProvider(cfg.ConnectTimeout, cfg.MaxReplicasUsedPerRequest))
	}
	if cfg.RetryPolicy == nil {
		cfg.RetryPolicy = NewNoRetryPolicy()
	}
	if cfg.ResponseSelector == nil {
		cfg.ResponseSelector = NewResponseSelector()
	}
	if cfg.ClusterResultStatusSelector == nil {
		cfg.ClusterResultStatusSelector = NewClusterResultStatusSelector()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	logger := logging.Noop()
	if cfg.Logging.Enabled {
		logger = logging.New(cfg.Logging.Level)
	}
	recorder := metrics.NewRecorder(cfg.Registry)

	ordering := NewOrderingEngine(nil, cfg.MaxWeight, cfg.WeightModifiers...)
	ordering.SetRecorder(recorder)
	snd := newSender(cfg.Transport, cfg.ReplicaTransform, cfg.Classifier, ordering)
	registry := newStorageRegistry()

	modules := []Module{
		newLeakPreventionModule(),
		newGlobalErrorHandlingModule(logger),
		newLoggingModule(logger),
		newRequestValidationModule(cfg.ValidateHTTPMethod, cfg.Strategy),
		newTimeoutValidationModule(cfg.DefaultTimeout),
		newRequestTransformationModule(cfg.RequestTransforms...),
		newResponseTransformationModule(cfg.ResponseTransforms...),
		newRetryModule(cfg.RetryPolicy),
		newClusterProviderResolutionModule(cfg.ClusterProvider, cfg.DeduplicateRequestURL),
		newExecutionModule(ordering, snd, cfg.Strategy, cfg.MaxReplicasUsedPerRequest, recorder),
		newResultFinalizationModule(cfg.ClusterResultStatusSelector, cfg.ResponseSelector, recorder),
	}
	if cfg.Throttle != nil {
		gate := throttle.New(cfg.Throttle.MinimumRequests, cfg.Throttle.MinimumRatio, cfg.Throttle.RejectionProbabilityCap)
		modules = append(modules, newThrottlingModule(gate))
	}
	modules = append(modules, cfg.ExtraModules...)

	terminal := NextFunc(func(ctx *RequestContext, req Request) ClusterResult { return ClusterResult{} })

	return &Client{
		cfg:      cfg,
		chain:    buildChain(modules, terminal),
		ordering: ordering,
		registry: registry,
	}, nil
}

// Send runs req through the full pipeline and returns the resulting
// ClusterResult. The time budget starts the instant Send is called, sized
// from cfg.DefaultTimeout.
func (c *Client) Send(ctx context.Context, req Request) (ClusterResult, error) {
	if c.closed.Load() {
		return ClusterResult{}, ErrClientClosed
	}
	if req.Method == "" {
		req.Method = MethodGET
	}

	budget := NewTimeBudget(c.cfg.DefaultTimeout)
	rc := newRequestContext(ctx, budget, nil, c.registry)
	return c.chain(rc, req), nil
}

// Close marks the Client closed; subsequent Send calls return
// ErrClientClosed. It does not touch the configured Transport, which the
// caller owns and may reuse elsewhere.
func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}
