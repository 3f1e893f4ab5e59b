package clusterclient

import (
	"context"
	"time"
)

// Capability is a transport feature a Request body variant may require.
type Capability int

const (
	CapabilityRequestStreaming Capability = iota
	CapabilityRequestCompositeBody
)

// Transport is the one required external collaborator that actually puts
// bytes on a socket. Implementations must be safe for concurrent use and
// must honor ctx cancellation promptly. connectTimeout bounds connection
// establishment only; requestTimeout bounds the whole attempt.
type Transport interface {
	Send(ctx context.Context, request Request, connectTimeout, requestTimeout time.Duration) (Response, error)
	Supports(capability Capability) bool
}

// ClusterProvider resolves a logical service name (baked into the
// provider at construction time, not passed per-call) to its current
// replica set. It may return an empty slice; it must be cheap, since it
// is consulted on every request.
type ClusterProvider interface {
	GetCluster() ([]Replica, error)
}

// ReplicaTransform rebases a request's (possibly relative) URL against a
// chosen replica's base URL. Implementations must be idempotent.
type ReplicaTransform interface {
	Transform(replica Replica, request Request) (Request, error)
}

// LeaderResultDetector tells the leadership WeightModifier whether a
// completed attempt was served by a cluster leader.
type LeaderResultDetector interface {
	IsLeaderResult(result ReplicaResult) bool
}

// RetryPolicy decides whether the Retry module should re-invoke the
// executor stage, given how many attempts have already run and the
// result of the most recent one.
type RetryPolicy interface {
	ShouldRetry(attemptIndex int, result ClusterResult) bool
}

// ResponseSelector picks one response out of the full set of
// ReplicaResults a logical request produced.
type ResponseSelector interface {
	Select(request Request, parameters *Parameters, results []ReplicaResult) Response
}

// ClusterResultStatusSelector computes the terminal ClusterResultStatus
// from the frozen ReplicaResults list plus the budget and cancellation
// state observed at the end of execution.
type ClusterResultStatusSelector interface {
	Select(results []ReplicaResult, budget TimeBudget, canceled <-chan struct{}) ClusterResultStatus
}

// WeightModifier is one pluggable vote in replica ordering. Modify reads
// state and scales the running weight; Learn updates that state from a
// completed attempt. Modifiers compose by ordered application over a
// weight starting at 1.0 — a modifier that zeroes the weight does not
// prevent a later modifier from raising it again.
type WeightModifier interface {
	Modify(ctx *RequestContext, replica Replica, allReplicas []Replica, weight *float64)
	Learn(ctx *RequestContext, result ReplicaResult)
}
