package clusterclient

import (
	"time"

	"clusterhttp/health"
)

const (
	scalarHealthStorageScope = "health.scalar"
	decayHealthStorageScope  = "health.decay"
)

func outcomeFromResult(r ReplicaResult) health.Outcome {
	switch r.Response.Verdict {
	case TransportTimeout:
		return health.OutcomeTimeout
	case TransportSuccess:
		// fall through to verdict-based classification
	default:
		return health.OutcomeNetworkError
	}
	switch r.Verdict {
	case VerdictAccept:
		return health.OutcomeAccept
	case VerdictReject:
		return health.OutcomeReject
	default:
		return health.OutcomeDontKnow
	}
}

// ScalarHealthModifier is the adaptive-health WeightModifier built on
// health.Scalar: a single value in [floor, 1] per replica that only moves
// on Increase/Decrease as dictated by policy, with no time-based recovery.
type ScalarHealthModifier struct {
	policy   health.TuningPolicy
	up, down float64
	floor    float64
}

// NewScalarHealthModifier returns a ScalarHealthModifier. up and down are
// multipliers applied on Increase/Decrease decisions; floor is the lowest
// value the health can fall to.
func NewScalarHealthModifier(policy health.TuningPolicy, up, down, floor float64) *ScalarHealthModifier {
	return &ScalarHealthModifier{policy: policy, up: up, down: down, floor: floor}
}

func (m *ScalarHealthModifier) Modify(ctx *RequestContext, replica Replica, allReplicas []Replica, weight *float64) {
	store := obtainStorage[health.Scalar](ctx.registry, scalarHealthStorageScope)
	h := store.GetOrAdd(replica, health.DefaultScalar)
	*weight = h.Apply(*weight)
}

// Health reports replica's current scalar health value without
// installing a default entry for replicas never yet observed.
func (m *ScalarHealthModifier) Health(ctx *RequestContext, replica Replica) float64 {
	store := obtainStorage[health.Scalar](ctx.registry, scalarHealthStorageScope)
	if h, ok := store.Get(replica); ok {
		return h.V
	}
	return health.DefaultScalar().V
}

func (m *ScalarHealthModifier) Learn(ctx *RequestContext, result ReplicaResult) {
	store := obtainStorage[health.Scalar](ctx.registry, scalarHealthStorageScope)
	decision := m.policy.Decide(outcomeFromResult(result))
	if decision == health.DontTouch {
		return
	}
	for {
		cur := store.GetOrAdd(result.Replica, health.DefaultScalar)
		var next health.Scalar
		if decision == health.Increase {
			next = cur.Increase(m.up)
		} else {
			next = cur.Decrease(m.down, m.floor)
		}
		if store.TryUpdate(result.Replica, next, cur) {
			return
		}
	}
}

// DecayHealthModifier is the adaptive-health WeightModifier built on
// health.WithDecay: a value that recovers linearly back toward full
// health over decayDuration after its last decrease, instead of needing
// explicit Increase decisions to climb back up.
type DecayHealthModifier struct {
	policy        health.TuningPolicy
	up, down      float64
	floor         float64
	decayDuration time.Duration
}

// NewDecayHealthModifier returns a DecayHealthModifier.
func NewDecayHealthModifier(policy health.TuningPolicy, up, down, floor float64, decayDuration time.Duration) *DecayHealthModifier {
	return &DecayHealthModifier{policy: policy, up: up, down: down, floor: floor, decayDuration: decayDuration}
}

func (m *DecayHealthModifier) Modify(ctx *RequestContext, replica Replica, allReplicas []Replica, weight *float64) {
	store := obtainStorage[health.WithDecay](ctx.registry, decayHealthStorageScope)
	now := time.Now()
	h := store.GetOrAdd(replica, func() health.WithDecay { return health.DefaultWithDecay(now) })
	*weight = h.Apply(*weight, now, m.decayDuration)
}

// Health reports replica's current decay-adjusted health value (in
// [0, 1]) without installing a default entry for replicas never yet
// observed.
func (m *DecayHealthModifier) Health(ctx *RequestContext, replica Replica) float64 {
	store := obtainStorage[health.WithDecay](ctx.registry, decayHealthStorageScope)
	now := time.Now()
	h, ok := store.Get(replica)
	if !ok {
		h = health.DefaultWithDecay(now)
	}
	return h.Apply(1.0, now, m.decayDuration)
}

func (m *DecayHealthModifier) Learn(ctx *RequestContext, result ReplicaResult) {
	store := obtainStorage[health.WithDecay](ctx.registry, decayHealthStorageScope)
	decision := m.policy.Decide(outcomeFromResult(result))
	if decision == health.DontTouch {
		return
	}
	now := time.Now()
	for {
		cur := store.GetOrAdd(result.Replica, func() health.WithDecay { return health.DefaultWithDecay(now) })
		var next health.WithDecay
		if decision == health.Increase {
			next = cur.Increase(m.up)
		} else {
			next = cur.Decrease(m.down, m.floor, now)
		}
		if store.TryUpdate(result.Replica, next, cur) {
			return
		}
	}
}
