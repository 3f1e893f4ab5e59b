package clusterclient

import (
	"math/rand"
	"time"

	"clusterhttp/metrics"
)

// ReplicaStream yields replicas one at a time in the order an
// OrderingEngine chose for one logical request. It is a single-consumer,
// lazy iterator: the weighted draw for the next replica happens inside
// Next, not all up front, so a strategy that only needs one or two
// replicas never pays for ordering the rest of the cluster.
type ReplicaStream interface {
	// Next returns the next replica to try, or ok=false once every
	// replica has been yielded.
	Next() (Replica, bool)
}

type weightedEntry struct {
	replica Replica
	weight  float64
}

// replicaStream draws without replacement from a fixed candidate set
// whose weights were computed once, at stream construction, by applying
// every configured WeightModifier in order over a base weight of 1.0.
type replicaStream struct {
	entries []weightedEntry
	rng     *rand.Rand
}

func (s *replicaStream) Next() (Replica, bool) {
	if len(s.entries) == 0 {
		return Replica{}, false
	}

	total := 0.0
	for _, e := range s.entries {
		total += e.weight
	}

	idx := 0
	if total <= 0 {
		// Every remaining candidate has zero weight: fall back to a
		// uniform draw so replicas still get tried instead of starving.
		idx = s.rng.Intn(len(s.entries))
	} else {
		target := s.rng.Float64() * total
		cum := 0.0
		idx = len(s.entries) - 1
		for i, e := range s.entries {
			cum += e.weight
			if target < cum {
				idx = i
				break
			}
		}
	}

	chosen := s.entries[idx].replica
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return chosen, true
}

// defaultMaxWeight is the weight cap used when NewOrderingEngine is given
// maxWeight <= 0. It only needs to be large enough that no built-in
// modifier's legitimate output is ever clipped in practice.
const defaultMaxWeight = 1000.0

// healthReporter is an optional interface a WeightModifier may implement
// to expose its raw per-replica health signal for observability,
// independent of the final post-fold weight another modifier (such as
// LeadershipModifier) may further scale.
type healthReporter interface {
	Health(ctx *RequestContext, replica Replica) float64
}

// OrderingEngine is the C5 component: it applies a fixed set of
// WeightModifiers to a candidate replica list and hands back a
// ReplicaStream for one logical request.
type OrderingEngine struct {
	modifiers  []WeightModifier
	randSource func() *rand.Rand
	maxWeight  float64
	recorder   *metrics.Recorder
}

// SetRecorder attaches recorder so every subsequent Order call publishes
// each replica's weight and, for modifiers that report one, its health
// value. Building the Recorder happens inside New, after the
// OrderingEngine already exists, so this is a post-construction setter
// rather than a constructor parameter.
func (e *OrderingEngine) SetRecorder(recorder *metrics.Recorder) {
	e.recorder = recorder
}

// NewOrderingEngine returns an OrderingEngine applying modifiers in order.
// randSource, if nil, defaults to a time-seeded source; tests inject a
// fixed-seed source for deterministic draws. maxWeight caps every
// computed weight; <= 0 selects defaultMaxWeight.
func NewOrderingEngine(randSource func() *rand.Rand, maxWeight float64, modifiers ...WeightModifier) *OrderingEngine {
	if randSource == nil {
		randSource = defaultRandSource
	}
	if maxWeight <= 0 {
		maxWeight = defaultMaxWeight
	}
	return &OrderingEngine{modifiers: modifiers, randSource: randSource, maxWeight: maxWeight}
}

func defaultRandSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Order computes every replica's weight by folding the configured
// modifiers over a base weight of 1.0, then returns a lazy stream that
// draws from those weights without replacement.
func (e *OrderingEngine) Order(ctx *RequestContext, replicas []Replica) ReplicaStream {
	entries := make([]weightedEntry, len(replicas))
	for i, r := range replicas {
		w := 1.0
		for _, m := range e.modifiers {
			m.Modify(ctx, r, replicas, &w)
		}
		if w < 0 {
			w = 0
		}
		if w > e.maxWeight {
			w = e.maxWeight
		}
		entries[i] = weightedEntry{replica: r, weight: w}

		if e.recorder != nil {
			e.recorder.ObserveWeight(r.String(), w)
			for _, m := range e.modifiers {
				if hr, ok := m.(healthReporter); ok {
					e.recorder.ObserveHealth(r.String(), hr.Health(ctx, r))
				}
			}
		}
	}
	return &replicaStream{entries: entries, rng: e.randSource()}
}

// Learn fans the completed attempt out to every configured modifier, in
// order, so each can update whatever per-replica state it keeps.
func (e *OrderingEngine) Learn(ctx *RequestContext, result ReplicaResult) {
	for _, m := range e.modifiers {
		m.Learn(ctx, result)
	}
}
