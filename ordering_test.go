package clusterclient

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRand(seed int64) func() *rand.Rand {
	return func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
}

type constantWeightModifier struct {
	weights map[Replica]float64
}

func (m constantWeightModifier) Modify(ctx *RequestContext, replica Replica, all []Replica, weight *float64) {
	if w, ok := m.weights[replica]; ok {
		*weight = w
	}
}

func (m constantWeightModifier) Learn(ctx *RequestContext, result ReplicaResult) {}

func TestOrderingEngine_YieldsEveryReplicaExactlyOnce(t *testing.T) {
	replicas := []Replica{
		MustReplica("http://a.example"),
		MustReplica("http://b.example"),
		MustReplica("http://c.example"),
	}
	engine := NewOrderingEngine(fixedRand(1), 0)
	ctx := newRequestContext(context.Background(), NewTimeBudget(0), replicas, newStorageRegistry())

	stream := engine.Order(ctx, replicas)
	seen := map[Replica]bool{}
	for {
		r, ok := stream.Next()
		if !ok {
			break
		}
		assert.False(t, seen[r], "replica yielded twice")
		seen[r] = true
	}
	assert.Len(t, seen, len(replicas))
}

func TestOrderingEngine_WeightClampedToMaxWeight(t *testing.T) {
	replicas := []Replica{MustReplica("http://a.example"), MustReplica("http://b.example")}
	huge := constantWeightModifier{weights: map[Replica]float64{replicas[0]: 1e9}}
	engine := NewOrderingEngine(fixedRand(3), 5, huge)
	ctx := newRequestContext(context.Background(), NewTimeBudget(0), replicas, newStorageRegistry())

	stream := engine.Order(ctx, replicas)
	rs, ok := stream.(*replicaStream)
	require.True(t, ok)
	for _, e := range rs.entries {
		if e.replica == replicas[0] {
			assert.Equal(t, 5.0, e.weight)
		} else {
			assert.Equal(t, 1.0, e.weight)
		}
	}
}

func TestOrderingEngine_ZeroWeightReplicaStillEventuallyYielded(t *testing.T) {
	replicas := []Replica{MustReplica("http://a.example"), MustReplica("http://b.example")}
	zeroed := constantWeightModifier{weights: map[Replica]float64{replicas[0]: 0, replicas[1]: 0}}
	engine := NewOrderingEngine(fixedRand(2), 0, zeroed)
	ctx := newRequestContext(context.Background(), NewTimeBudget(0), replicas, newStorageRegistry())

	stream := engine.Order(ctx, replicas)
	count := 0
	for {
		_, ok := stream.Next()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestLeadershipModifier_PinsToLeaderThenFallsBackAfterDemotion(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	replicaB := MustReplica("http://b.example")
	all := []Replica{replicaA, replicaB}

	detector := detectorFunc(func(r ReplicaResult) bool { return r.Replica == replicaA && r.Verdict == VerdictAccept })
	modifier := NewLeadershipModifier(detector, 0)
	registry := newStorageRegistry()
	ctx := newRequestContext(context.Background(), NewTimeBudget(0), all, registry)

	modifier.Learn(ctx, ReplicaResult{Replica: replicaA, Verdict: VerdictAccept})

	wA, wB := 1.0, 1.0
	modifier.Modify(ctx, replicaA, all, &wA)
	modifier.Modify(ctx, replicaB, all, &wB)
	require.Equal(t, 1.0, wA)
	require.Equal(t, 0.0, wB)

	modifier.Learn(ctx, ReplicaResult{Replica: replicaA, Verdict: VerdictReject})

	wA, wB = 1.0, 1.0
	modifier.Modify(ctx, replicaA, all, &wA)
	modifier.Modify(ctx, replicaB, all, &wB)
	assert.Equal(t, 1.0, wA)
	assert.Equal(t, 1.0, wB)
}

type detectorFunc func(ReplicaResult) bool

func (f detectorFunc) IsLeaderResult(r ReplicaResult) bool { return f(r) }
