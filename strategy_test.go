package clusterclient

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestReplicaStream(replicas []Replica) ReplicaStream {
	return &staticStream{replicas: replicas}
}

type staticStream struct {
	replicas []Replica
	i        int
}

func (s *staticStream) Next() (Replica, bool) {
	if s.i >= len(s.replicas) {
		return Replica{}, false
	}
	r := s.replicas[s.i]
	s.i++
	return r, true
}

func TestSequentialStrategy_StopsOnFirstAccept(t *testing.T) {
	replicas := []Replica{MustReplica("http://a.example"), MustReplica("http://b.example"), MustReplica("http://c.example")}
	var calls int32
	attempt := AttemptFunc(func(ctx *RequestContext, replica Replica, connectTimeout, requestTimeout time.Duration) ReplicaResult {
		atomic.AddInt32(&calls, 1)
		verdict := VerdictReject
		if replica == replicas[1] {
			verdict = VerdictAccept
		}
		return ReplicaResult{Replica: replica, Verdict: verdict}
	})

	strategy := NewSequentialStrategy(NewEqualTimeoutsProvider(time.Second, 3))
	ctx := newRequestContext(context.Background(), NewTimeBudget(time.Second), replicas, newStorageRegistry())
	results := strategy.Execute(ctx, newTestReplicaStream(replicas), attempt, 3)

	assert.Len(t, results, 2)
	assert.True(t, results[len(results)-1].Accepted())
	assert.EqualValues(t, 2, calls)
}

func TestParallelStrategy_CancelsSiblingsOnAccept(t *testing.T) {
	replicas := []Replica{MustReplica("http://a.example"), MustReplica("http://b.example")}
	var canceled int32
	attempt := AttemptFunc(func(ctx *RequestContext, replica Replica, connectTimeout, requestTimeout time.Duration) ReplicaResult {
		if replica == replicas[0] {
			return ReplicaResult{Replica: replica, Verdict: VerdictAccept}
		}
		<-ctx.Context.Done()
		atomic.AddInt32(&canceled, 1)
		return ReplicaResult{Replica: replica, Verdict: VerdictReject}
	})

	strategy := NewParallelStrategy(2, NewEqualTimeoutsProvider(time.Second, 2))
	ctx := newRequestContext(context.Background(), NewTimeBudget(time.Second), replicas, newStorageRegistry())
	results := strategy.Execute(ctx, newTestReplicaStream(replicas), attempt, 2)

	assert.Len(t, results, 2)
	assert.EqualValues(t, 1, canceled)
}

func TestForkingStrategy_SecondForkNeverLaunchedAfterFirstAccepts(t *testing.T) {
	replicas := []Replica{MustReplica("http://a.example"), MustReplica("http://b.example")}
	var secondLaunched int32
	attempt := AttemptFunc(func(ctx *RequestContext, replica Replica, connectTimeout, requestTimeout time.Duration) ReplicaResult {
		if replica == replicas[0] {
			time.Sleep(5 * time.Millisecond)
			return ReplicaResult{Replica: replica, Verdict: VerdictAccept}
		}
		atomic.AddInt32(&secondLaunched, 1)
		return ReplicaResult{Replica: replica, Verdict: VerdictReject}
	})

	strategy := NewForkingStrategy([]time.Duration{50 * time.Millisecond}, NewEqualTimeoutsProvider(time.Second, 2))
	ctx := newRequestContext(context.Background(), NewTimeBudget(time.Second), replicas, newStorageRegistry())
	results := strategy.Execute(ctx, newTestReplicaStream(replicas), attempt, 2)

	assert.Len(t, results, 1)
	assert.EqualValues(t, 0, secondLaunched)
}

func TestEqualTimeoutsProvider_DividesRemainingBudget(t *testing.T) {
	p := NewEqualTimeoutsProvider(100*time.Millisecond, 4)
	budget := NewTimeBudget(1 * time.Second)
	got := p.RequestTimeout(budget, 2)
	assert.InDelta(t, (1*time.Second)/2, got, float64(20*time.Millisecond))
}
