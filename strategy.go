package clusterclient

import (
	"context"
	"sync"
	"time"
)

// AttemptFunc is the single-replica send operation a RequestStrategy
// drives. It is always the sender's attempt method in production; tests
// substitute a stub to exercise strategy timing and cancellation logic
// without a real Transport.
type AttemptFunc func(ctx *RequestContext, replica Replica, connectTimeout, requestTimeout time.Duration) ReplicaResult

// TimeoutsProvider computes the per-attempt connect and request timeouts
// from the remaining time budget.
type TimeoutsProvider interface {
	ConnectTimeout(budget TimeBudget) time.Duration
	// RequestTimeout returns the timeout for one attempt, given the
	// number of candidate replicas the calling strategy is dividing the
	// remaining budget across.
	RequestTimeout(budget TimeBudget, candidates int) time.Duration
}

// EqualTimeoutsProvider gives every attempt a fixed connect timeout and
// divides the remaining budget evenly across up to maxDivisions shares,
// regardless of how many replicas are actually in play beyond that cap.
type EqualTimeoutsProvider struct {
	connectTimeout time.Duration
	maxDivisions   int
}

// NewEqualTimeoutsProvider returns an EqualTimeoutsProvider. maxDivisions
// must be at least 1.
func NewEqualTimeoutsProvider(connectTimeout time.Duration, maxDivisions int) *EqualTimeoutsProvider {
	if maxDivisions < 1 {
		maxDivisions = 1
	}
	return &EqualTimeoutsProvider{connectTimeout: connectTimeout, maxDivisions: maxDivisions}
}

func (p *EqualTimeoutsProvider) ConnectTimeout(budget TimeBudget) time.Duration {
	return p.connectTimeout
}

// RequestTimeout divides the currently remaining budget by
// min(maxDivisions, candidates), so a strategy with few replicas left
// does not under-allot time it will never need to share further.
func (p *EqualTimeoutsProvider) RequestTimeout(budget TimeBudget, candidates int) time.Duration {
	divisor := p.maxDivisions
	if candidates > 0 && candidates < divisor {
		divisor = candidates
	}
	return budget.Remaining() / time.Duration(divisor)
}

// RequestStrategy is the C8 component: it decides how many replicas to
// draw from a ReplicaStream and how to schedule attempts against them —
// one at a time, all at once, or staggered — and returns every
// ReplicaResult produced before it stops.
type RequestStrategy interface {
	Execute(ctx *RequestContext, stream ReplicaStream, attempt AttemptFunc, maxReplicas int) []ReplicaResult
	// AllowsStreamingBody reports whether this strategy issues at most one
	// attempt at a time. A single-use streaming request body must never be
	// paired with a strategy that answers false here.
	AllowsStreamingBody() bool
}

// SequentialStrategy tries replicas one at a time, in stream order,
// stopping as soon as one is accepted, the budget expires, the stream is
// exhausted, or maxReplicas attempts have been made.
type SequentialStrategy struct {
	timeouts TimeoutsProvider
}

// NewSequentialStrategy returns a SequentialStrategy using timeouts to
// size each attempt.
func NewSequentialStrategy(timeouts TimeoutsProvider) *SequentialStrategy {
	return &SequentialStrategy{timeouts: timeouts}
}

func (s *SequentialStrategy) AllowsStreamingBody() bool { return true }

func (s *SequentialStrategy) Execute(ctx *RequestContext, stream ReplicaStream, attempt AttemptFunc, maxReplicas int) []ReplicaResult {
	var results []ReplicaResult
	for i := 0; i < maxReplicas; i++ {
		if ctx.Budget.HasExpired() {
			break
		}
		replica, ok := stream.Next()
		if !ok {
			break
		}
		connectTimeout := s.timeouts.ConnectTimeout(ctx.Budget)
		requestTimeout := s.timeouts.RequestTimeout(ctx.Budget, maxReplicas-i)
		result := attempt(ctx, replica, connectTimeout, requestTimeout)
		results = append(results, result)
		if result.Accepted() {
			break
		}
	}
	return results
}

// drawReplicas pulls up to n replicas from stream, stopping early if the
// stream is exhausted first.
func drawReplicas(stream ReplicaStream, n int) []Replica {
	out := make([]Replica, 0, n)
	for i := 0; i < n; i++ {
		r, ok := stream.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

// fanIn runs attempt against every replica in siblings concurrently, each
// under its own derived cancellation scope off parent, and cancels every
// remaining sibling the instant one is accepted. launchDelay(i), called
// for i>0, is given the chance to delay (or skip, on cancellation) the
// launch of the i-th sibling — Parallel uses a zero delay for every
// sibling, Forking uses the configured stagger.
func fanIn(ctx *RequestContext, siblings []Replica, attempt AttemptFunc, timeouts TimeoutsProvider, launchDelay func(i int) time.Duration) []ReplicaResult {
	if len(siblings) == 0 {
		return nil
	}

	childCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	resultsCh := make(chan ReplicaResult, len(siblings))
	var wg sync.WaitGroup

	launch := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			siblingCtx := ctx.withContext(childCtx)
			connectTimeout := timeouts.ConnectTimeout(ctx.Budget)
			requestTimeout := timeouts.RequestTimeout(ctx.Budget, len(siblings))
			resultsCh <- attempt(siblingCtx, siblings[i], connectTimeout, requestTimeout)
		}()
	}

	launch(0)
	if len(siblings) > 1 {
		// The launcher holds its own count until it has launched or
		// skipped every later sibling, so resultsCh stays open until then.
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i < len(siblings); i++ {
				delay := launchDelay(i)
				if delay <= 0 {
					launch(i)
					continue
				}
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
					launch(i)
				case <-childCtx.Done():
					timer.Stop()
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []ReplicaResult
	for result := range resultsCh {
		results = append(results, result)
		if result.Accepted() {
			cancel()
		}
	}
	return results
}

// ParallelStrategy fires up to n attempts at once and returns as soon as
// one is accepted, canceling the rest.
type ParallelStrategy struct {
	n        int
	timeouts TimeoutsProvider
}

// NewParallelStrategy returns a ParallelStrategy that fans out to n
// replicas at a time.
func NewParallelStrategy(n int, timeouts TimeoutsProvider) *ParallelStrategy {
	return &ParallelStrategy{n: n, timeouts: timeouts}
}

func (s *ParallelStrategy) AllowsStreamingBody() bool { return false }

func (s *ParallelStrategy) Execute(ctx *RequestContext, stream ReplicaStream, attempt AttemptFunc, maxReplicas int) []ReplicaResult {
	n := s.n
	if n > maxReplicas {
		n = maxReplicas
	}
	siblings := drawReplicas(stream, n)
	return fanIn(ctx, siblings, attempt, s.timeouts, func(int) time.Duration { return 0 })
}

// ForkingStrategy (request hedging) launches the first replica
// immediately and launches each subsequent replica after the
// corresponding stagger delay has elapsed without an accepted result,
// canceling every still-running sibling the instant one is accepted.
// Delays are successive intervals between consecutive forks, not
// cumulative offsets from the first attempt.
type ForkingStrategy struct {
	delays   []time.Duration
	timeouts TimeoutsProvider
}

// NewForkingStrategy returns a ForkingStrategy with len(delays)+1 total
// forks: the immediate first attempt plus one more after each delay.
func NewForkingStrategy(delays []time.Duration, timeouts TimeoutsProvider) *ForkingStrategy {
	return &ForkingStrategy{delays: delays, timeouts: timeouts}
}

func (s *ForkingStrategy) AllowsStreamingBody() bool { return false }

func (s *ForkingStrategy) Execute(ctx *RequestContext, stream ReplicaStream, attempt AttemptFunc, maxReplicas int) []ReplicaResult {
	forkCount := len(s.delays) + 1
	if forkCount > maxReplicas {
		forkCount = maxReplicas
	}
	siblings := drawReplicas(stream, forkCount)
	return fanIn(ctx, siblings, attempt, s.timeouts, func(i int) time.Duration {
		if i-1 < len(s.delays) {
			return s.delays[i-1]
		}
		return 0
	})
}
