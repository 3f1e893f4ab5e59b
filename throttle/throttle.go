// Package throttle implements client-side adaptive throttling: a token
// bucket (golang.org/x/time/rate) that always admits traffic up to a
// floor, combined with a ratio-based rejection probability once that
// floor is exceeded, the same shape gRPC and the AWS SDK use to protect a
// struggling cluster from a client that keeps retrying into it.
package throttle

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate is one adaptive throttle instance, scoped to one Client.
type Gate struct {
	mu                      sync.Mutex
	requests                float64
	accepts                 float64
	minimumRatio            float64
	rejectionProbabilityCap float64
	limiter                 *rate.Limiter
	rng                     *rand.Rand
}

// New returns a Gate. minimumRequests sizes the always-admit token bucket
// (both rate and burst); minimumRatio and rejectionProbabilityCap tune the
// formula Allow falls back to once that bucket is empty.
func New(minimumRequests int, minimumRatio, rejectionProbabilityCap float64) *Gate {
	if minimumRequests < 1 {
		minimumRequests = 1
	}
	return &Gate{
		minimumRatio:            minimumRatio,
		rejectionProbabilityCap: rejectionProbabilityCap,
		limiter:                 rate.NewLimiter(rate.Limit(minimumRequests), minimumRequests),
		rng:                     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Allow reports whether a new logical request should proceed. Every call
// counts toward the requests term of the ratio formula, regardless of the
// outcome.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests++
	if g.limiter.Allow() {
		return true
	}

	p := (g.requests - g.minimumRatio*g.accepts) / (g.requests + 1)
	if p < 0 {
		p = 0
	}
	if p > g.rejectionProbabilityCap {
		p = g.rejectionProbabilityCap
	}
	return g.rng.Float64() >= p
}

// Report records whether an admitted request was ultimately accepted,
// feeding the accepts term of the ratio formula.
func (g *Gate) Report(accepted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if accepted {
		g.accepts++
	}
}
