package clusterclient

import "time"

// ReplicaResult records one attempt against one replica: what was sent,
// what came back (if anything), how the classifier judged it, and the
// transport error (if any) that produced a synthetic Response.
type ReplicaResult struct {
	Replica   Replica
	Request   Request
	Response  Response
	Verdict   Verdict
	Err       error
	Attempt   int
	StartedAt time.Time
	Duration  time.Duration
}

// Accepted reports whether the classifier terminated this attempt with
// VerdictAccept.
func (r ReplicaResult) Accepted() bool { return r.Verdict == VerdictAccept }

// ClusterResultStatus is the terminal outcome of one logical request,
// computed once execution stops producing new ReplicaResults.
type ClusterResultStatus int

const (
	ClusterResultSuccess ClusterResultStatus = iota
	ClusterResultReplicasNotFound
	ClusterResultReplicasExhausted
	ClusterResultTimeExpired
	ClusterResultThrottled
	ClusterResultIncorrectArguments
	ClusterResultUnexpectedException
	ClusterResultCanceled
)

func (s ClusterResultStatus) String() string {
	switch s {
	case ClusterResultSuccess:
		return "Success"
	case ClusterResultReplicasNotFound:
		return "ReplicasNotFound"
	case ClusterResultReplicasExhausted:
		return "ReplicasExhausted"
	case ClusterResultTimeExpired:
		return "TimeExpired"
	case ClusterResultThrottled:
		return "Throttled"
	case ClusterResultIncorrectArguments:
		return "IncorrectArguments"
	case ClusterResultUnexpectedException:
		return "UnexpectedException"
	default:
		return "Canceled"
	}
}

// ClusterResult is everything a logical request produced: the full
// attempt history, the selected response, and the status a caller should
// branch on.
type ClusterResult struct {
	Status   ClusterResultStatus
	Results  []ReplicaResult
	Response Response
}

// defaultClusterResultStatusSelector applies the spec's fixed priority
// rule over the frozen attempt list plus the budget and cancellation
// signal observed at the end of execution, in order: any accepted attempt
// means Success; otherwise an expired budget means TimeExpired; otherwise
// an observed cancellation means Canceled; otherwise every replica was
// tried and none was accepted, meaning ReplicasExhausted. Throttled,
// IncorrectArguments, ReplicasNotFound, and UnexpectedException are never
// produced here — those short-circuit earlier in the pipeline, before any
// ReplicaResult exists to select over.
type defaultClusterResultStatusSelector struct{}

// NewClusterResultStatusSelector returns the built-in priority-rule
// status selector.
func NewClusterResultStatusSelector() ClusterResultStatusSelector {
	return defaultClusterResultStatusSelector{}
}

func (defaultClusterResultStatusSelector) Select(results []ReplicaResult, budget TimeBudget, canceled <-chan struct{}) ClusterResultStatus {
	for _, r := range results {
		if r.Accepted() {
			return ClusterResultSuccess
		}
	}
	if budget.HasExpired() {
		return ClusterResultTimeExpired
	}
	select {
	case <-canceled:
		return ClusterResultCanceled
	default:
	}
	return ClusterResultReplicasExhausted
}

// defaultResponseSelector returns the response of the last accepted
// attempt, falling back to the last attempt's response when nothing was
// accepted, and to a synthetic no-response when there were no attempts at
// all.
type defaultResponseSelector struct{}

// NewResponseSelector returns the built-in last-accepted-wins selector.
func NewResponseSelector() ResponseSelector {
	return defaultResponseSelector{}
}

func (defaultResponseSelector) Select(request Request, parameters *Parameters, results []ReplicaResult) Response {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Accepted() {
			return results[i].Response
		}
	}
	if len(results) > 0 {
		return results[len(results)-1].Response
	}
	return noResponse(TransportUnknownFailure)
}
