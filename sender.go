package clusterclient

import "time"

// sender is the C7 component: it owns the one transform-send-classify-
// learn sequence that every dispatch strategy invokes once per replica
// attempt.
type sender struct {
	transport  Transport
	transform  ReplicaTransform
	classifier *Classifier
	ordering   *OrderingEngine
}

func newSender(transport Transport, transform ReplicaTransform, classifier *Classifier, ordering *OrderingEngine) *sender {
	return &sender{transport: transport, transform: transform, classifier: classifier, ordering: ordering}
}

// attempt sends req to replica, classifies the outcome, fans the result
// out to every weight modifier's Learn, and returns the recorded
// ReplicaResult. It never returns an error itself: transform and
// transport failures are captured in the returned result's Err and
// Response fields so strategies can treat every attempt uniformly.
func (s *sender) attempt(ctx *RequestContext, replica Replica, req Request, connectTimeout, requestTimeout time.Duration, attemptIndex int) ReplicaResult {
	start := time.Now()

	transformed, err := s.transform.Transform(replica, req)
	if err != nil {
		result := ReplicaResult{
			Replica:   replica,
			Request:   req,
			Response:  noResponse(TransportUnknownFailure),
			Verdict:   VerdictReject,
			Err:       err,
			Attempt:   attemptIndex,
			StartedAt: start,
			Duration:  time.Since(start),
		}
		s.ordering.Learn(ctx, result)
		return result
	}

	resp, sendErr := s.transport.Send(ctx.Context, transformed, connectTimeout, requestTimeout)
	duration := time.Since(start)

	verdict := s.classifier.Classify(resp)
	result := ReplicaResult{
		Replica:   replica,
		Request:   transformed,
		Response:  resp,
		Verdict:   verdict,
		Err:       sendErr,
		Attempt:   attemptIndex,
		StartedAt: start,
		Duration:  duration,
	}
	s.ordering.Learn(ctx, result)
	return result
}
