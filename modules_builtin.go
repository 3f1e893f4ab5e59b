package clusterclient

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"clusterhttp/logging"
	"clusterhttp/metrics"
	"clusterhttp/throttle"
	"clusterhttp/tracing"
)

// newLeakPreventionModule closes every replica attempt's response body
// stream except the one selected as the final Response, so a hedged or
// retried request never leaks a connection held open by a losing sibling.
func newLeakPreventionModule() Module {
	return newModule(GroupLeakPrevention, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		result := next(ctx, req)
		selected := result.Response.Body.Stream
		for _, r := range result.Results {
			stream := r.Response.Body.Stream
			if stream == nil || stream == selected {
				continue
			}
			stream.Close()
		}
		return result
	})
}

// newGlobalErrorHandlingModule recovers any panic raised by an inner
// module or collaborator and turns it into ClusterResultUnexpectedException,
// so a bug in a user-supplied WeightModifier or Transport cannot crash the
// calling goroutine.
func newGlobalErrorHandlingModule(logger logging.Logger) Module {
	return newModule(GroupGlobalErrorHandling, func(ctx *RequestContext, req Request, next NextFunc) (result ClusterResult) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).Error("clusterhttp: recovered panic in pipeline")
				result = ClusterResult{Status: ClusterResultUnexpectedException, Response: noResponse(TransportUnknownFailure)}
			}
		}()
		return next(ctx, req)
	})
}

// newLoggingModule stamps every logical request with a correlation ID and
// logs its start and its final outcome.
func newLoggingModule(logger logging.Logger) Module {
	return newModule(GroupLogging, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		ctx.ID = uuid.NewString()
		entry := logger.WithField("requestID", ctx.ID).WithField("method", string(req.Method)).WithField("url", req.URL)
		entry.Debug("clusterhttp: request starting")

		spanCtx, span := tracing.StartRequest(ctx.Context, string(req.Method), req.URL)
		ctx.Context = spanCtx

		result := next(ctx, req)

		outcome := entry.WithField("status", result.Status.String()).WithField("attempts", len(result.Results))
		if result.Status == ClusterResultSuccess {
			outcome.Debug("clusterhttp: request finished")
		} else {
			outcome.Warn("clusterhttp: request finished")
		}
		tracing.EndRequest(span, result.Status.String())
		return result
	})
}

// newRequestValidationModule rejects a request outright, before any
// replica work happens, when validateMethod is set and the request's
// method isn't one of the eight enumerated Methods, or when the request
// carries a single-use streaming body paired with a strategy that issues
// concurrent attempts (Parallel, Forking) and would hand that same stream
// to more than one replica at once.
func newRequestValidationModule(validateMethod bool, strategy RequestStrategy) Module {
	return newModule(GroupRequestValidation, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		if validateMethod && !req.Method.Valid() {
			return ClusterResult{Status: ClusterResultIncorrectArguments, Response: noResponse(TransportUnknownFailure)}
		}
		if req.Body.Streaming() && !strategy.AllowsStreamingBody() {
			return ClusterResult{Status: ClusterResultIncorrectArguments, Response: noResponse(TransportUnknownFailure)}
		}
		return next(ctx, req)
	})
}

// newTimeoutValidationModule clips the request's time budget to maxTimeout
// when the budget's total exceeds it, preserving the elapsed
// time already charged against the budget.
func newTimeoutValidationModule(maxTimeout time.Duration) Module {
	return newModule(GroupTimeoutValidation, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		if maxTimeout > 0 && ctx.Budget.Total() > maxTimeout {
			ctx.Budget = rebaseTimeBudget(ctx.Budget, maxTimeout)
		}
		return next(ctx, req)
	})
}

// newThrottlingModule applies gate's admission decision before any
// cluster work happens, and reports the logical request's eventual
// success back into the gate's ratio formula.
func newThrottlingModule(gate *throttle.Gate) Module {
	return newModule(GroupThrottling, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		if !gate.Allow() {
			return ClusterResult{Status: ClusterResultThrottled, Response: noResponse(TransportUnknownFailure)}
		}
		result := next(ctx, req)
		gate.Report(result.Status == ClusterResultSuccess)
		return result
	})
}

// newRequestTransformationModule applies transforms, in order, to the
// request before anything downstream sees it.
func newRequestTransformationModule(transforms ...func(Request) Request) Module {
	return newModule(GroupRequestTransformation, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		for _, t := range transforms {
			req = t(req)
		}
		return next(ctx, req)
	})
}

// newResponseTransformationModule applies transforms, in order, to the
// final selected Response once the whole retry loop below it settles.
func newResponseTransformationModule(transforms ...func(Response) Response) Module {
	return newModule(GroupResponseTransformation, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		result := next(ctx, req)
		for _, t := range transforms {
			result.Response = t(result.Response)
		}
		return result
	})
}

// newRetryModule repeatedly invokes next — re-resolving the cluster and
// re-running the dispatch strategy each time — until policy says to stop
// or the time budget is spent, accumulating every attempt's ReplicaResult
// across every pass.
func newRetryModule(policy RetryPolicy) Module {
	return newModule(GroupRetry, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		var accumulated []ReplicaResult
		var final ClusterResult
		for attemptIndex := 0; ; attemptIndex++ {
			final = next(ctx, req)
			accumulated = append(accumulated, final.Results...)
			final.Results = accumulated
			if !policy.ShouldRetry(attemptIndex, final) {
				return final
			}
			if ctx.Budget.HasExpired() {
				return final
			}
		}
	})
}

// newClusterProviderResolutionModule resolves the current replica set for
// this attempt (or retry pass) from provider and fails fast if the
// cluster is unreachable or empty. When dedupe is set, replicas sharing a
// normalized URL are merged into one entry before anything downstream
// sees the set, regardless of whether provider already deduplicates.
func newClusterProviderResolutionModule(provider ClusterProvider, dedupe bool) Module {
	return newModule(GroupClusterProviderResolution, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		replicas, err := provider.GetCluster()
		if err != nil || len(replicas) == 0 {
			return ClusterResult{Status: ClusterResultReplicasNotFound, Response: noResponse(TransportUnknownFailure)}
		}
		if dedupe {
			replicas = dedupeReplicas(replicas)
		}
		ctx.Replicas = replicas
		return next(ctx, req)
	})
}

// newExecutionModule orders ctx.Replicas, drives the configured
// RequestStrategy over them, and stashes the raw ReplicaResults on ctx
// without computing a Status or Response — that is
// newResultFinalizationModule's job, immediately inside this one, whose
// result this module returns.
func newExecutionModule(ordering *OrderingEngine, snd *sender, strategy RequestStrategy, maxReplicas int, recorder *metrics.Recorder) Module {
	return newModule(GroupExecution, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		stream := ordering.Order(ctx, ctx.Replicas)

		var attemptCounter int64
		attemptFn := AttemptFunc(func(c *RequestContext, replica Replica, connectTimeout, requestTimeout time.Duration) ReplicaResult {
			idx := int(atomic.AddInt64(&attemptCounter, 1))
			spanCtx, span := tracing.StartAttempt(c.Context, replica.String(), idx)
			result := snd.attempt(c.withContext(spanCtx), replica, req, connectTimeout, requestTimeout, idx)
			tracing.EndAttempt(span, result.Response.StatusCode, result.Verdict.String(), result.Err)
			if recorder != nil {
				recorder.ObserveAttempt(result.Response.Verdict.String(), result.Duration)
			}
			return result
		})

		results := strategy.Execute(ctx, stream, attemptFn, maxReplicas)
		ctx.rawResults = results
		return next(ctx, req)
	})
}

// newResultFinalizationModule computes the terminal Status and selected
// Response from the raw ReplicaResults newExecutionModule stashed on ctx.
// It is the innermost module, calling the pipeline's terminal directly.
func newResultFinalizationModule(statusSelector ClusterResultStatusSelector, responseSelector ResponseSelector, recorder *metrics.Recorder) Module {
	return newModule(GroupResultFinalization, func(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
		result := next(ctx, req)
		result.Results = ctx.rawResults

		canceled := make(chan struct{})
		if ctx.Context.Err() != nil {
			close(canceled)
		}
		result.Status = statusSelector.Select(result.Results, ctx.Budget, canceled)
		result.Response = responseSelector.Select(req, ctx.Params, result.Results)

		if recorder != nil {
			recorder.ObserveClusterResult(result.Status.String())
		}
		return result
	})
}
