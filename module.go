package clusterclient

import "sort"

// NextFunc is the continuation a Module invokes to hand control to the
// next module in the chain, or to the chain's terminal continuation
// (which returns an empty ClusterResult) if it is last.
type NextFunc func(ctx *RequestContext, req Request) ClusterResult

// Module is one pipeline stage. Execute wraps around next: it may
// inspect or mutate req and ctx before calling next, inspect or mutate
// the ClusterResult next returns, short-circuit without calling next at
// all (for example Throttling rejecting a request outright), or recover
// from a panic next propagates (GlobalErrorHandling).
type Module interface {
	Group() OrdinalGroup
	Execute(ctx *RequestContext, req Request, next NextFunc) ClusterResult
}

type moduleFunc struct {
	group OrdinalGroup
	fn    func(ctx *RequestContext, req Request, next NextFunc) ClusterResult
}

func (m moduleFunc) Group() OrdinalGroup { return m.group }
func (m moduleFunc) Execute(ctx *RequestContext, req Request, next NextFunc) ClusterResult {
	return m.fn(ctx, req, next)
}

// newModule builds a Module from a plain function, for the built-in
// stages that don't need their own named type.
func newModule(group OrdinalGroup, fn func(ctx *RequestContext, req Request, next NextFunc) ClusterResult) Module {
	return moduleFunc{group: group, fn: fn}
}

// OrdinalGroup fixes the nesting order of the pipeline: a module in a
// lower-ordinal group always wraps a module in a higher-ordinal group,
// regardless of the order modules were registered in.
type OrdinalGroup int

const (
	GroupLeakPrevention OrdinalGroup = iota
	GroupGlobalErrorHandling
	GroupLogging
	GroupThrottling
	GroupRequestValidation
	GroupTimeoutValidation
	GroupRequestTransformation
	GroupResponseTransformation
	GroupRetry
	GroupClusterProviderResolution
	GroupExecution
	GroupResultFinalization
)

func (g OrdinalGroup) String() string {
	switch g {
	case GroupLeakPrevention:
		return "LeakPrevention"
	case GroupGlobalErrorHandling:
		return "GlobalErrorHandling"
	case GroupLogging:
		return "Logging"
	case GroupThrottling:
		return "Throttling"
	case GroupRequestValidation:
		return "RequestValidation"
	case GroupTimeoutValidation:
		return "TimeoutValidation"
	case GroupRequestTransformation:
		return "RequestTransformation"
	case GroupResponseTransformation:
		return "ResponseTransformation"
	case GroupRetry:
		return "Retry"
	case GroupClusterProviderResolution:
		return "ClusterProviderResolution"
	case GroupExecution:
		return "Execution"
	default:
		return "ResultFinalization"
	}
}

// buildChain folds modules into a single NextFunc, nesting them
// outermost (lowest Group ordinal) to innermost (highest Group ordinal),
// with terminal as the innermost continuation. Modules are stable-sorted
// by Group first, so registration order only matters within one group.
func buildChain(modules []Module, terminal NextFunc) NextFunc {
	sorted := make([]Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Group() < sorted[j].Group() })

	next := terminal
	for i := len(sorted) - 1; i >= 0; i-- {
		m := sorted[i]
		inner := next
		next = func(ctx *RequestContext, req Request) ClusterResult {
			return m.Execute(ctx, req, inner)
		}
	}
	return next
}
