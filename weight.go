package clusterclient

const leadershipStorageScope = "leadership"

// LeadershipModifier is the WeightModifier that keeps ordinary requests
// pinned to a known cluster leader and falls back to the uniform weights
// every other modifier already computed once the leader's own result
// stops being classified as a leader result (for example after a
// failover). nonLeaderWeight is the multiplier applied to every replica
// that is not the currently known leader, while a leader is known at all;
// it is typically 0 to exclude followers outright, but a small positive
// value lets a follower still receive an occasional probe request.
type LeadershipModifier struct {
	detector        LeaderResultDetector
	nonLeaderWeight float64
}

// NewLeadershipModifier returns a LeadershipModifier using detector to
// recognize leader results.
func NewLeadershipModifier(detector LeaderResultDetector, nonLeaderWeight float64) *LeadershipModifier {
	return &LeadershipModifier{detector: detector, nonLeaderWeight: nonLeaderWeight}
}

// Modify leaves the weight of a known leader untouched, scales every other
// replica's weight by nonLeaderWeight once a leader is known among
// allReplicas, and otherwise leaves every weight untouched (uniform
// fallback, since no leader has been learned yet).
func (m *LeadershipModifier) Modify(ctx *RequestContext, replica Replica, allReplicas []Replica, weight *float64) {
	store := obtainStorage[bool](ctx.registry, leadershipStorageScope)

	if isLeader, ok := store.Get(replica); ok && isLeader {
		return
	}
	for _, other := range allReplicas {
		if otherIsLeader, ok := store.Get(other); ok && otherIsLeader {
			*weight *= m.nonLeaderWeight
			return
		}
	}
}

// Learn promotes result.Replica to leader when detector recognizes it as
// a leader result, and demotes it back to non-leader the first time a
// later result from the same replica no longer looks like a leader
// result (for example once the real leader moves elsewhere).
func (m *LeadershipModifier) Learn(ctx *RequestContext, result ReplicaResult) {
	store := obtainStorage[bool](ctx.registry, leadershipStorageScope)
	isLeader := m.detector.IsLeaderResult(result)

	for {
		cur, ok := store.Get(result.Replica)
		switch {
		case isLeader && (!ok || !cur):
			if !ok {
				if store.TryAdd(result.Replica, true) {
					return
				}
				continue
			}
			if store.TryUpdate(result.Replica, true, cur) {
				return
			}
		case !isLeader && ok && cur:
			if store.TryUpdate(result.Replica, false, true) {
				return
			}
		default:
			return
		}
	}
}
