package clusterclient

// StaticClusterProvider serves a fixed, deduplicated replica set handed
// to it at construction time. It never errors and never changes; it
// exists for tests and for deployments whose cluster membership is
// configured once at process startup rather than discovered.
type StaticClusterProvider struct {
	replicas []Replica
}

// NewStaticClusterProvider returns a StaticClusterProvider over replicas,
// deduplicated by normalized URL.
func NewStaticClusterProvider(replicas ...Replica) *StaticClusterProvider {
	return &StaticClusterProvider{replicas: dedupeReplicas(replicas)}
}

func (p *StaticClusterProvider) GetCluster() ([]Replica, error) {
	return p.replicas, nil
}
