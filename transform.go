package clusterclient

import "net/url"

// defaultReplicaTransform rebases a request's URL against the chosen
// replica's base URL when the request URL is relative (no scheme/host of
// its own), and leaves an already-absolute request URL untouched.
type defaultReplicaTransform struct{}

// NewDefaultReplicaTransform returns the built-in rebase-if-relative
// ReplicaTransform.
func NewDefaultReplicaTransform() ReplicaTransform { return defaultReplicaTransform{} }

func (defaultReplicaTransform) Transform(replica Replica, request Request) (Request, error) {
	ref, err := url.Parse(request.URL)
	if err != nil {
		return Request{}, err
	}
	if ref.IsAbs() {
		return request, nil
	}
	base, err := replica.URL()
	if err != nil {
		return Request{}, err
	}
	out := request.Clone()
	out.URL = base.ResolveReference(ref).String()
	return out, nil
}
