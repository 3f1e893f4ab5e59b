package clusterclient

import (
	"net/url"
	"strings"
)

// Replica is one concrete server endpoint belonging to a logical cluster.
// Equality is ordinal on the normalized URL, so two Replica values built
// from the same address always compare equal regardless of how the raw
// string's scheme and host were cased or whether its path ended in a
// slash; path case is kept as given. Replica is immutable and safe to
// use as a map key.
type Replica struct {
	normalized string
}

// NewReplica parses rawURL and returns a normalized Replica.
func NewReplica(rawURL string) (Replica, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Replica{}, err
	}
	if !u.IsAbs() {
		return Replica{}, errNotAbsoluteURL(rawURL)
	}
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	return Replica{normalized: u.String()}, nil
}

// MustReplica is NewReplica for call sites (tests, static cluster lists)
// that already know the URL is well-formed.
func MustReplica(rawURL string) Replica {
	r, err := NewReplica(rawURL)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the normalized base URL.
func (r Replica) String() string { return r.normalized }

// URL parses the normalized string back into a *url.URL. It is cheap
// enough to call per attempt but is not cached, since Replica must stay a
// small comparable value usable as a map key.
func (r Replica) URL() (*url.URL, error) { return url.Parse(r.normalized) }

// IsZero reports whether r is the zero Replica (no URL set).
func (r Replica) IsZero() bool { return r.normalized == "" }

func dedupeReplicas(in []Replica) []Replica {
	seen := make(map[Replica]struct{}, len(in))
	out := make([]Replica, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
