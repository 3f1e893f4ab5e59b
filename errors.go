package clusterclient

import "github.com/pkg/errors"

// Sentinel causes surfaced through Response.Verdict translation and
// Config validation. Wrapped with github.com/pkg/errors so callers that
// care can unwrap a stack trace during incident triage.
var (
	ErrConnectTimeout    = errors.New("clusterhttp: connect timeout")
	ErrClientClosed      = errors.New("clusterhttp: client closed")
	ErrTransportRequired = errors.New("clusterhttp: transport is required")
	ErrClusterProviderRequired = errors.New("clusterhttp: cluster provider is required")
	ErrInvalidTimeout    = errors.New("clusterhttp: defaultTimeout must be positive")
	ErrInvalidReplicaCap = errors.New("clusterhttp: maxReplicasUsedPerRequest must be positive")
	ErrNonTerminalLastCriterion = errors.New("clusterhttp: last response criterion must be terminal")
	ErrEmptyCriteriaList = errors.New("clusterhttp: criteria list must not be empty")
	ErrNilListEntry      = errors.New("clusterhttp: list entry must not be nil")
)

func errNotAbsoluteURL(raw string) error {
	return errors.Errorf("clusterhttp: replica URL %q is not absolute", raw)
}
