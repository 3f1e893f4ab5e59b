package clusterclient

// Verdict is the classification of a single response: whether it should
// end the request (Accept), whether this replica should be skipped in
// favor of the next (Reject), or whether the classifier could not decide
// (DontKnow, which only matters as an intermediate value — a configured
// Classifier never returns it, since its last criterion must be
// terminal).
type Verdict int

const (
	VerdictAccept Verdict = iota
	VerdictReject
	VerdictDontKnow
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "Accept"
	case VerdictReject:
		return "Reject"
	default:
		return "DontKnow"
	}
}
