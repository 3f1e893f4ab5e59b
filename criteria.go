package clusterclient

// ResponseCriterion is one vote in a Classifier's ordered list: given a
// response, decide Accept, Reject, or abstain with DontKnow.
type ResponseCriterion interface {
	Decide(resp Response) Verdict
}

type criterionFunc func(Response) Verdict

func (f criterionFunc) Decide(r Response) Verdict { return f(r) }

// terminalCriterion marks a ResponseCriterion as guaranteed to never
// return DontKnow, which Classifier validation requires of the last
// entry in a criteria list.
type terminalCriterion struct{ ResponseCriterion }

func (terminalCriterion) terminal() {}

type isTerminal interface{ terminal() }

// Terminal wraps c so Classifier validation accepts it as the mandatory
// last entry in a criteria list. Only use it when c truly never returns
// DontKnow.
func Terminal(c ResponseCriterion) ResponseCriterion { return terminalCriterion{c} }

// AlwaysAccept is the terminal criterion that accepts every response.
var AlwaysAccept ResponseCriterion = Terminal(criterionFunc(func(Response) Verdict { return VerdictAccept }))

// AlwaysReject is the terminal criterion that rejects every response.
var AlwaysReject ResponseCriterion = Terminal(criterionFunc(func(Response) Verdict { return VerdictReject }))

// NewStatusCategoryCriterion accepts responses whose category satisfies
// accept, rejects responses whose category satisfies reject, and
// abstains otherwise. Typical use: accept Success, reject ServerFailure
// and NetworkFailure, abstain (DontKnow) on everything else so a later
// criterion gets a say.
func NewStatusCategoryCriterion(accept, reject func(StatusCategory) bool) ResponseCriterion {
	return criterionFunc(func(r Response) Verdict {
		if accept != nil && accept(r.Category) {
			return VerdictAccept
		}
		if reject != nil && reject(r.Category) {
			return VerdictReject
		}
		return VerdictDontKnow
	})
}

// NewNetworkErrorCriterion rejects any attempt whose transport verdict
// was not Success, and abstains otherwise, leaving status-code judgment
// to later criteria.
func NewNetworkErrorCriterion() ResponseCriterion {
	return criterionFunc(func(r Response) Verdict {
		if r.Verdict != TransportSuccess {
			return VerdictReject
		}
		return VerdictDontKnow
	})
}

// NewTimeoutCriterion rejects only attempts whose transport verdict was
// Timeout, and abstains otherwise.
func NewTimeoutCriterion() ResponseCriterion {
	return criterionFunc(func(r Response) Verdict {
		if r.Verdict == TransportTimeout {
			return VerdictReject
		}
		return VerdictDontKnow
	})
}

// Classifier applies an ordered list of criteria to a response, returning
// the first non-DontKnow verdict.
type Classifier struct {
	criteria []ResponseCriterion
}

// NewClassifier validates that criteria is non-empty, contains no nil
// entries, and that its last entry is a terminal criterion.
func NewClassifier(criteria ...ResponseCriterion) (*Classifier, error) {
	if len(criteria) == 0 {
		return nil, ErrEmptyCriteriaList
	}
	for _, c := range criteria {
		if c == nil {
			return nil, ErrNilListEntry
		}
	}
	if _, ok := criteria[len(criteria)-1].(isTerminal); !ok {
		return nil, ErrNonTerminalLastCriterion
	}
	return &Classifier{criteria: criteria}, nil
}

// Classify returns the first non-DontKnow verdict among the configured
// criteria, in order.
func (c *Classifier) Classify(resp Response) Verdict {
	for _, criterion := range c.criteria {
		if v := criterion.Decide(resp); v != VerdictDontKnow {
			return v
		}
	}
	return VerdictDontKnow
}
