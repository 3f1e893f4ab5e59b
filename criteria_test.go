package clusterclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassifier_RejectsEmptyList(t *testing.T) {
	_, err := NewClassifier()
	assert.ErrorIs(t, err, ErrEmptyCriteriaList)
}

func TestNewClassifier_RejectsNilEntry(t *testing.T) {
	_, err := NewClassifier(nil, AlwaysAccept)
	assert.ErrorIs(t, err, ErrNilListEntry)
}

func TestNewClassifier_RequiresTerminalLast(t *testing.T) {
	nonTerminal := NewStatusCategoryCriterion(func(StatusCategory) bool { return true }, nil)
	_, err := NewClassifier(nonTerminal)
	assert.ErrorIs(t, err, ErrNonTerminalLastCriterion)
}

func TestClassifier_FirstNonDontKnowWins(t *testing.T) {
	c, err := NewClassifier(
		NewNetworkErrorCriterion(),
		NewStatusCategoryCriterion(
			func(c StatusCategory) bool { return c == CategorySuccess },
			func(c StatusCategory) bool { return c == CategoryServerFailure },
		),
		AlwaysReject,
	)
	require.NoError(t, err)

	assert.Equal(t, VerdictAccept, c.Classify(Response{Category: CategorySuccess, Verdict: TransportSuccess}))
	assert.Equal(t, VerdictReject, c.Classify(Response{Category: CategoryServerFailure, Verdict: TransportSuccess}))
	assert.Equal(t, VerdictReject, c.Classify(Response{Verdict: TransportTimeout}))
	assert.Equal(t, VerdictReject, c.Classify(Response{Category: CategoryRedirection, Verdict: TransportSuccess}))
}

func TestNewTimeoutCriterion_OnlyRejectsTimeout(t *testing.T) {
	c := NewTimeoutCriterion()
	assert.Equal(t, VerdictReject, c.Decide(Response{Verdict: TransportTimeout}))
	assert.Equal(t, VerdictDontKnow, c.Decide(Response{Verdict: TransportConnectFailure}))
	assert.Equal(t, VerdictDontKnow, c.Decide(Response{Verdict: TransportSuccess}))
}
