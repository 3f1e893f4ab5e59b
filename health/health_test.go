package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScalar_IncreaseClampsAtOne(t *testing.T) {
	s := DefaultScalar()
	s = s.Increase(1.5)
	assert.Equal(t, 1.0, s.V)
}

func TestScalar_DecreaseClampsAtFloor(t *testing.T) {
	s := Scalar{V: 0.2}
	s = s.Decrease(0.1, 0.3)
	assert.Equal(t, 0.3, s.V)
}

func TestWithDecay_RecoversLinearlyTowardOne(t *testing.T) {
	now := time.Now()
	decayed := WithDecay{V: 0.5, Pivot: now.Add(-5 * time.Second)}
	weight := decayed.Apply(1.0, now, 10*time.Second)
	assert.InDelta(t, 0.75, weight, 0.01)
}

func TestWithDecay_FullyRecoveredAfterDecayDuration(t *testing.T) {
	now := time.Now()
	decayed := WithDecay{V: 0.2, Pivot: now.Add(-1 * time.Hour)}
	weight := decayed.Apply(1.0, now, 10*time.Second)
	assert.Equal(t, 1.0, weight)
}

func TestCompositePolicy_DecreaseWinsOverIncrease(t *testing.T) {
	p := CompositePolicy(PerCriterionPolicy(), NetworkErrorPolicy())
	assert.Equal(t, Decrease, p.Decide(OutcomeNetworkError))
	assert.Equal(t, Increase, p.Decide(OutcomeAccept))
	assert.Equal(t, Decrease, p.Decide(OutcomeReject))
	assert.Equal(t, DontTouch, p.Decide(OutcomeDontKnow))
}
