package clusterclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeBudget_RemainingNeverNegative(t *testing.T) {
	b := NewTimeBudget(1 * time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, time.Duration(0), b.Remaining())
	assert.True(t, b.HasExpired())
}

func TestTimeBudget_RemainingDecreases(t *testing.T) {
	b := NewTimeBudget(100 * time.Millisecond)
	first := b.Remaining()
	time.Sleep(5 * time.Millisecond)
	second := b.Remaining()
	assert.Less(t, second, first)
	assert.False(t, b.HasExpired())
}

func TestRebaseTimeBudget_PreservesElapsed(t *testing.T) {
	b := NewTimeBudget(1 * time.Hour)
	time.Sleep(5 * time.Millisecond)
	clipped := rebaseTimeBudget(b, 10*time.Millisecond)
	assert.True(t, clipped.Remaining() <= 5*time.Millisecond)
}
