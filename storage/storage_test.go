package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_TryAddOnlyOnce(t *testing.T) {
	m := New[string, int]()
	assert.True(t, m.TryAdd("a", 1))
	assert.False(t, m.TryAdd("a", 2))
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMap_TryUpdateFailsOnStaleExpected(t *testing.T) {
	m := New[string, int]()
	m.TryAdd("a", 1)
	assert.False(t, m.TryUpdate("a", 3, 2))
	assert.True(t, m.TryUpdate("a", 3, 1))
	v, _ := m.Get("a")
	assert.Equal(t, 3, v)
}

func TestMap_GetOrAddInstallsOnce(t *testing.T) {
	m := New[string, int]()
	calls := 0
	factory := func() int { calls++; return 42 }
	assert.Equal(t, 42, m.GetOrAdd("a", factory))
	assert.Equal(t, 42, m.GetOrAdd("a", factory))
	assert.Equal(t, 1, m.Len())
}
