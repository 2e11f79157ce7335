package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryLookupAbsent(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("unknown")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Register("user-1", "conn-a")
	r.Register("user-1", "conn-b")

	connID, ok := r.Lookup("user-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-b", connID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Register("user-1", "conn-a")

	r.Remove("user-1")
	_, ok := r.Lookup("user-1")
	assert.False(t, ok)

	// Removing again is a no-op.
	r.Remove("user-1")
	assert.Equal(t, 0, r.Len())
}

func TestRegistryLookupMany(t *testing.T) {
	r := NewRegistry()
	r.Register("user-1", "conn-a")
	r.Register("user-2", "conn-b")
	r.Register("user-3", "conn-b")

	got := r.LookupMany([]string{"user-2", "", "user-1", "offline", "user-3"})

	// Caller order preserved, empty ids and offline users dropped, one
	// entry per connection.
	assert.Equal(t, []string{"conn-b", "conn-a"}, got)
}

func TestRegistryLookupManyEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.LookupMany(nil))
	assert.Empty(t, r.LookupMany([]string{"nobody"}))
}
