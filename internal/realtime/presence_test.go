package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	s := NewSession("u-1", "Alice", &fakeConn{})

	require.Nil(t, r.Register("u-1", s))
	require.True(t, r.Online("u-1"))
	require.Equal(t, 1, r.Count())

	got, ok := r.Lookup("u-1")
	require.True(t, ok)
	require.Same(t, s, got)

	r.Unregister("u-1")
	require.False(t, r.Online("u-1"))
	require.Zero(t, r.Count())
}

func TestRegistry_RegisterDisplacesPrevious(t *testing.T) {
	r := NewRegistry()
	first := NewSession("u-1", "Alice", &fakeConn{})
	second := NewSession("u-1", "Alice", &fakeConn{})

	require.Nil(t, r.Register("u-1", first))
	displaced := r.Register("u-1", second)
	require.Same(t, first, displaced)

	got, ok := r.Lookup("u-1")
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, r.Count())
}

func TestRegistry_UnregisterSessionGuarded(t *testing.T) {
	r := NewRegistry()
	old := NewSession("u-1", "Alice", &fakeConn{})
	replacement := NewSession("u-1", "Alice", &fakeConn{})

	r.Register("u-1", old)
	r.Register("u-1", replacement)

	// The superseded session's teardown must not evict the replacement.
	require.False(t, r.UnregisterSession("u-1", old))
	require.True(t, r.Online("u-1"))

	require.True(t, r.UnregisterSession("u-1", replacement))
	require.False(t, r.Online("u-1"))
}
