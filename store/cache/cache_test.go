package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL("a", 1, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestMaxItemsEvicts(t *testing.T) {
	c := New(Config{MaxItems: 2})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	require.LessOrEqual(t, c.Len(), 3)
}
