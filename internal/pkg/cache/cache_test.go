package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New[int](time.Minute, 4)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestExpiry(t *testing.T) {
	c := New[string](time.Minute, 4)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("k", "v")
	current = current.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok, "entry must expire after the TTL")
}

func TestBoundedSize(t *testing.T) {
	c := New[int](time.Minute, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.LessOrEqual(t, len(c.entries), 2)
	got, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestDelete(t *testing.T) {
	c := New[int](time.Minute, 4)
	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
