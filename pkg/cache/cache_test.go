package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.Set("key", "value")
	got, found := c.Get("key")
	assert.True(t, found)
	assert.Equal(t, "value", got)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.SetWithExpiration("short", "value", 10*time.Millisecond)
	_, found := c.Get("short")
	assert.True(t, found)

	time.Sleep(20 * time.Millisecond)
	_, found = c.Get("short")
	assert.False(t, found)
}

func TestDeleteAndFlush(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	_, found := c.Get("a")
	assert.False(t, found)
	assert.Equal(t, 1, c.Count())

	c.Flush()
	assert.Zero(t, c.Count())
}

func TestMaxItemsEviction(t *testing.T) {
	c := New(time.Minute, 0, 3)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}

	assert.Equal(t, 3, c.Count())
}
