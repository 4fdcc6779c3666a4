package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterDeniesOverCap(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Admit(), "call %d should be admitted", i+1)
	}
	assert.False(t, rl.Admit(), "call over the cap should be denied")

	stats := rl.Stats()
	assert.Equal(t, 3, stats.Granted)
	assert.Equal(t, 1, stats.Denied)
	assert.Equal(t, 0, stats.Remaining)
}

func TestRateLimiterWindowRecovers(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	assert.True(t, rl.Admit())
	assert.True(t, rl.Admit())
	assert.False(t, rl.Admit())

	// Denials do not consume capacity once the window slides past.
	current = current.Add(61 * time.Second)
	assert.True(t, rl.Admit())

	stats := rl.Stats()
	assert.Equal(t, 1, stats.InWindow)
	assert.Equal(t, 1, stats.Remaining)
}

func TestRateLimiterDenialDoesNotRecordCall(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Admit())
	assert.False(t, rl.Admit())
	assert.False(t, rl.Admit())

	assert.Equal(t, 1, rl.Stats().InWindow)
}
