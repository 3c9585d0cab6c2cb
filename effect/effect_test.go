package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelClamps(t *testing.T) {
	t.Parallel()

	e := NewEffect("linear", 2.0)
	assert.Equal(t, 0.0, e.Level(-1))
	assert.Equal(t, 0.5, e.Level(1))
	assert.Equal(t, 1.0, e.Level(2))
	assert.Equal(t, 1.0, e.Level(5))
}

func TestLevelZeroAttackIsInstant(t *testing.T) {
	t.Parallel()

	e := NewEffect("linear", 0)
	assert.Equal(t, 1.0, e.Level(0))
}

func TestLevelDefaultsToInQuart(t *testing.T) {
	t.Parallel()

	e := NewEffect("wobble", 1.0)
	// InQuart(0.5) = 0.5^4
	assert.InDelta(t, 0.0625, e.Level(0.5), 1e-12)
}
