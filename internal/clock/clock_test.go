package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepping(t *testing.T) {
	c := NewStepping(5 * MICROSECOND)

	assert.EqualValues(t, 0, c.Now())
	assert.EqualValues(t, 5000, c.Now())
	assert.EqualValues(t, 10000, c.Now())
}

func TestReal(t *testing.T) {
	c := NewReal()

	first := c.Now()
	assert.GreaterOrEqual(t, c.Now(), first)
}
