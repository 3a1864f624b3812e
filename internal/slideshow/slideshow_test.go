package slideshow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapOnOverflowExits(t *testing.T) {
	var s Show
	assert.True(t, s.Enter(3))

	s.HandleKey("ArrowRight")
	s.HandleKey("ArrowRight")
	assert.True(t, s.Active())
	assert.Equal(t, 2, s.Pointer())

	s.HandleKey("ArrowRight")
	assert.False(t, s.Active())
	assert.Equal(t, 0, s.Pointer())
}

func TestPrevFloorsAtZero(t *testing.T) {
	var s Show
	s.Enter(3)
	s.HandleKey("ArrowLeft")
	assert.Equal(t, 0, s.Pointer())
	assert.True(t, s.Active())

	s.HandleKey("right")
	s.HandleKey("left")
	assert.Equal(t, 0, s.Pointer())
}

func TestEnterResetsPointer(t *testing.T) {
	var s Show
	s.Enter(5)
	s.Next()
	s.Next()
	s.Enter(5)
	assert.Equal(t, 0, s.Pointer())
}

func TestExitAnyWayResets(t *testing.T) {
	var s Show
	s.Enter(4)
	s.Next()
	assert.True(t, s.HandleKey("Escape"))
	assert.Equal(t, Inactive, s.State())
	assert.Equal(t, 0, s.Pointer())

	s.Enter(4)
	s.Next()
	s.Exit()
	assert.Equal(t, 0, s.Pointer())
}

func TestKeysIgnoredWhileInactive(t *testing.T) {
	var s Show
	assert.False(t, s.HandleKey("ArrowRight"))
	assert.Equal(t, 0, s.Pointer())
	assert.False(t, s.Active())
}

func TestUnknownKeyNotConsumed(t *testing.T) {
	var s Show
	s.Enter(2)
	assert.False(t, s.HandleKey("x"))
	assert.True(t, s.Active())
}

func TestEnterEmptyDeck(t *testing.T) {
	var s Show
	assert.False(t, s.Enter(0))
	assert.False(t, s.Active())
}

func TestSingleSlideDeck(t *testing.T) {
	var s Show
	s.Enter(1)
	s.Next()
	assert.False(t, s.Active())
	assert.Equal(t, "inactive", s.State().String())
}
