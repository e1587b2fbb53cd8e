package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/testutil"
)

func TestGroup_StopAllCancelsPending(t *testing.T) {
	mc := testutil.NewManualClock()
	g := clock.NewGroup(mc)

	fired := 0
	g.AfterFunc(time.Second, func() { fired++ })
	g.AfterFunc(2*time.Second, func() { fired++ })
	g.AfterFunc(3*time.Second, func() { fired++ })

	mc.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 2, g.Len(), "fired timer is dropped from the group")

	assert.Equal(t, 2, g.StopAll())
	assert.Equal(t, 0, g.Len())

	mc.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestGroup_StopSingle(t *testing.T) {
	mc := testutil.NewManualClock()
	g := clock.NewGroup(mc)

	fired := false
	timer := g.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.Equal(t, 0, g.Len())

	mc.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, g.StopAll())
}

func TestScaled_SpeedsUpTimersAndNow(t *testing.T) {
	mc := testutil.NewManualClock()
	s := clock.NewScaled(mc, 4)
	start := s.Now()

	fired := false
	s.AfterFunc(8*time.Second, func() { fired = true })

	mc.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 4*time.Second, s.Now().Sub(start))

	mc.Advance(time.Second)
	assert.True(t, fired)
	assert.Equal(t, 8*time.Second, s.Now().Sub(start))
}

func TestScaled_NonPositiveFactor(t *testing.T) {
	mc := testutil.NewManualClock()
	s := clock.NewScaled(mc, 0)
	start := s.Now()
	mc.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, s.Now().Sub(start))
}

func TestSystem_AfterFuncStops(t *testing.T) {
	timer := clock.System{}.AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
}
