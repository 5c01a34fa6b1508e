package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRandomFaults_ClampsRate(t *testing.T) {
	assert.Equal(t, 0.0, NewRandomFaults(-0.5).Rate())
	assert.Equal(t, 1.0, NewRandomFaults(3).Rate())
	assert.Equal(t, 0.2, NewRandomFaults(0.2).Rate())
}

func TestRandomFaults_Extremes(t *testing.T) {
	never := NewRandomFaults(0)
	always := NewRandomFaults(1)
	for i := 0; i < 100; i++ {
		assert.False(t, never.ShouldFail())
		assert.True(t, always.ShouldFail())
	}
}

func TestFaultsFor(t *testing.T) {
	assert.IsType(t, NoFaults{}, FaultsFor(0))
	assert.IsType(t, &RandomFaults{}, FaultsFor(0.3))
}

func TestFaultSequence(t *testing.T) {
	f := NewFaultSequence(true, false, true)

	assert.True(t, f.ShouldFail())
	assert.False(t, f.ShouldFail())
	assert.True(t, f.ShouldFail())
	assert.False(t, f.ShouldFail(), "exhausted sequence never fails")
	assert.Equal(t, 4, f.Draws())
}

func TestStaticInjectors(t *testing.T) {
	assert.False(t, NoFaults{}.ShouldFail())
	assert.True(t, AlwaysFail{}.ShouldFail())
}

func TestFaultStage_String(t *testing.T) {
	assert.Equal(t, "none", FaultNone.String())
	assert.Equal(t, "before_replay", FaultBeforeReplay.String())
	assert.Equal(t, "before_mutation", FaultBeforeMutation.String())
}
