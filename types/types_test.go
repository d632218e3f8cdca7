package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeKeyTwoStep(t *testing.T) {
	assert.False(t, BridgeHop.TwoStep())
	assert.True(t, BridgeCBridge.TwoStep())
	assert.True(t, BridgeConnext.TwoStep())
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateQuoting.CanTransition(StateQuoted))
	assert.True(t, StateQuoted.CanTransition(StateStepOnePending))
	assert.True(t, StateStepOnePending.CanTransition(StateStepOneDone))
	assert.True(t, StateStepOnePending.CanTransition(StateComplete))
	assert.True(t, StateStepOneDone.CanTransition(StateStepTwoPending))
	assert.True(t, StateStepTwoPending.CanTransition(StateComplete))

	// no skipping ahead
	assert.False(t, StateQuoting.CanTransition(StateStepOnePending))
	assert.False(t, StateQuoted.CanTransition(StateComplete))
	assert.False(t, StateStepOneDone.CanTransition(StateComplete))

	// no going back
	assert.False(t, StateStepOneDone.CanTransition(StateQuoted))
	assert.False(t, StateComplete.CanTransition(StateStepTwoPending))
}

func TestStateFailureReachability(t *testing.T) {
	for _, s := range []TransferState{StateQuoting, StateQuoted, StateStepOnePending, StateStepOneDone, StateStepTwoPending} {
		assert.True(t, s.CanTransition(StateFailed), "state %s", s)
	}

	// terminal states stay terminal
	assert.False(t, StateComplete.CanTransition(StateFailed))
	assert.False(t, StateFailed.CanTransition(StateFailed))
	assert.False(t, StateFailed.CanTransition(StateQuoted))
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "quoted", StateQuoted.String())
	assert.Equal(t, "step1done", StateStepOneDone.String())
	assert.Equal(t, "failed", StateFailed.String())
}
