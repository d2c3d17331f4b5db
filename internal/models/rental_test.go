package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRentalStatusTransitions(t *testing.T) {
	allowed := map[RentalStatus][]RentalStatus{
		RentalStatusPending:  {RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled},
		RentalStatusApproved: {RentalStatusCompleted, RentalStatusRejected, RentalStatusCancelled},
	}

	all := []RentalStatus{
		RentalStatusPending, RentalStatusApproved, RentalStatusRejected,
		RentalStatusCompleted, RentalStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRentalStatusTerminal(t *testing.T) {
	assert.False(t, RentalStatusPending.Terminal())
	assert.False(t, RentalStatusApproved.Terminal())
	assert.True(t, RentalStatusRejected.Terminal())
	assert.True(t, RentalStatusCompleted.Terminal())
	assert.True(t, RentalStatusCancelled.Terminal())
}

func TestRentalStatusValid(t *testing.T) {
	assert.True(t, RentalStatusPending.Valid())
	assert.False(t, RentalStatus("paused").Valid())
	assert.False(t, RentalStatus("").Valid())
}
