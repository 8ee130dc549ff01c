package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuctionStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    AuctionStatus
		to      AuctionStatus
		allowed bool
	}{
		{"draft_to_published", Draft, Published, true},
		{"draft_to_active", Draft, Active, true},
		{"draft_to_ended", Draft, Ended, false},
		{"published_to_active", Published, Active, true},
		{"published_to_awarded", Published, Awarded, false},
		{"active_to_extended", Active, Extended, true},
		{"active_to_ended", Active, Ended, true},
		{"active_to_no_bids", Active, NoBids, true},
		{"active_to_awarded", Active, Awarded, false},
		{"extended_again", Extended, Extended, true},
		{"extended_to_ended", Extended, Ended, true},
		{"ended_to_awarded", Ended, Awarded, true},
		{"ended_to_active", Ended, Active, false},
		{"draft_to_cancelled", Draft, Cancelled, true},
		{"active_to_cancelled", Active, Cancelled, true},
		{"ended_to_cancelled", Ended, Cancelled, true},
		{"awarded_to_cancelled", Awarded, Cancelled, false},
		{"no_bids_to_cancelled", NoBids, Cancelled, false},
		{"cancelled_to_cancelled", Cancelled, Cancelled, false},
		{"awarded_to_anything", Awarded, Ended, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestAuctionStatus_Terminal(t *testing.T) {
	require.True(t, Awarded.Terminal())
	require.True(t, NoBids.Terminal())
	require.True(t, Cancelled.Terminal())
	require.False(t, Draft.Terminal())
	require.False(t, Active.Terminal())
	require.False(t, Extended.Terminal())
	require.False(t, Ended.Terminal())
}

func TestAuctionStatus_Open(t *testing.T) {
	require.True(t, Active.Open())
	require.True(t, Extended.Open())
	require.False(t, Published.Open())
	require.False(t, Ended.Open())
}
