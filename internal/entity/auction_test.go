package entity

import (
	"testing"
	"time"

	"auction-management-api/internal/common"

	"github.com/stretchr/testify/require"
)

func TestAuction_OpenForBids(t *testing.T) {
	now := time.Now().UTC()
	auction := Auction{Status: common.Active, EndDate: now.Add(time.Hour)}

	require.True(t, auction.OpenForBids(now))

	auction.Status = common.Published
	require.False(t, auction.OpenForBids(now))

	auction.Status = common.Extended
	require.True(t, auction.OpenForBids(now))

	require.False(t, auction.OpenForBids(now.Add(2*time.Hour)))
}

func TestAuction_ApplyExtension(t *testing.T) {
	policy := ExtensionPolicy{Window: 10 * time.Minute, MaxExtensions: 5}
	now := time.Now().UTC()

	t.Run("bid_inside_window_extends", func(t *testing.T) {
		end := now.Add(3 * time.Minute)
		auction := Auction{Status: common.Active, EndDate: end}

		require.True(t, auction.ApplyExtension(now, policy))
		require.Equal(t, end.Add(10*time.Minute), auction.EndDate)
		require.Equal(t, 1, auction.ExtensionsUsed)
		require.Equal(t, common.Extended, auction.Status)
	})

	t.Run("bid_outside_window_does_not_extend", func(t *testing.T) {
		auction := Auction{Status: common.Active, EndDate: now.Add(time.Hour)}

		require.False(t, auction.ApplyExtension(now, policy))
		require.Equal(t, 0, auction.ExtensionsUsed)
		require.Equal(t, common.Active, auction.Status)
	})

	t.Run("extension_cap_is_enforced", func(t *testing.T) {
		auction := Auction{Status: common.Extended, EndDate: now.Add(time.Minute), ExtensionsUsed: 5}

		require.False(t, auction.ApplyExtension(now, policy))
		require.Equal(t, 5, auction.ExtensionsUsed)
	})

	t.Run("consecutive_extensions_up_to_cap", func(t *testing.T) {
		auction := Auction{Status: common.Active, EndDate: now.Add(time.Minute)}

		for i := 0; i < 5; i++ {
			bidTime := auction.EndDate.Add(-time.Minute)
			require.True(t, auction.ApplyExtension(bidTime, policy))
		}
		require.Equal(t, 5, auction.ExtensionsUsed)

		bidTime := auction.EndDate.Add(-time.Minute)
		require.False(t, auction.ApplyExtension(bidTime, policy))
	})
}
