package buyer

import (
	"context"
	"errors"
	"testing"

	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	owned map[uint64]bool
	err   error
	calls []uint64
}

func (f *fakeInventory) IsOwned(ctx context.Context, userID, itemID uint64) (bool, error) {
	f.calls = append(f.calls, itemID)
	if f.err != nil {
		return false, f.err
	}
	return f.owned[itemID], nil
}

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name  string
		item  marketplace.CatalogItem
		owned bool
		want  bool
	}{
		{
			name: "unowned group item",
			item: marketplace.CatalogItem{ID: 1, CreatorType: "Group", CreatorTargetID: 1},
			want: true,
		},
		{
			name: "unowned user item",
			item: marketplace.CatalogItem{ID: 1, CreatorType: "User", CreatorTargetID: 2},
			want: true,
		},
		{
			name:  "owned",
			item:  marketplace.CatalogItem{ID: 1, CreatorType: "Group", CreatorTargetID: 9},
			owned: true,
			want:  false,
		},
		{
			name: "reserved system account",
			item: marketplace.CatalogItem{ID: 1, CreatorType: "User", CreatorTargetID: 1},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInventory{owned: map[uint64]bool{tt.item.ID: tt.owned}}
			f := NewFilter(inv, 42, logger.NewNopLogger())

			got, err := f.IsEligible(context.Background(), tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []uint64{tt.item.ID}, inv.calls)
		})
	}
}

func TestIsEligibleLogsSkipReason(t *testing.T) {
	inv := &fakeInventory{owned: map[uint64]bool{7: true}}
	log := logger.NewTestLogger()
	f := NewFilter(inv, 42, log)

	_, err := f.IsEligible(context.Background(), marketplace.CatalogItem{ID: 7})
	require.NoError(t, err)

	msgs := log.GetMessagesByLevel("DEBUG")
	require.Len(t, msgs, 1)
	assert.Equal(t, "owned", msgs[0].Fields["reason"])
}

func TestIsEligiblePropagatesErrors(t *testing.T) {
	boom := errors.New("inventory unavailable")
	f := NewFilter(&fakeInventory{err: boom}, 42, logger.NewNopLogger())

	_, err := f.IsEligible(context.Background(), marketplace.CatalogItem{ID: 3})
	assert.ErrorIs(t, err, boom)
}
