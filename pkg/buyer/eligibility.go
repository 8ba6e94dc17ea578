package buyer

import (
	"context"
	"fmt"

	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/metrics"
)

const (
	// ReservedCreatorType and ReservedCreatorID identify the platform's own
	// system account, whose listings are never purchased
	ReservedCreatorType = "User"
	ReservedCreatorID   = 1
)

// Inventory answers ownership questions for a user
type Inventory interface {
	IsOwned(ctx context.Context, userID, itemID uint64) (bool, error)
}

// Filter decides whether an item should be purchased
type Filter struct {
	inventory Inventory
	userID    uint64
	logger    logger.Logger
}

// NewFilter creates a filter for the items of userID
func NewFilter(inv Inventory, userID uint64, log logger.Logger) *Filter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Filter{inventory: inv, userID: userID, logger: log}
}

// IsEligible reports whether item is neither owned already nor listed by
// the reserved system account. Checks short-circuit in that order, so the
// ownership query is always issued. Its errors are returned unchanged in
// meaning and abort the run.
func (f *Filter) IsEligible(ctx context.Context, item marketplace.CatalogItem) (bool, error) {
	owned, err := f.inventory.IsOwned(ctx, f.userID, item.ID)
	if err != nil {
		return false, fmt.Errorf("check ownership of item %d: %w", item.ID, err)
	}
	if owned {
		f.skip(item, metrics.SkipOwned)
		return false, nil
	}

	if item.CreatorType == ReservedCreatorType && item.CreatorTargetID == ReservedCreatorID {
		f.skip(item, metrics.SkipReserved)
		return false, nil
	}

	return true, nil
}

func (f *Filter) skip(item marketplace.CatalogItem, reason string) {
	metrics.ItemsSkipped.WithLabelValues(reason).Inc()
	logger.LogSkip(f.logger, item.ID, reason)
}
