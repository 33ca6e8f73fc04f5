package savedsearch

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/vitrine/internal/domain"
)

// Batch maps saved search ids to the changes requested for each.
// Searches whose id is absent from the batch are outside its scope.
type Batch map[string]Patch

// IDs returns the mentioned ids in sorted order.
func (b Batch) IDs() []string {
	return slices.Sorted(maps.Keys(b))
}

// Validate rejects an empty batch or blank ids.
func (b Batch) Validate() error {
	if len(b) == 0 {
		return domain.NewValidationError("searches", "at least one search must be provided")
	}
	for id := range b {
		if strings.TrimSpace(id) == "" {
			return domain.NewValidationError("searches", "ids must not be blank")
		}
	}
	return nil
}

// Reconcile applies the batch to the mentioned searches and returns the
// updated records in id order. current must hold at least the mentioned
// searches; any other record it holds is ignored and never returned.
//
// A mentioned id missing from current fails with domain.ErrNotFound. Invalid
// changes fail with a *domain.ValidationError listing every offending record.
// On error nothing is returned, so callers commit all or nothing.
func Reconcile(b Batch, current []SavedSearch, now time.Time) ([]SavedSearch, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	byID := make(map[string]SavedSearch, len(current))
	for _, s := range current {
		byID[s.ID()] = s
	}

	ids := b.IDs()
	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("saved search %s: %w", strings.Join(missing, ", "), domain.ErrNotFound)
	}

	updated := make([]SavedSearch, 0, len(ids))
	invalid := &domain.ValidationError{Fields: make(map[string]string)}
	for _, id := range ids {
		next, err := byID[id].Apply(b[id], now)
		if err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("apply %s: %w", id, err)
			}
			maps.Copy(invalid.Fields, verr.Prefixed("searches."+id).Fields)
			continue
		}
		updated = append(updated, next)
	}
	if len(invalid.Fields) > 0 {
		return nil, invalid
	}
	return updated, nil
}
