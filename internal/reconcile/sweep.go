package reconcile

import (
	"context"
	"time"

	"github.com/sydscene/sydscene/internal/logging"
)

// Sweep demotes past-dated and long-unobserved records to inactive in a
// single pass. Records without an event time go inactive once they have
// not been re-observed for staleAfter. Status is the only field touched:
// imported records lose their visibility once their date passes, but keep
// every piece of curation metadata.
func (e *Engine) Sweep(ctx context.Context, staleAfter time.Duration) (int64, error) {
	now := e.now()
	demoted, err := e.store.MarkInactive(ctx, now, now.Add(-staleAfter))
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Sugar().Infow("staleness sweep completed", "demoted", demoted)
	return demoted, nil
}
