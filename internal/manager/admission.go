package manager

import (
	"context"
	"time"
)

// beginGeneration reserves the single in-flight generation slot. The engine
// is not safe for parallel generation calls, so all generation work is
// serialized here; health checks and validation/readiness failures never
// reach this point and return immediately.
//
// Returns a release func to be deferred by the caller.
func (m *Manager) beginGeneration(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := time.NewTimer(m.cfg.MaxWait)
	defer timer.Stop()
	select {
	case m.genCh <- struct{}{}:
		return func() { <-m.genCh }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, tooBusyError{}
	}
}
