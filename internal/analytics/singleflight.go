package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedLoadTimeout bounds a load that outlives the caller which started it.
const sharedLoadTimeout = 30 * time.Second

var loadGroup singleflight.Group

// flight collapses concurrent loads of key. The shared load is detached from
// the first caller's cancellation so a caller that gives up does not fail the
// others; each caller still stops waiting when its own ctx is done.
func flight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := loadGroup.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
