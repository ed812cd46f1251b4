// Package retry implements the bounded exponential backoff described in
// spec §7: transient storage failures are retried up to three times with
// delays of 100ms, 300ms, 1s.
package retry

import (
	"context"
	"time"

	"github.com/terraconstructs/iamcore/internal/apierr"
)

// Delays is the fixed backoff schedule §7 specifies.
var Delays = []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, time.Second}

// Do calls fn, retrying on a TransientFailure error per Delays. Any other
// error kind (or nil) returns immediately. Returns the last error once
// retries are exhausted.
func Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !apierr.Is(err, apierr.KindTransient) {
			return err
		}
		if attempt >= len(Delays) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Delays[attempt]):
		}
	}
}
