package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Time starts a timer for op name; the returned func logs the duration and,
// when errp points to a non-nil error, the error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		entry := Log(ctx).WithFields(logrus.Fields{
			"op":     name,
			"dur_ms": time.Since(start).Milliseconds(),
		})

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		entry.Debug("operation done")
	}
}
