// Package tracking reports failures to Sentry. Without a DSN every call is a no-op.
package tracking

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

func Init(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          "caregiver-registry@" + release,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

func Flush() {
	sentry.Flush(2 * time.Second)
}

func CaptureError(err error, context map[string]interface{}) {
	if hub := sentry.CurrentHub(); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for k, v := range context {
				scope.SetExtra(k, v)
			}
			hub.CaptureException(err)
		})
	}
}

// Reporter returns an error callback tagged with the component that failed.
func Reporter(component string) func(error) {
	return func(err error) {
		CaptureError(err, map[string]interface{}{"component": component})
	}
}
