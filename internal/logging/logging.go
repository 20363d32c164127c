// Package logging prints the "[component] message" lines used across the
// services, prefixed with the log tags carried by the request context.
package logging

import (
	"context"
	"fmt"
	"log"

	"github.com/cockroachdb/logtags"
)

// WithTag returns a context whose log lines include key=value.
func WithTag(ctx context.Context, key string, value interface{}) context.Context {
	return logtags.AddTag(ctx, key, value)
}

func Printf(ctx context.Context, component, format string, args ...interface{}) {
	log.Print(Format(ctx, component, format, args...))
}

// Format builds the line Printf writes.
func Format(ctx context.Context, component, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if ctx != nil {
		if tags := logtags.FromContext(ctx); tags != nil {
			return fmt.Sprintf("[%s] [%s] %s", component, tags.String(), msg)
		}
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}
