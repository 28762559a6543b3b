package testutil

import (
	"context"
	"testing"
	"time"
)

// Context returns a context that expires with a generous test deadline and
// is cancelled on cleanup
func Context(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx
}
