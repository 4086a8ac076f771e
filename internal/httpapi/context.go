package httpapi

import (
	"context"
)

// serverBaseCtx is the process-level context handlers join with their
// request context, so shutdown cancels in-flight work. Defaults to
// Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context. A nil ctx resets
// to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from a that is additionally canceled when
// b is done. The cancel func must be called when the handler returns.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
