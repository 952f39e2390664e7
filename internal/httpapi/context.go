package httpapi

import "context"

// serverBaseCtx is canceled by the process on shutdown. Background until set.
var serverBaseCtx = context.Background()

// SetBaseContext installs the shutdown context that bounds upload work.
// A nil ctx restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from req and is also canceled, with base's cause,
// when base is done. The returned cancel must be called when the handler ends.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	stop := context.AfterFunc(base, func() { cancel(context.Cause(base)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
