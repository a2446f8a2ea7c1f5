package ctxutil

import "context"

// Default guards against nil contexts leaking in from callers that
// predate context plumbing.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
