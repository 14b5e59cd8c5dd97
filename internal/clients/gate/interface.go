package gate

import "context"

// Client bundles the authorization and pause-state capabilities. Ownership
// and pause transitions live elsewhere; the engine only consults them.
type Client interface {
	IsAuthorized(ctx context.Context, caller string) (bool, error)
	IsPaused(ctx context.Context) (bool, error)
}
