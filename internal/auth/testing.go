package auth

import "context"

// SetClaimsForTest injects claims into the context for testing purposes.
func SetClaimsForTest(ctx context.Context, viewer, role string) context.Context {
	return context.WithValue(ctx, claimsKey, &Claims{Viewer: viewer, Role: role})
}
