package billing

import "context"

// Service reconciles the local entitlement with the billing provider. It is
// the sole writer of a user's plan and billing references.
type Service interface {
	// ApplyEvent maps a pushed webhook event into an entitlement write.
	// Resolution misses are logged and swallowed so webhook delivery can be
	// acknowledged regardless.
	ApplyEvent(ctx context.Context, event Event)

	// SyncFromProvider queries the provider for the user's active
	// subscription and writes the entitlement accordingly. Provider failures
	// leave the store untouched and surface as an unsuccessful result.
	SyncFromProvider(ctx context.Context, userID string) SyncResult
}
