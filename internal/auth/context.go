package auth

import (
	"context"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity carries the claims the identity provider asserted about the
// caller. ExternalID is the provider's opaque subject, never a local row id.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) Identity {
	if v, ok := ctx.Value(identityKey).(Identity); ok {
		return v
	}
	return Identity{}
}

func ExternalID(ctx context.Context) string {
	return FromContext(ctx).ExternalID
}
