package api

import (
	"context"

	"github.com/rpupo63/oneword-blog-backend/services"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the authenticated caller to the context
func ctxWithIdentity(ctx context.Context, identity services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity retrieves the caller stored by the auth middleware
func ctxGetIdentity(ctx context.Context) (services.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(services.Identity)
	return identity, ok
}
