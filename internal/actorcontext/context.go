// Package actorcontext carries the acting principal through a request.
package actorcontext

import "context"

type actorKey struct{}

// DefaultActor is recorded when no caller identity was attached.
const DefaultActor = "system"

// WithActor attaches the acting principal (user name or "system").
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the acting principal, defaulting to DefaultActor.
func Actor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
