package auth

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the authenticated identity attached to a request.
// A zero Principal means the request is unauthenticated.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsZero() bool { return p.ID == "" }

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) Principal {
	if v, ok := ctx.Value(principalKey).(Principal); ok {
		return v
	}
	return Principal{}
}
