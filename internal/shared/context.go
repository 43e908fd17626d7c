package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the loaded session in the request context. The
// session middleware is the only writer; handlers and authenticators read.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session, or nil outside the middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
