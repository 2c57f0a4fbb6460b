// Package actorctx carries the authenticated user id and request id on a
// context.Context so code below the HTTP layer can log and correlate
// without depending on gin.
package actorctx

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	requestIDKey
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)

	return v, ok && v != ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
