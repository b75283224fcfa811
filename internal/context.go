package internal

import (
	"context"
	"time"
)

type ctxKey string

// ContextOperatorKey holds the identity of the back-office operator issuing a call.
// It is recorded as the actor on audit rows and as the leave approver.
const ContextOperatorKey ctxKey = "operator"

func OperatorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if operator, ok := ctx.Value(ContextOperatorKey).(string); ok {
		return operator
	}
	return ""
}

func ContextWithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, ContextOperatorKey, operator)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
