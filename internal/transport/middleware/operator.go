package middleware

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/pkg/logger"
)

// OperatorHeader names the back-office operator issuing the call. Identity is
// established upstream; it is recorded as audit actor and leave approver.
const OperatorHeader = "X-Operator"

func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operator == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := internal.ContextWithOperator(r.Context(), operator)
		ctx = logger.With(ctx, "operator", operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
