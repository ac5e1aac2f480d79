package auth

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const OperatorIDKey contextKey = "operator_id"

// OperatorID returns the operator placed in ctx by AuthMiddleware.
func OperatorID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(OperatorIDKey).(uint)
	return id, ok
}

func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get(APIKeyHeader); apiKey != "" {
			operatorID, err := h.operatorForKey(r.Context(), apiKey)
			if err != nil {
				http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), OperatorIDKey, operatorID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		cookie, err := r.Cookie(CookieName)
		if err != nil {
			if err == http.ErrNoCookie {
				http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		operatorID, exp, err := h.parseToken(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		// Sliding session: refresh once past half the token lifetime.
		if time.Until(exp) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(operatorID); err == nil {
				http.SetCookie(w, h.sessionCookie(newToken))
			}
		}

		ctx := context.WithValue(r.Context(), OperatorIDKey, operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
