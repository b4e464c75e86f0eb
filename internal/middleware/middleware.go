package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/sydscene/sydscene/internal/logging"
	"github.com/sydscene/sydscene/pkg/httputil"
	"go.uber.org/zap"
)

type Middleware = func(http.Handler) http.Handler

func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := r.WithContext(logging.WithLogger(r.Context(), lg))
			next.ServeHTTP(w, req)
		})
	}
}

// RequireToken guards the moderation routes with a static bearer token.
// An empty configured token closes the routes entirely rather than
// leaving them open.
func RequireToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				httputil.JSON(w, http.StatusUnauthorized, httputil.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "unauthorized",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
