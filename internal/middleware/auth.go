package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/NateM03/gym/internal/auth"
	"github.com/NateM03/gym/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	UserID(ctx context.Context, token string) (int, error)
}

type AuthMiddlewareHandler struct {
	loginChecker loginChecker
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(loginChecker loginChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			"/":              true,
			"/version":       true,
			"/auth/register": true,
			"/auth/login":    true,
		},
	}
}

// AuthCheck resolves the session token from the X-GYM-TOKEN header to a user
// and injects the user ID into the request context. Requests without a valid
// session are rejected, except for the allowed (public) paths.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if h.allowedPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.authCheck")
			defer span.End()

			authToken := strings.TrimSpace(r.Header.Get("X-GYM-TOKEN"))
			if authToken == "" {
				span.SetStatus(codes.Error, "no auth token")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			userID, err := h.loginChecker.UserID(ctx, authToken)
			if err != nil {
				log.Tracef("[auth middleware] [path %s]: invalid token: %s", r.URL.Path, err)
				span.SetStatus(codes.Error, "invalid token")
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			r = r.WithContext(auth.ContextWithUserID(ctx, userID))
			next.ServeHTTP(w, r)
		})
	}
}
