package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/gymsessions/internal/auth"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=middleware_mocks_test.go -package=middleware_test

type userResolver interface {
	UserID(ctx context.Context, token string) (uuid.UUID, error)
}

const sessionTokenHeader = "X-SESSION-TOKEN"

// AuthMiddlewareHandler puts the authenticated user id into the request context.
// Bearer tokens are checked by bearerResolver, session tokens (X-SESSION-TOKEN) by sessionResolver.
type AuthMiddlewareHandler struct {
	sessionResolver userResolver
	bearerResolver  userResolver
	allowedPaths    map[string]bool
}

func NewAuthMiddlewareHandler(sessionResolver, bearerResolver userResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		sessionResolver: sessionResolver,
		bearerResolver:  bearerResolver,
		allowedPaths: map[string]bool{
			"/health": true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			resolver, token := h.resolverFor(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := resolver.UserID(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "not-logged")
				} else {
					log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "check-logged-err")
					span.RecordError(err)
				}
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func (h *AuthMiddlewareHandler) resolverFor(r *http.Request) (userResolver, string) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return h.bearerResolver, ""
		}
		return h.bearerResolver, strings.TrimSpace(token)
	}
	return h.sessionResolver, r.Header.Get(sessionTokenHeader)
}
