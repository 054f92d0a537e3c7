package handler

import (
	"context"
	"go-auth-api/common"
	"go-auth-api/model"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// Authenticator resolves a bearer access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <access token>"
// header and stores the caller's user id in the request context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				err := common.NewAppError(http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
				err.Send(w)
				return
			}

			headerParts := strings.Fields(authHeader)
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				err := common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
				err.Send(w)
				return
			}

			user, err := auth.Authenticate(r.Context(), headerParts[1])
			if err != nil {
				mapServiceError(err).Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
