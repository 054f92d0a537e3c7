package handler

import (
	"errors"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// mapServiceError translates service sentinels into client-facing errors.
// Expired and malformed tokens share one message; blacklisted tokens are
// reported separately.
func mapServiceError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "No active account found with the given credentials", err)
	case errors.Is(err, service.ErrTokenRevoked):
		return common.NewAppError(http.StatusUnauthorized, "Token is blacklisted", err)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return common.NewAppError(http.StatusUnauthorized, "Token is invalid or expired", err)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusUnauthorized, "User not found", err)
	case errors.Is(err, service.ErrUserInactive):
		return common.NewAppError(http.StatusUnauthorized, "User is inactive", err)
	case errors.Is(err, service.ErrDuplicateAccount):
		appErr := common.NewValidationError(map[string][]string{
			"email": {"user with this email address already exists."},
		})
		appErr.Err = err
		return appErr
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
