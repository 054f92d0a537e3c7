package handler

import (
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

// UserHandler serves the authenticated profile endpoints.
type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func userIDFrom(r *http.Request) (int, *common.AppError) {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return 0, common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	return userID, nil
}

// GetProfile godoc
// @Summary      User info.
// @Description  Retrieving user profile information.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.Profile
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/me [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusNotFound, "Not found.", err)
		}
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, profile)
	return nil
}

// UpdateProfile godoc
// @Summary      Profile update.
// @Description  Updating user data. PUT and PATCH both accept a partial body.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile body model.UpdateProfileRequest true "Fields to change"
// @Success      200  {object}  model.Profile
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/me [put]
// @Router       /api/me [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateProfileRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusNotFound, "Not found.", err)
		}
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, profile)
	return nil
}
