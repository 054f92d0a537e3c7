package handler

import (
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

// AuthHandler serves registration and the token lifecycle endpoints.
type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register godoc
// @Summary      User registration.
// @Description  Registering and creating a user profile.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Email and password"
// @Success      201  {object}  model.RegisterResponse
// @Failure      400  {object}  common.AppError "Validation failed or email already registered"
// @Failure      500  {object}  common.AppError
// @Router       /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, model.RegisterResponse{ID: user.ID, Email: user.Email})
	return nil
}

// Login godoc
// @Summary      User login.
// @Description  Creating a token pair to log in to the user profile.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Email and password"
// @Success      200  {object}  model.TokenPair
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError "No active account found with the given credentials"
// @Failure      500  {object}  common.AppError
// @Router       /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Refresh token.
// @Description  Exchanging a refresh token for a new access token (and a rotated refresh token when rotation is on).
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.TokenPair
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError "Token is invalid, expired or blacklisted"
// @Failure      500  {object}  common.AppError
// @Router       /api/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.service.Refresh(r.Context(), req.Token())
	if err != nil {
		return mapServiceError(err)
	}

	common.WriteJSON(w, http.StatusOK, pair)
	return nil
}

// Logout godoc
// @Summary      User logout.
// @Description  Logging out of the user profile and blacklisting a token. Always succeeds for a well-formed request.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.LogoutResponse
// @Failure      400  {object}  common.AppError
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	common.WriteJSON(w, http.StatusOK, h.service.Logout(r.Context(), req.Token()))
	return nil
}
