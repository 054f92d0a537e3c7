package router

import (
	_ "go-auth-api/docs"
	"go-auth-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(authHandler *handler.AuthHandler, userHandler *handler.UserHandler, auth handler.Authenticator) http.Handler {
	mux := http.NewServeMux()
	requireAuth := handler.AuthMiddleware(auth)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /api/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /api/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /api/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /api/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("GET /api/me", requireAuth(handler.ErrorHandlingMiddleware(userHandler.GetProfile)))
	mux.Handle("PUT /api/me", requireAuth(handler.ErrorHandlingMiddleware(userHandler.UpdateProfile)))
	mux.Handle("PATCH /api/me", requireAuth(handler.ErrorHandlingMiddleware(userHandler.UpdateProfile)))

	return mux
}
