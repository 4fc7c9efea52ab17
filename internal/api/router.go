package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petshop/internal/api/handler"
	apiMiddleware "petshop/internal/api/middleware"
	"petshop/internal/common"
	"petshop/internal/common/security"
	"petshop/internal/platform/metrics"
)

func NewRouter(
	tokens *security.Tokens,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	petHandler *handler.PetHandler,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(metrics.Middleware)

	// Token verification: bearer header first, then the auth cookie. This
	// only parks the result in the context; Authenticator decides whether
	// an identity gets attached, and failures never reject the request.
	r.Use(jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader, tokenFromAuthCookie))
	r.Use(apiMiddleware.Authenticator)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/user", func(user chi.Router) {
		authHandler.RegisterRoutes(user)
		userHandler.RegisterRoutes(user)
	})
	r.Route("/api/pet", petHandler.RegisterRoutes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Page not found.")
	})

	return r
}

func tokenFromAuthCookie(r *http.Request) string {
	cookie, err := r.Cookie(handler.AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
