package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/handler"
)

// Handlers are the endpoint implementations the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Movies *handler.MovieHandler
	Users  *handler.UserHandler
	Health *handler.HealthHandler
}

// Middleware are the route-level middlewares.  Auth is required; a nil
// RateLimit or Cache is skipped.
type Middleware struct {
	Auth      echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Prefixes lists the path prefixes the API is served under.
var Prefixes = []string{"", "/api"}

// Register mounts the API under every prefix plus /healthz.  Middleware is
// attached per route rather than per group so unknown paths still answer
// 404 instead of 401.
func Register(e *echo.Echo, h Handlers, mw Middleware) {
	if h.Health != nil {
		e.GET("/healthz", h.Health.Health)
	}
	for _, prefix := range Prefixes {
		mount(e.Group(prefix), h, mw)
	}
}

func mount(g *echo.Group, h Handlers, mw Middleware) {
	public := chain(mw.RateLimit)
	protected := chain(mw.Auth, mw.RateLimit, mw.Cache)

	g.POST("/auth/register", h.Auth.Register, public...)
	g.POST("/auth/login", h.Auth.Login, public...)
	g.POST("/auth/logout", h.Auth.Logout, protected...)
	g.POST("/auth/refresh", h.Auth.Refresh, protected...)

	g.GET("/movies", h.Movies.List, protected...)
	g.POST("/movies", h.Movies.Create, protected...)
	g.GET("/movies/:id", h.Movies.Show, protected...)
	g.PUT("/movies/:id", h.Movies.Update, protected...)
	g.PATCH("/movies/:id", h.Movies.Update, protected...)
	g.DELETE("/movies/:id", h.Movies.Delete, protected...)

	g.GET("/user/profile", h.Users.Profile, protected...)
	g.PUT("/user/profile", h.Users.UpdateProfile, protected...)
	g.PATCH("/user/profile", h.Users.UpdateProfile, protected...)
}

func chain(ms ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
