package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/usecase"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth  *usecase.Auth
	users *usecase.Users
}

func NewAuthHandler(auth *usecase.Auth, users *usecase.Users) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

func toTokenResource(r usecase.TokenResult) tokenResource {
	return tokenResource{AccessToken: r.AccessToken, TokenType: r.TokenType, ExpiresIn: r.ExpiresIn}
}

// Register creates an account.  No token is issued; the client logs in
// afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Register.Execute(ctx, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, toUserResource(u))
}

// Login exchanges email and password for a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.auth.Login.Execute(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTokenResource(res))
}

// Logout revokes the token the request was authenticated with.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return apperror.Unauthenticated("Unauthenticated.", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.auth.Logout.Execute(ctx, claims); err != nil {
		return err
	}
	return successMessage(c, "Successfully logged out")
}

// Refresh trades the current token for a new one.
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return apperror.Unauthenticated("Unauthenticated.", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.auth.Refresh.Execute(ctx, claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTokenResource(res))
}
