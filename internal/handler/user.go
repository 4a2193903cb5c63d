package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/usecase"
)

// UserHandler serves /user/profile.
type UserHandler struct {
	users *usecase.Users
}

func NewUserHandler(users *usecase.Users) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.Profile.Execute(ctx, uid)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toUserResource(u))
}

// UpdateProfile changes the fields present in the body.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.users.UpdateProfile.Execute(ctx, uid, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toUserResource(u))
}
