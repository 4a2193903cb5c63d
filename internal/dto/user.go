package dto

import "strings"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// Validate normalises the request in place and checks it.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	return check(r)
}

// UpdateProfileRequest is the body of PATCH /user/profile.  Only non-nil
// fields are written.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=8,maxbytes=72"`
}

// Validate normalises the request in place and checks it.
func (r *UpdateProfileRequest) Validate() error {
	r.Name = trimPtr(r.Name)
	if r.Email != nil {
		e := normalizeEmail(*r.Email)
		r.Email = &e
	}
	return check(r)
}

// Empty reports whether no field was supplied.
func (r UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate normalises the request in place and checks it.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	return check(r)
}
