package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

const msgUserNotFound = "User not found"

type RegisterUser struct {
	users repository.UserRepository
	tx    repository.TxManager
	cost  int
	log   *slog.Logger
}

func NewRegisterUser(users repository.UserRepository, tx repository.TxManager, bcryptCost int, log *slog.Logger) *RegisterUser {
	return &RegisterUser{users: users, tx: tx, cost: bcryptCost, log: log}
}

// Execute creates an account.  A taken email is reported like any other
// persistence failure.
func (uc *RegisterUser) Execute(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	hash, err := utils.HashPassword(req.Password, uc.cost)
	if err != nil {
		uc.log.Error("password hashing failed", "err", err)
		return nil, apperror.Creation("Failed to register user", err)
	}
	u := model.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		return uc.users.Create(ctx, &u)
	})
	if err != nil {
		uc.log.Error("user registration failed", "email", req.Email,
			"duplicate", errors.Is(err, repository.ErrEmailExists), "err", err)
		return nil, apperror.Creation("Failed to register user", err)
	}
	uc.log.Info("user registered", "user_id", u.ID, "email", u.Email)
	return &u, nil
}

type UpdateUserProfile struct {
	users repository.UserRepository
	tx    repository.TxManager
	cost  int
	log   *slog.Logger
}

func NewUpdateUserProfile(users repository.UserRepository, tx repository.TxManager, bcryptCost int, log *slog.Logger) *UpdateUserProfile {
	return &UpdateUserProfile{users: users, tx: tx, cost: bcryptCost, log: log}
}

// Execute writes only the supplied fields of req.  A new password is
// hashed before it reaches the repository.
func (uc *UpdateUserProfile) Execute(ctx context.Context, id uint64, req dto.UpdateProfileRequest) (*model.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, uc.cost)
		if err != nil {
			uc.log.Error("password hashing failed", "user_id", id, "err", err)
			return nil, apperror.Update("Failed to update profile", err)
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.users.Update(ctx, id, fields)
		})
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperror.NotFound(msgUserNotFound)
			}
			uc.log.Error("profile update failed", "user_id", id, "err", err)
			return nil, apperror.Update("Failed to update profile", err)
		}
		uc.log.Info("user profile updated", "user_id", id, "fields", fieldNames(fields))
	}
	return loadUser(ctx, uc.users, id)
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		if k == "password_hash" {
			k = "password"
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type GetProfile struct {
	users repository.UserRepository
}

func NewGetProfile(users repository.UserRepository) *GetProfile {
	return &GetProfile{users: users}
}

func (uc *GetProfile) Execute(ctx context.Context, id uint64) (*model.User, error) {
	return loadUser(ctx, uc.users, id)
}

func loadUser(ctx context.Context, users repository.UserRepository, id uint64) (*model.User, error) {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NotFound(msgUserNotFound)
		}
		return nil, apperror.Internal("Failed to load user", err)
	}
	return u, nil
}
