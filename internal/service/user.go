package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/auth"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type AuthResult struct {
	User      *internal.User `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Register creates the account together with its default goals.
func Register(ctx context.Context, users storage.UserRepository, tokens TokenIssuer, req *RegisterRequest, now time.Time) (*AuthResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &internal.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := users.CreateUserWithDefaults(ctx, user, DefaultGoals(user.ID, now)); err != nil {
		return nil, err
	}
	return issue(tokens, user)
}

// Login checks credentials and repairs missing default goals.
func Login(ctx context.Context, users storage.UserRepository, goals storage.GoalRepository, tokens TokenIssuer, req *LoginRequest, now time.Time) (*AuthResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	user, err := users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, internal.ErrNotFound) {
		return nil, internal.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, internal.ErrUnauthorized
	}
	if _, err := EnsureDefaultGoals(ctx, goals, user.ID, now); err != nil {
		return nil, err
	}
	return issue(tokens, user)
}

func issue(tokens TokenIssuer, user *internal.User) (*AuthResult, error) {
	token, expiresAt, err := tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func GetProfile(ctx context.Context, users storage.UserRepository, userID string) (*internal.User, error) {
	return users.GetUserByID(ctx, userID)
}

// UpdateProfile applies only the fields present. An empty image URL string clears it.
func UpdateProfile(ctx context.Context, users storage.UserRepository, userID string, req *ProfileRequest) (*internal.User, error) {
	clearImage := req.ProfileImageURL != nil && *req.ProfileImageURL == ""
	if clearImage {
		req.ProfileImageURL = nil
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	switch {
	case clearImage:
		user.ProfileImageURL = nil
	case req.ProfileImageURL != nil:
		user.ProfileImageURL = req.ProfileImageURL
	}
	if err := users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func ChangePassword(ctx context.Context, users storage.UserRepository, userID string, req *PasswordRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return internal.ErrCurrentPassword
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return users.UpdatePassword(ctx, userID, hash)
}
