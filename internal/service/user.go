package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medregistry/internal/model"
	"medregistry/internal/repository"
)

const bcryptCost = 10

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email      string
	Password   string
	Name       string
	Department string
}

// UserService handles authentication and account management. Accounts
// created here always start as regular users; admin accounts are
// provisioned out of band.
type UserService interface {
	// Login verifies credentials. Unknown email and wrong password are
	// indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (*model.User, error)

	// Signup registers a new user account.
	Signup(ctx context.Context, in SignupInput) (*model.User, error)

	// CreateUser registers a new user account on behalf of an admin.
	CreateUser(ctx context.Context, adminID string, in SignupInput) (*model.User, error)

	// ListUsers returns every account; admin only.
	ListUsers(ctx context.Context, adminID string) ([]model.User, error)

	// DeleteUser removes a regular user; admin only, never the admin's
	// own account.
	DeleteUser(ctx context.Context, adminID, userID string) error
}

type userService struct {
	users repository.UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	return s.register(ctx, in)
}

func (s *userService) CreateUser(ctx context.Context, adminID string, in SignupInput) (*model.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.register(ctx, in)
}

func (s *userService) register(ctx context.Context, in SignupInput) (*model.User, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, ErrMissingFields
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case errors.Is(err, sql.ErrNoRows):
		// free to register
	default:
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	department := in.Department
	if department == "" {
		department = "General"
	}

	u := &model.User{
		ID:         uuid.New().String(),
		Email:      in.Email,
		Password:   string(hash),
		Name:       in.Name,
		Role:       model.RoleUser,
		Department: department,
		Status:     model.StatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	return s.users.Create(ctx, u)
}

func (s *userService) ListUsers(ctx context.Context, adminID string) ([]model.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if adminID == "" || userID == "" {
		return ErrMissingFields
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if userID == adminID {
		return ErrSelfDelete
	}
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) requireAdmin(ctx context.Context, adminID string) error {
	if adminID == "" {
		return ErrAdminRequired
	}
	u, err := s.users.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAdminRequired
		}
		return err
	}
	if !u.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}
