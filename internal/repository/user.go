package repository

import (
	"context"

	"medregistry/internal/model"
	"medregistry/internal/policy"
)

// UserRepository defines persistence for directory entries. It doubles
// as the policy.Directory implementation via FindByID.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by id; sql.ErrNoRows when absent.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email; sql.ErrNoRows when absent.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns all users, oldest first. Password hashes are not
	// selected.
	List(ctx context.Context) ([]model.User, error)

	// Delete removes a user with role 'user'. It reports whether a
	// row was actually deleted; admins are never deletable here.
	Delete(ctx context.Context, id string) (bool, error)

	// CountActive counts Active users; Member scopes count only their
	// own department.
	CountActive(ctx context.Context, scope policy.Scope) (int, error)
}
