// Package policy computes the visibility scope for a requester. The
// scope is the single input the repositories use to filter documents
// and user counts, so every read path shares one set of rules.
package policy

import (
	"context"
	"database/sql"
	"errors"

	"medregistry/internal/model"
)

// Kind is the visibility tier of a requester.
type Kind int

const (
	// Anonymous sees Public documents in any department.
	Anonymous Kind = iota
	// Member sees Public documents in their own department or Global.
	Member
	// Admin sees every document regardless of level or department.
	Admin
)

// Scope is the resolved visibility of one requester.
type Scope struct {
	Kind       Kind
	Department string // set for Member only
	UserID     string // set for Member and Admin
}

// Directory resolves a user id to its directory entry. Implemented by
// the user repository; kept minimal here so policy carries no
// persistence dependency.
type Directory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Resolve computes the scope for an optional requester id. An empty id
// or an id that does not resolve to a known user yields the anonymous
// scope; that is deliberate and not an error.
func Resolve(ctx context.Context, dir Directory, requesterID string) (Scope, error) {
	if requesterID == "" {
		return Scope{Kind: Anonymous}, nil
	}
	u, err := dir.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Scope{Kind: Anonymous}, nil
		}
		return Scope{}, err
	}
	if u.IsAdmin() {
		return Scope{Kind: Admin, UserID: u.ID}, nil
	}
	return Scope{Kind: Member, Department: u.Department, UserID: u.ID}, nil
}

// CacheKey returns a stable key fragment identifying what this scope
// can see. Scopes with identical keys always see identical data.
func (s Scope) CacheKey() string {
	switch s.Kind {
	case Admin:
		return "admin"
	case Member:
		return "dept:" + s.Department
	default:
		return "anon"
	}
}
