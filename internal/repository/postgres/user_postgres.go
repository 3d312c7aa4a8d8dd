package postgres

import (
	"context"
	"database/sql"

	"medregistry/internal/model"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of
// repository.UserRepository. It also serves as the policy.Directory.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)
var _ policy.Directory = (*UserPostgres)(nil)

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password, name, role, department, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	out := *u
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.Password,
		u.Name,
		u.Role,
		u.Department,
		u.Status,
		u.CreatedAt,
	)
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single user by id, including the password hash
// for credential checks.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, email, password, name, role, department, status, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT id, email, password, name, role, department, status, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.Name,
		&u.Role,
		&u.Department,
		&u.Status,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users without password hashes, oldest first.
func (r *UserPostgres) List(ctx context.Context) ([]model.User, error) {
	const q = `
		SELECT id, email, name, role, department, status, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Role,
			&u.Department,
			&u.Status,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a regular user. The role guard lives in the query so
// admin accounts can never be removed through this path. Documents are
// untouched: the uploader_id FK is ON DELETE SET NULL.
func (r *UserPostgres) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM users WHERE id = $1 AND role = $2`
	res, err := r.db.ExecContext(ctx, q, id, model.RoleUser)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActive counts Active users, restricted to the member's own
// department for Member scopes.
func (r *UserPostgres) CountActive(ctx context.Context, scope policy.Scope) (int, error) {
	q := `SELECT COUNT(*) FROM users WHERE status = $1`
	args := []any{model.StatusActive}
	if scope.Kind == policy.Member {
		q += ` AND department = $2`
		args = append(args, scope.Department)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
