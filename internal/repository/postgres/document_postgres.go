package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"medregistry/internal/model"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of
// repository.DocumentRepository. It uses database/sql with
// parameterized queries and contains no business logic. Visibility
// conditions are assembled from a fixed set of clauses only; nothing
// request-supplied ever reaches the SQL text.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// scopeFilter renders the visibility predicate for a scope as a SQL
// fragment with positional placeholders starting at argPos.
func scopeFilter(scope policy.Scope, argPos int) (string, []any) {
	switch scope.Kind {
	case policy.Admin:
		return "TRUE", nil
	case policy.Member:
		return fmt.Sprintf("access_level = $%d AND (department = $%d OR department = $%d)",
				argPos, argPos+1, argPos+2),
			[]any{string(model.AccessPublic), scope.Department, model.DepartmentGlobal}
	default:
		return fmt.Sprintf("access_level = $%d", argPos), []any{string(model.AccessPublic)}
	}
}

func marshalTypeList(types []string) (string, error) {
	b, err := json.Marshal(types)
	if err != nil {
		return "", fmt.Errorf("marshal type list: %w", err)
	}
	return string(b), nil
}

func unmarshalTypeList(raw string) ([]string, error) {
	var types []string
	if err := json.Unmarshal([]byte(raw), &types); err != nil {
		return nil, fmt.Errorf("unmarshal type list: %w", err)
	}
	return types, nil
}

// Create inserts the document as one row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, name, category, department, description, total_size, type_list, uploader_id, uploader_display, blob, access_level, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, uploaded_at
	`
	typeList, err := marshalTypeList(doc.TypeList)
	if err != nil {
		return nil, err
	}

	out := *doc
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.Category,
		doc.Department,
		doc.Description,
		doc.TotalSize,
		typeList,
		doc.UploaderID,
		doc.UploaderDisplay,
		doc.Blob,
		string(doc.AccessLevel),
		doc.UploadedAt,
	)
	if err := row.Scan(&out.ID, &out.UploadedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document including its blob.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, name, category, department, description, total_size, type_list, uploader_id, uploader_display, blob, access_level, uploaded_at
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)

	var (
		d               model.Document
		typeList        string
		uploaderID      sql.NullString
		uploaderDisplay sql.NullString
		accessLevel     string
	)
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Category,
		&d.Department,
		&d.Description,
		&d.TotalSize,
		&typeList,
		&uploaderID,
		&uploaderDisplay,
		&d.Blob,
		&accessLevel,
		&d.UploadedAt,
	); err != nil {
		return nil, err
	}

	types, err := unmarshalTypeList(typeList)
	if err != nil {
		return nil, err
	}
	d.TypeList = types
	if uploaderID.Valid {
		d.UploaderID = &uploaderID.String
	}
	if uploaderDisplay.Valid {
		d.UploaderDisplay = &uploaderDisplay.String
	}
	d.AccessLevel = model.AccessLevel(accessLevel)
	return &d, nil
}

// ListVisible returns metadata projections visible to the scope,
// newest first. Admin listings resolve the uploader name live via a
// join, falling back to the snapshot taken at upload time; other
// scopes return the snapshot.
func (r *DocumentPostgres) ListVisible(ctx context.Context, scope policy.Scope) ([]model.DocumentMeta, error) {
	var (
		q    string
		args []any
	)
	if scope.Kind == policy.Admin {
		q = `
		SELECT d.id, d.name, d.category, d.department, d.description, d.total_size, d.type_list, COALESCE(u.name, d.uploader_display) AS uploader_display, d.access_level, d.uploaded_at
		FROM documents d
		LEFT JOIN users u ON u.id = d.uploader_id
		ORDER BY d.uploaded_at DESC, d.id DESC
	`
	} else {
		cond, condArgs := scopeFilter(scope, 1)
		q = `
		SELECT id, name, category, department, description, total_size, type_list, uploader_display, access_level, uploaded_at
		FROM documents
		WHERE ` + cond + `
		ORDER BY uploaded_at DESC, id DESC
	`
		args = condArgs
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentMeta, 0)
	for rows.Next() {
		var (
			m               model.DocumentMeta
			typeList        string
			uploaderDisplay sql.NullString
			accessLevel     string
		)
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Category,
			&m.Department,
			&m.Description,
			&m.TotalSize,
			&typeList,
			&uploaderDisplay,
			&accessLevel,
			&m.UploadedAt,
		); err != nil {
			return nil, err
		}
		types, err := unmarshalTypeList(typeList)
		if err != nil {
			return nil, err
		}
		m.TypeList = types
		if uploaderDisplay.Valid {
			m.UploaderDisplay = &uploaderDisplay.String
		}
		m.AccessLevel = model.AccessLevel(accessLevel)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountAndSize counts visible documents and sums their sizes,
// optionally restricted to rows uploaded before until.
func (r *DocumentPostgres) CountAndSize(ctx context.Context, scope policy.Scope, until *time.Time) (int, int64, error) {
	cond, args := scopeFilter(scope, 1)
	q := `SELECT COUNT(*), COALESCE(SUM(total_size), 0) FROM documents WHERE ` + cond
	if until != nil {
		q += fmt.Sprintf(" AND uploaded_at < $%d", len(args)+1)
		args = append(args, *until)
	}

	var (
		count int
		size  int64
	)
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count, &size); err != nil {
		return 0, 0, err
	}
	return count, size, nil
}

// CountBetween counts visible documents in [from, to).
func (r *DocumentPostgres) CountBetween(ctx context.Context, scope policy.Scope, from, to time.Time) (int, error) {
	cond, args := scopeFilter(scope, 1)
	q := fmt.Sprintf(`SELECT COUNT(*) FROM documents WHERE %s AND uploaded_at >= $%d AND uploaded_at < $%d`,
		cond, len(args)+1, len(args)+2)
	args = append(args, from, to)

	var count int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DailyUploads aggregates visible documents per calendar day in
// [from, to), oldest first. Truncation happens in UTC to match the
// service's day arithmetic.
func (r *DocumentPostgres) DailyUploads(ctx context.Context, scope policy.Scope, from, to time.Time) ([]repository.DayStat, error) {
	cond, args := scopeFilter(scope, 1)
	q := fmt.Sprintf(`
		SELECT date_trunc('day', uploaded_at AT TIME ZONE 'UTC') AS day, COUNT(*), COALESCE(SUM(total_size), 0)
		FROM documents
		WHERE %s AND uploaded_at >= $%d AND uploaded_at < $%d
		GROUP BY day
		ORDER BY day
	`, cond, len(args)+1, len(args)+2)
	args = append(args, from, to)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]repository.DayStat, 0)
	for rows.Next() {
		var s repository.DayStat
		if err := rows.Scan(&s.Day, &s.Count, &s.Bytes); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
