package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, created_at, updated_at, created_by, updated_by`

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// actorSource is implemented by database.Scope. Writes made through a
// scope with an authenticated actor are stamped with its id.
type actorSource interface {
	ActorID() (int64, bool)
}

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db sqlx.ExtContext
}

// NewUserRepo binds a repository to db, normally the request scope.
func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) actor() *int64 {
	if src, ok := r.db.(actorSource); ok {
		if id, ok := src.ActorID(); ok {
			return &id
		}
	}
	return nil
}

// GetByID fetches a user by primary key or returns entity.ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	if err := sqlx.GetContext(ctx, r.db, &u, q, id); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// GetByEmail fetches a user by exact email or returns entity.ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	if err := sqlx.GetContext(ctx, r.db, &u, q, email); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// GetByIDs returns the users matching ids keyed by id. Missing ids are
// simply absent from the map.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.User, error) {
	out := make(map[int64]*entity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []entity.User
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// Create inserts u and fills in its id, timestamps and audit columns.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (email, password_hash, first_name, last_name, phone, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at`
	actor := r.actor()
	row := r.db.QueryRowxContext(ctx, q, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, actor)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	u.CreatedBy = actor
	u.UpdatedBy = actor
	return nil
}

// Update writes the mutable profile fields of u.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET email=$2, first_name=$3, last_name=$4, phone=$5, updated_by=$6, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at`
	actor := r.actor()
	row := r.db.QueryRowxContext(ctx, q, u.ID, u.Email, u.FirstName, u.LastName, u.Phone, actor)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	u.UpdatedBy = actor
	return nil
}

// Delete removes the user row.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Search returns one page of users ordered by id and the total number
// of rows matching the filter.
func (r *UserRepo) Search(ctx context.Context, f entity.SearchFilter) ([]*entity.User, int, error) {
	var (
		where []string
		args  []any
	)
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		args = append(args, "%"+escapeLike(kw)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", n, n, n))
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		args = append(args, email)
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM users`+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset)
	q := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, cond, len(args)+1, len(args)+2)
	var rows []*entity.User
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return rows, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrEmailTaken
	}
	return fmt.Errorf("db error: %w", err)
}
