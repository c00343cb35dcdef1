package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-directory-api/internal/domain/entity"
	"github.com/oksasatya/user-directory-api/internal/domain/repository"
)

const userColumns = `id, email, password_hash, first_name, last_name, address, phone, date_of_birth, status, avatar_url, last_login_at, created_at, updated_at, deleted_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Address, &u.Phone, &u.DateOfBirth, &u.Status, &u.AvatarURL,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, address, phone, date_of_birth, status, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Address, u.Phone, u.DateOfBirth, u.Status, u.AvatarURL)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)

	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, p repository.ListParams) ([]entity.User, error) {
	sql, args := buildListQuery(p)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entity.User, 0, p.Limit)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context, p repository.ListParams) (int64, error) {
	sql, args := buildCountQuery(p)
	var total int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id int64, patch repository.UserPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	sql, args := buildUpdateQuery(id, patch)
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id int64, url string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET avatar_url = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, url, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete marks a row deleted. Deleting an unknown or already
// deleted id is not an error; callers check existence beforehand when
// they need a not-found signal.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return err
}

// buildFilter appends status/search predicates shared by List and Count.
func buildFilter(sb *strings.Builder, args []any, p repository.ListParams) []any {
	if p.Status != "" {
		args = append(args, p.Status)
		fmt.Fprintf(sb, " AND status = $%d", len(args))
	}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		n := len(args)
		fmt.Fprintf(sb, " AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	return args
}

func buildListQuery(p repository.ListParams) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL")
	args := buildFilter(&sb, nil, p)
	sb.WriteString(" ORDER BY created_at DESC")
	args = append(args, p.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, p.Offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	return sb.String(), args
}

func buildCountQuery(p repository.ListParams) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM users WHERE deleted_at IS NULL")
	args := buildFilter(&sb, nil, p)
	return sb.String(), args
}

// buildUpdateQuery assembles a field-level UPDATE from the non-nil patch
// fields. updated_at always advances.
func buildUpdateQuery(id int64, patch repository.UserPatch) (string, []any) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 9)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.DateOfBirth != nil {
		set("date_of_birth", *patch.DateOfBirth)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.AvatarURL != nil {
		set("avatar_url", *patch.AvatarURL)
	}
	if patch.LastLoginAt != nil {
		set("last_login_at", *patch.LastLoginAt)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	sql := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d AND deleted_at IS NULL", strings.Join(sets, ", "), len(args))
	return sql, args
}

var _ repository.UserRepository = (*UserRepository)(nil)
