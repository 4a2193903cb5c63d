package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/movie-catalog/internal/model"
)

const userColumns = "id, name, email, password_hash, created_at, updated_at"

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// updatableUserColumns whitelists the columns Update may write.
var updatableUserColumns = map[string]bool{"name": true, "email": true, "password_hash": true}

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u (whose PasswordHash must already be set) and fills its
// ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	q := conn(ctx, r.db)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := q.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
		u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return q.QueryRowContext(ctx, "SELECT created_at, updated_at FROM users WHERE id = ?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db).QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update writes the given columns of a user.  Column order is sorted so
// the generated statement is stable.
func (r *UserRepo) Update(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !updatableUserColumns[col] {
			return fmt.Errorf("update users: column %q not allowed", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		found, err := rowExists(ctx, q, "SELECT 1 FROM users WHERE id = ? LIMIT 1", id)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "1062")
}
