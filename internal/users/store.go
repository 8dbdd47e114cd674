package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"loanbook-backend/internal/platform/db"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store { return &Store{db: conn} }

const userColumns = `id, name, username, email, password_hash, phone, address, profile_image, created_at, updated_at`

// 見つからなければ nil, nil
func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*User, error) {
	var u User
	err := q.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// exceptID > 0 のときはその本人を除外して判定する
func (s *Store) EmailTaken(ctx context.Context, q db.DBTX, email string, exceptID int64) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`, email, exceptID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE username = ?`, username); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Create(ctx context.Context, u *User) (int64, error) {
	const q = `
INSERT INTO users (name, username, email, password_hash, phone, address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		u.Name, u.Username, u.Email, u.PasswordHash, u.Phone, u.Address,
		db.Timestamp(u.CreatedAt), db.Timestamp(u.UpdatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProfile writes only the non-nil fields of in.
func (s *Store) UpdateProfile(ctx context.Context, q db.DBTX, id int64, in UpdateProfileRequest, updatedAt string) (int64, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, col+" = ?")
		args = append(args, *v)
	}
	add("name", in.Name)
	add("email", in.Email)
	add("phone", in.Phone)
	add("address", in.Address)
	add("profile_image", in.ProfileImage)
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	res, err := q.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Search(ctx context.Context, term string) ([]User, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`SELECT ` + userColumns + ` FROM users`)
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + term + "%"
		b.WriteString(` WHERE name LIKE ? OR username LIKE ? OR email LIKE ?`)
		args = append(args, like, like, like)
	}
	b.WriteString(` ORDER BY name ASC, id ASC`)

	out := []User{}
	if err := s.db.SelectContext(ctx, &out, b.String(), args...); err != nil {
		return nil, err
	}
	return out, nil
}
