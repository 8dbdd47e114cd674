package notifications

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"loanbook-backend/internal/platform/db"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store { return &Store{db: conn} }

const columns = `id, user_id, title, message, type, is_read, loan_id, created_at`

func (s *Store) Create(ctx context.Context, n *Notification) (int64, error) {
	const q = `
INSERT INTO notifications (user_id, title, message, type, is_read, loan_id, created_at)
VALUES (?, ?, ?, ?, 0, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		n.UserID, n.Title, n.Message, string(n.Type), n.LoanID, db.Timestamp(n.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListByUser(ctx context.Context, userID int64, limit int, unreadOnly bool) ([]Notification, error) {
	var (
		b    strings.Builder
		args = []any{userID}
	)
	b.WriteString(`SELECT ` + columns + ` FROM notifications WHERE user_id = ?`)
	if unreadOnly {
		b.WriteString(` AND is_read = 0`)
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC`)
	if limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	out := []Notification{}
	if err := s.db.SelectContext(ctx, &out, b.String(), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead は所有者一致の行だけを既読にする。対象行が無ければ false。
func (s *Store) MarkRead(ctx context.Context, q db.DBTX, id, userID int64) (bool, error) {
	var n int
	if err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID)
	return n, err
}
