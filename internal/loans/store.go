package loans

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

const selectLoan = `
SELECT l.id, l.loan_ulid, l.lender_id, l.borrower_id, l.loan_type, l.amount,
       l.object_name, l.object_description, l.object_image,
       l.loan_date, l.due_date, l.return_date, l.status, l.notes,
       l.created_at, l.updated_at,
       lu.name AS lender_name, bu.name AS borrower_name
FROM loans l
JOIN users lu ON lu.id = l.lender_id
JOIN users bu ON bu.id = l.borrower_id`

func (s *Store) Insert(ctx context.Context, l *Loan) (int64, error) {
	const q = `
INSERT INTO loans
(loan_ulid, lender_id, borrower_id, loan_type, amount, object_name, object_description, object_image,
 loan_date, due_date, status, notes, created_at, updated_at)
VALUES
(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		l.LoanULID, l.LenderID, l.BorrowerID, string(l.LoanType), l.Amount,
		l.ObjectName, l.ObjectDescription, l.ObjectImage,
		l.LoanDate, l.DueDate, string(l.Status), l.Notes,
		db.Timestamp(l.CreatedAt), db.Timestamp(l.UpdatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// 見つからなければ nil, nil
func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Loan, error) {
	var l Loan
	err := q.GetContext(ctx, &l, selectLoan+` WHERE l.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// escapeLike は LIKE のワイルドカードを ESCAPE '!' 用にエスケープする
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func (s *Store) List(ctx context.Context, role Role, userID int64, f ListFilter) ([]Loan, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(selectLoan)
	b.WriteString(` WHERE ` + role.column() + ` = ?`)
	args = append(args, userID)

	if f.Status != nil {
		b.WriteString(` AND l.status = ?`)
		args = append(args, string(*f.Status))
	}
	if f.LoanType != nil {
		b.WriteString(` AND l.loan_type = ?`)
		args = append(args, string(*f.LoanType))
	}
	if f.CounterpartyID != nil {
		b.WriteString(` AND ` + role.counterpartyColumn() + ` = ?`)
		args = append(args, *f.CounterpartyID)
	}
	if f.DateFrom != nil {
		b.WriteString(` AND l.loan_date >= ?`)
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		b.WriteString(` AND l.loan_date <= ?`)
		args = append(args, *f.DateTo)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		b.WriteString(` AND (LOWER(COALESCE(l.object_name, '')) LIKE ? ESCAPE '!'`)
		b.WriteString(` OR LOWER(COALESCE(l.notes, '')) LIKE ? ESCAPE '!'`)
		b.WriteString(` OR LOWER(` + role.counterpartyName() + `) LIKE ? ESCAPE '!')`)
		args = append(args, like, like, like)
	}
	b.WriteString(` ORDER BY l.created_at DESC, l.id DESC`)

	out := []Loan{}
	if err := s.db.SelectContext(ctx, &out, b.String(), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields applies "col = ?" assignments to one loan owned by lenderID.
func (s *Store) UpdateFields(ctx context.Context, q db.DBTX, id, lenderID int64, sets []string, args []any) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}
	query := `UPDATE loans SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND lender_id = ?`
	res, err := q.ExecContext(ctx, query, append(args, id, lenderID)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkReturned は未返却かつ本人所有の行だけを更新する（0 件なら対象なし）
func (s *Store) MarkReturned(ctx context.Context, id, lenderID int64, today db.Date, updatedAt string) (int64, error) {
	const q = `
UPDATE loans SET status = 'returned', return_date = ?, updated_at = ?
WHERE id = ? AND lender_id = ? AND status <> 'returned'`
	res, err := s.db.ExecContext(ctx, q, today, updatedAt, id, lenderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id, lenderID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ? AND lender_id = ?`, id, lenderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPastDue returns unreturned loans of either party whose due date is before today.
func (s *Store) ListPastDue(ctx context.Context, userID int64, today db.Date) ([]Loan, error) {
	q := selectLoan + `
WHERE (l.lender_id = ? OR l.borrower_id = ?)
  AND l.status IN ('active', 'overdue')
  AND l.due_date < ?
ORDER BY l.due_date ASC, l.id ASC`
	out := []Loan{}
	if err := s.db.SelectContext(ctx, &out, q, userID, userID, today); err != nil {
		return nil, err
	}
	return out, nil
}

// PromoteOverdue sets status=overdue on the given loans unless they were returned meanwhile.
func (s *Store) PromoteOverdue(ctx context.Context, ids []int64, updatedAt string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(
		`UPDATE loans SET status = 'overdue', updated_at = ? WHERE id IN (?) AND status <> 'returned'`,
		updatedAt, ids,
	)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) ListDueBetween(ctx context.Context, role Role, userID int64, from, to db.Date) ([]Loan, error) {
	q := selectLoan + `
WHERE ` + role.column() + ` = ?
  AND l.status = 'active'
  AND l.due_date BETWEEN ? AND ?
ORDER BY l.due_date ASC, l.id ASC`
	out := []Loan{}
	if err := s.db.SelectContext(ctx, &out, q, userID, from, to); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) RoleStats(ctx context.Context, role Role, userID int64) (roleStats, error) {
	q := `
SELECT
  COUNT(CASE WHEN l.status = 'active' THEN 1 END) AS active,
  COUNT(CASE WHEN l.status = 'returned' THEN 1 END) AS returned,
  COUNT(CASE WHEN l.status = 'overdue' THEN 1 END) AS overdue,
  COALESCE(SUM(CASE WHEN l.status = 'active' AND l.loan_type = 'money' THEN l.amount ELSE 0 END), 0) AS pending,
  COALESCE(SUM(CASE WHEN l.status = 'returned' AND l.loan_type = 'money' THEN l.amount ELSE 0 END), 0) AS returned_amount
FROM loans l
WHERE ` + role.column() + ` = ?`
	var out roleStats
	err := s.db.QueryRowxContext(ctx, q, userID).Scan(
		&out.Active, &out.Returned, &out.Overdue, &out.Pending, &out.ReturnedAmount,
	)
	return out, err
}

func (s *Store) ReportRows(ctx context.Context, role Role, userID int64) ([]reportRow, error) {
	q := `
SELECT l.loan_type, l.status, COUNT(*) AS n,
       COALESCE(SUM(CASE WHEN l.loan_type = 'money' THEN l.amount ELSE 0 END), 0) AS amount
FROM loans l
WHERE ` + role.column() + ` = ?
GROUP BY l.loan_type, l.status`
	out := []reportRow{}
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}
