package loans

import (
	"time"

	"github.com/shopspring/decimal"

	"loanbook-backend/internal/platform/db"
)

type LoanType string

const (
	TypeMoney  LoanType = "money"
	TypeObject LoanType = "object"
)

func (t LoanType) Valid() bool { return t == TypeMoney || t == TypeObject }

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusReturned || s == StatusOverdue
}

// CanBecome reports whether a loan in status s may move to next.
// returned は終端。active へ戻ることはない。
func (s Status) CanBecome(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusActive:
		return next == StatusOverdue || next == StatusReturned
	case StatusOverdue:
		return next == StatusReturned
	}
	return false
}

// Role selects which side of the loan the user is on.
type Role string

const (
	RoleLender   Role = "lender"
	RoleBorrower Role = "borrower"
)

// 列名は固定値のみ（SQL に直接埋め込むため）
func (r Role) column() string {
	if r == RoleBorrower {
		return "l.borrower_id"
	}
	return "l.lender_id"
}

// 相手側の名前列
func (r Role) counterpartyName() string {
	if r == RoleBorrower {
		return "lu.name"
	}
	return "bu.name"
}

func (r Role) counterpartyColumn() string {
	if r == RoleBorrower {
		return "l.lender_id"
	}
	return "l.borrower_id"
}

type Loan struct {
	ID                int64               `db:"id" json:"id"`
	LoanULID          string              `db:"loan_ulid" json:"loan_ulid"`
	LenderID          int64               `db:"lender_id" json:"lender_id"`
	BorrowerID        int64               `db:"borrower_id" json:"borrower_id"`
	LoanType          LoanType            `db:"loan_type" json:"loan_type"`
	Amount            decimal.NullDecimal `db:"amount" json:"amount"`
	ObjectName        *string             `db:"object_name" json:"object_name"`
	ObjectDescription *string             `db:"object_description" json:"object_description"`
	ObjectImage       *string             `db:"object_image" json:"object_image"`
	LoanDate          db.Date             `db:"loan_date" json:"loan_date"`
	DueDate           db.Date             `db:"due_date" json:"due_date"`
	ReturnDate        db.NullDate         `db:"return_date" json:"return_date"`
	Status            Status              `db:"status" json:"status"`
	Notes             *string             `db:"notes" json:"notes"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`

	// JOIN users
	LenderName   string `db:"lender_name" json:"lender_name"`
	BorrowerName string `db:"borrower_name" json:"borrower_name"`
}

// objectName is "" for money loans.
func (l Loan) objectName() string {
	if l.ObjectName == nil {
		return ""
	}
	return *l.ObjectName
}
