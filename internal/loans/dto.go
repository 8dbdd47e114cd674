package loans

import (
	"github.com/shopspring/decimal"

	"loanbook-backend/internal/notifications"
	"loanbook-backend/internal/platform/db"
	"loanbook-backend/internal/users"
)

// POST /loans/
type CreateLoanRequest struct {
	BorrowerID        int64            `json:"borrower_id" binding:"required,gt=0"`
	LoanType          LoanType         `json:"loan_type" binding:"required,oneof=money object"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	ObjectName        *string          `json:"object_name,omitempty" binding:"omitempty,max=255"`
	ObjectDescription *string          `json:"object_description,omitempty" binding:"omitempty,max=1000"`
	ObjectImage       *string          `json:"object_image,omitempty" binding:"omitempty,max=500"`
	LoanDate          db.Date          `json:"loan_date"`
	DueDate           db.Date          `json:"due_date"`
	Notes             *string          `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

type CreateLoanResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	LoanID   int64  `json:"loan_id"`
	LoanULID string `json:"loan_ulid"`
	// 通知の作成に失敗しても貸出自体は成功扱い
	Warning string `json:"warning,omitempty"`
}

// PUT /loans/:id（未指定 / null は変更しない）
type UpdateLoanRequest struct {
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	ObjectName        *string          `json:"object_name,omitempty" binding:"omitempty,max=255"`
	ObjectDescription *string          `json:"object_description,omitempty" binding:"omitempty,max=1000"`
	ObjectImage       *string          `json:"object_image,omitempty" binding:"omitempty,max=500"`
	DueDate           *db.Date         `json:"due_date,omitempty"`
	ReturnDate        *db.Date         `json:"return_date,omitempty"`
	Status            *Status          `json:"status,omitempty"`
	Notes             *string          `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

func (r UpdateLoanRequest) empty() bool {
	return r.Amount == nil && r.ObjectName == nil && r.ObjectDescription == nil &&
		r.ObjectImage == nil && r.DueDate == nil && r.ReturnDate == nil &&
		r.Status == nil && r.Notes == nil
}

// ListFilter narrows my-loans / borrowed. Nil fields are not applied.
type ListFilter struct {
	Status         *Status
	LoanType       *LoanType
	CounterpartyID *int64
	DateFrom       *db.Date
	DateTo         *db.Date
	Search         string
}

type UpcomingLoans struct {
	AsLender   []Loan `json:"as_lender"`
	AsBorrower []Loan `json:"as_borrower"`
}

type LoanStats struct {
	TotalActiveLoans    int64           `json:"total_active_loans"`
	TotalReturnedLoans  int64           `json:"total_returned_loans"`
	TotalOverdueLoans   int64           `json:"total_overdue_loans"`
	TotalAmountLent     decimal.Decimal `json:"total_amount_lent"`
	TotalAmountReturned decimal.Decimal `json:"total_amount_returned"`
	PendingAmount       decimal.Decimal `json:"pending_amount"`
}

// roleStats is one side (lender or borrower) before combination.
type roleStats struct {
	Active         int64
	Returned       int64
	Overdue        int64
	Pending        decimal.Decimal // active の money 合計
	ReturnedAmount decimal.Decimal // returned の money 合計
}

type Bucket struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type RoleReport struct {
	ByStatus    map[Status]Bucket   `json:"by_status"`
	ByType      map[LoanType]Bucket `json:"by_type"`
	TotalCount  int64               `json:"total_count"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
}

type ReportSummary struct {
	AsLender   RoleReport `json:"as_lender"`
	AsBorrower RoleReport `json:"as_borrower"`
}

// reportRow is one GROUP BY loan_type, status row.
type reportRow struct {
	LoanType LoanType        `db:"loan_type"`
	Status   Status          `db:"status"`
	Count    int64           `db:"n"`
	Amount   decimal.Decimal `db:"amount"`
}

type Dashboard struct {
	User          users.User                   `json:"user"`
	Stats         LoanStats                    `json:"stats"`
	RecentLoans   []Loan                       `json:"recent_loans"`
	OverdueLoans  []Loan                       `json:"overdue_loans"`
	Notifications []notifications.Notification `json:"notifications"`
}
