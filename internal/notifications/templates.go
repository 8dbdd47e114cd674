package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LoanInfo is what the lifecycle templates need to know about a loan.
type LoanInfo struct {
	LoanID       int64
	LenderID     int64
	BorrowerID   int64
	LenderName   string
	BorrowerName string
	Amount       decimal.NullDecimal
	ObjectName   string
}

var printer = message.NewPrinter(language.English)

// "Amount: $1,234.50" or "Object: Drill"
func (l LoanInfo) describe() string {
	if l.Amount.Valid {
		return printer.Sprintf("Amount: $%.2f", l.Amount.Decimal.InexactFloat64())
	}
	return "Object: " + l.ObjectName
}

// loan_id は任意。0 は未保存扱いで NULL にする
func (l LoanInfo) loanRef() *int64 {
	if l.LoanID <= 0 {
		return nil
	}
	id := l.LoanID
	return &id
}

func nameOr(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("user #%d", id)
}

// LoanCreated tells the borrower (info) and the lender (success) about a new loan.
// Both notifications are attempted; failures are joined.
func (s *Service) LoanCreated(ctx context.Context, l LoanInfo) error {
	_, errB := s.Create(ctx, CreateRequest{
		UserID:  l.BorrowerID,
		Title:   "New loan received",
		Message: fmt.Sprintf("You received a loan from %s. %s", nameOr(l.LenderName, l.LenderID), l.describe()),
		Type:    TypeInfo,
		LoanID:  l.loanRef(),
	})
	_, errL := s.Create(ctx, CreateRequest{
		UserID:  l.LenderID,
		Title:   "Loan created",
		Message: fmt.Sprintf("You created a loan for %s. %s", nameOr(l.BorrowerName, l.BorrowerID), l.describe()),
		Type:    TypeSuccess,
		LoanID:  l.loanRef(),
	})
	return errors.Join(errB, errL)
}

// LoanReturned tells the borrower that the lender closed the loan.
func (s *Service) LoanReturned(ctx context.Context, l LoanInfo) error {
	_, err := s.Create(ctx, CreateRequest{
		UserID:  l.BorrowerID,
		Title:   "Loan marked as returned",
		Message: fmt.Sprintf("%s marked your loan as returned. %s", nameOr(l.LenderName, l.LenderID), l.describe()),
		Type:    TypeSuccess,
		LoanID:  l.loanRef(),
	})
	return err
}

func (s *Service) LoanOverdue(ctx context.Context, l LoanInfo) error {
	_, err := s.Create(ctx, CreateRequest{
		UserID:  l.BorrowerID,
		Title:   "Loan overdue",
		Message: fmt.Sprintf("Your loan from %s is overdue. %s", nameOr(l.LenderName, l.LenderID), l.describe()),
		Type:    TypeWarning,
		LoanID:  l.loanRef(),
	})
	return err
}
