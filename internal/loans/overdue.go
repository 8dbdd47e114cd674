package loans

import (
	"context"
	"log"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/db"
	"loanbook-backend/internal/platform/events"
)

const (
	DefaultUpcomingDays = 3
	MaxUpcomingDays     = 365
)

// ListOverdue returns every unreturned loan of the user (either side) that is past due,
// oldest due date first. Loans still marked active are promoted to overdue on the way,
// and their borrowers are notified. Repeated calls return the same set; only the first
// one changes anything.
func (s *Service) ListOverdue(ctx context.Context, userID int64) []Loan {
	rows, err := s.store.ListPastDue(ctx, userID, s.today())
	if err != nil {
		log.Printf("[ERROR] list overdue user_id=%d: %v", userID, err)
		return []Loan{}
	}
	s.promoteOverdue(ctx, rows)
	return rows
}

// promoteOverdue moves the active loans in rows to overdue (in place) and fires the
// overdue side effects for them. 同時実行で二重通知になることはあり得る（at-least-once）。
func (s *Service) promoteOverdue(ctx context.Context, rows []Loan) {
	var ids []int64
	for _, l := range rows {
		if l.Status == StatusActive {
			ids = append(ids, l.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	if _, err := s.store.PromoteOverdue(ctx, ids, db.Timestamp(s.clock.Now())); err != nil {
		log.Printf("[ERROR] promote overdue ids=%v: %v", ids, err)
		return
	}
	log.Printf("[INFO] promoted %d loan(s) to overdue", len(ids))

	for i := range rows {
		if rows[i].Status != StatusActive {
			continue
		}
		rows[i].Status = StatusOverdue
		if err := s.notifier.LoanOverdue(ctx, infoOf(rows[i])); err != nil {
			log.Printf("[WARN] overdue notification loan_id=%d: %v", rows[i].ID, err)
		}
		s.publish(ctx, events.LoanOverdue, rows[i])
	}
}

// ListUpcoming returns active loans due within [today, today+days], split by role.
func (s *Service) ListUpcoming(ctx context.Context, userID int64, days int) (UpcomingLoans, error) {
	if days < 0 || days > MaxUpcomingDays {
		return UpcomingLoans{}, apierr.ErrInvalid("days must be between 0 and 365")
	}
	from := s.today()
	to := from.AddDays(days)

	out := UpcomingLoans{AsLender: []Loan{}, AsBorrower: []Loan{}}
	var err error
	if out.AsLender, err = s.store.ListDueBetween(ctx, RoleLender, userID, from, to); err != nil {
		log.Printf("[ERROR] upcoming as lender user_id=%d: %v", userID, err)
		out.AsLender = []Loan{}
	}
	if out.AsBorrower, err = s.store.ListDueBetween(ctx, RoleBorrower, userID, from, to); err != nil {
		log.Printf("[ERROR] upcoming as borrower user_id=%d: %v", userID, err)
		out.AsBorrower = []Loan{}
	}
	return out, nil
}
