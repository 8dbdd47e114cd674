package loans

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

const (
	dashboardRecent        = 5
	dashboardNotifications = 5
)

// Stats combines the lender-side and borrower-side rollups of the user.
//
// total_amount_lent is lender pending + lender returned; total_amount_returned adds
// the returned sums of both sides. Clients depend on these exact figures.
func (s *Service) Stats(ctx context.Context, userID int64) LoanStats {
	lent, err := s.store.RoleStats(ctx, RoleLender, userID)
	if err != nil {
		log.Printf("[ERROR] stats as lender user_id=%d: %v", userID, err)
		lent = roleStats{}
	}
	borrowed, err := s.store.RoleStats(ctx, RoleBorrower, userID)
	if err != nil {
		log.Printf("[ERROR] stats as borrower user_id=%d: %v", userID, err)
		borrowed = roleStats{}
	}
	return combineStats(lent, borrowed)
}

func combineStats(l, b roleStats) LoanStats {
	return LoanStats{
		TotalActiveLoans:    l.Active + b.Active,
		TotalReturnedLoans:  l.Returned + b.Returned,
		TotalOverdueLoans:   l.Overdue + b.Overdue,
		TotalAmountLent:     l.Pending.Add(l.ReturnedAmount).Round(2),
		TotalAmountReturned: l.ReturnedAmount.Add(b.ReturnedAmount).Round(2),
		PendingAmount:       l.Pending.Add(b.Pending).Round(2),
	}
}

// Report rolls up each role separately by status and by loan type.
func (s *Service) Report(ctx context.Context, userID int64) ReportSummary {
	return ReportSummary{
		AsLender:   s.roleReport(ctx, RoleLender, userID),
		AsBorrower: s.roleReport(ctx, RoleBorrower, userID),
	}
}

func (s *Service) roleReport(ctx context.Context, role Role, userID int64) RoleReport {
	rows, err := s.store.ReportRows(ctx, role, userID)
	if err != nil {
		log.Printf("[ERROR] report role=%s user_id=%d: %v", role, userID, err)
		rows = nil
	}
	return buildReport(rows)
}

func buildReport(rows []reportRow) RoleReport {
	r := RoleReport{
		ByStatus: map[Status]Bucket{
			StatusActive:   {Amount: decimal.Zero},
			StatusReturned: {Amount: decimal.Zero},
			StatusOverdue:  {Amount: decimal.Zero},
		},
		ByType: map[LoanType]Bucket{
			TypeMoney:  {Amount: decimal.Zero},
			TypeObject: {Amount: decimal.Zero},
		},
		TotalAmount: decimal.Zero,
	}
	for _, row := range rows {
		amt := row.Amount.Round(2)

		st := r.ByStatus[row.Status]
		st.Count += row.Count
		st.Amount = st.Amount.Add(amt)
		r.ByStatus[row.Status] = st

		ty := r.ByType[row.LoanType]
		ty.Count += row.Count
		ty.Amount = ty.Amount.Add(amt)
		r.ByType[row.LoanType] = ty

		r.TotalCount += row.Count
		r.TotalAmount = r.TotalAmount.Add(amt)
	}
	return r
}

// Dashboard bundles what the home screen shows. Fails only when the user does not exist.
func (s *Service) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	// 先に延滞を昇格させてから一覧と集計を読む
	overdue := s.ListOverdue(ctx, userID)
	recent := s.List(ctx, RoleLender, userID, ListFilter{})
	if len(recent) > dashboardRecent {
		recent = recent[:dashboardRecent]
	}
	return Dashboard{
		User:          u,
		Stats:         s.Stats(ctx, userID),
		RecentLoans:   recent,
		OverdueLoans:  overdue,
		Notifications: s.notifier.ListFor(ctx, userID, dashboardNotifications, false),
	}, nil
}
