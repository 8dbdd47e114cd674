package loans

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"loanbook-backend/internal/notifications"
	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
	"loanbook-backend/internal/platform/db"
	"loanbook-backend/internal/testutil"
	"loanbook-backend/internal/users"
)

type fixture struct {
	svc   *Service
	notif *notifications.Service
	clock *testutil.FixedClock
	ana   int64
	ben   int64
	cara  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := testutil.NewTestDB(t)
	clock := &testutil.FixedClock{T: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}

	dir := users.NewService(conn, auth.NewTokens("test-secret", time.Hour))
	notif := notifications.NewService(conn, users.NewStore(conn), nil)
	svc := NewService(conn, dir, notif, nil)
	svc.clock = clock

	return fixture{
		svc:   svc,
		notif: notif,
		clock: clock,
		ana:   testutil.SeedUser(t, conn, "Ana", "ana"),
		ben:   testutil.SeedUser(t, conn, "Ben", "ben"),
		cara:  testutil.SeedUser(t, conn, "Stephone", "cara"),
	}
}

func date(t *testing.T, s string) db.Date {
	t.Helper()
	d, err := db.ParseDate(s)
	require.NoError(t, err)
	return d
}

func str(s string) *string { return &s }

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (f fixture) money(t *testing.T, lender, borrower int64, amt, loanDate, dueDate string) int64 {
	t.Helper()
	f.clock.Advance(time.Second)
	res, err := f.svc.Create(context.Background(), lender, CreateLoanRequest{
		BorrowerID: borrower,
		LoanType:   TypeMoney,
		Amount:     amount(amt),
		LoanDate:   date(t, loanDate),
		DueDate:    date(t, dueDate),
	})
	require.NoError(t, err)
	return res.LoanID
}

func (f fixture) object(t *testing.T, lender, borrower int64, name, loanDate, dueDate string) int64 {
	t.Helper()
	f.clock.Advance(time.Second)
	res, err := f.svc.Create(context.Background(), lender, CreateLoanRequest{
		BorrowerID: borrower,
		LoanType:   TypeObject,
		ObjectName: str(name),
		LoanDate:   date(t, loanDate),
		DueDate:    date(t, dueDate),
	})
	require.NoError(t, err)
	return res.LoanID
}

func (f fixture) get(t *testing.T, id int64) Loan {
	t.Helper()
	l, err := f.svc.store.GetByID(context.Background(), f.svc.db, id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return *l
}

func TestCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.ana, CreateLoanRequest{
		BorrowerID:        f.ben,
		LoanType:          TypeObject,
		ObjectName:        str("  Drill "),
		ObjectDescription: str("cordless"),
		LoanDate:          date(t, "2024-06-01"),
		DueDate:           date(t, "2024-06-15"),
		Notes:             str("bring it back charged"),
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.LoanULID, 26)
	require.Empty(t, res.Warning)

	got := f.svc.List(ctx, RoleLender, f.ana, ListFilter{})
	require.Len(t, got, 1)
	l := got[0]
	require.Equal(t, res.LoanID, l.ID)
	require.Equal(t, res.LoanULID, l.LoanULID)
	require.Equal(t, f.ana, l.LenderID)
	require.Equal(t, f.ben, l.BorrowerID)
	require.Equal(t, TypeObject, l.LoanType)
	require.False(t, l.Amount.Valid)
	require.Equal(t, "Drill", *l.ObjectName)
	require.Equal(t, "cordless", *l.ObjectDescription)
	require.Equal(t, "2024-06-01", l.LoanDate.String())
	require.Equal(t, "2024-06-15", l.DueDate.String())
	require.False(t, l.ReturnDate.Valid)
	require.Equal(t, StatusActive, l.Status)
	require.Equal(t, "bring it back charged", *l.Notes)
	require.Equal(t, "Ana", l.LenderName)
	require.Equal(t, "Ben", l.BorrowerName)

	// 借り手側からも同じ行が見える
	borrowed := f.svc.List(ctx, RoleBorrower, f.ben, ListFilter{})
	require.Len(t, borrowed, 1)
	require.Equal(t, res.LoanID, borrowed[0].ID)
}

func TestCreateNotifiesBothParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.money(t, f.ana, f.ben, "120.50", "2024-06-01", "2024-07-01")

	toBen := f.notif.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 1)
	require.Equal(t, notifications.TypeInfo, toBen[0].Type)
	require.Equal(t, id, *toBen[0].LoanID)
	require.Contains(t, toBen[0].Message, "Amount: $120.50")

	toAna := f.notif.ListFor(ctx, f.ana, 0, false)
	require.Len(t, toAna, 1)
	require.Equal(t, notifications.TypeSuccess, toAna[0].Type)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := func() CreateLoanRequest {
		return CreateLoanRequest{
			BorrowerID: f.ben,
			LoanType:   TypeMoney,
			Amount:     amount("10"),
			LoanDate:   date(t, "2024-06-01"),
			DueDate:    date(t, "2024-06-10"),
		}
	}

	cases := []struct {
		name   string
		mutate func(r *CreateLoanRequest)
		code   apierr.Code
	}{
		{"missing amount", func(r *CreateLoanRequest) { r.Amount = nil }, apierr.CodeInvalidArgument},
		{"zero amount", func(r *CreateLoanRequest) { r.Amount = amount("0") }, apierr.CodeInvalidArgument},
		{"negative amount", func(r *CreateLoanRequest) { r.Amount = amount("-5") }, apierr.CodeInvalidArgument},
		{"three decimals", func(r *CreateLoanRequest) { r.Amount = amount("1.005") }, apierr.CodeInvalidArgument},
		{"too large", func(r *CreateLoanRequest) { r.Amount = amount("100000000") }, apierr.CodeInvalidArgument},
		{"bad type", func(r *CreateLoanRequest) { r.LoanType = "car" }, apierr.CodeInvalidArgument},
		{"object without name", func(r *CreateLoanRequest) {
			r.LoanType, r.Amount, r.ObjectName = TypeObject, nil, str("   ")
		}, apierr.CodeInvalidArgument},
		{"object with amount", func(r *CreateLoanRequest) {
			r.LoanType, r.ObjectName = TypeObject, str("Book")
		}, apierr.CodeInvalidArgument},
		{"due equals loan date", func(r *CreateLoanRequest) { r.DueDate = r.LoanDate }, apierr.CodeInvalidArgument},
		{"due before loan date", func(r *CreateLoanRequest) { r.DueDate = date(t, "2024-05-30") }, apierr.CodeInvalidArgument},
		{"missing dates", func(r *CreateLoanRequest) { r.LoanDate = db.Date{} }, apierr.CodeInvalidArgument},
		{"self loan", func(r *CreateLoanRequest) { r.BorrowerID = f.ana }, apierr.CodeInvalidArgument},
		{"notes too long", func(r *CreateLoanRequest) { r.Notes = str(strings.Repeat("n", 1001)) }, apierr.CodeInvalidArgument},
		{"unknown borrower", func(r *CreateLoanRequest) { r.BorrowerID = 999 }, apierr.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(&req)
			_, err := f.svc.Create(ctx, f.ana, req)
			require.Error(t, err)
			require.Equal(t, tc.code, apierr.CodeOf(err))
			require.Equal(t, http.StatusBadRequest, apierr.HTTPStatus(err))
		})
	}

	_, err := f.svc.Create(ctx, 999, base())
	require.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
	require.Contains(t, err.Error(), "lender not found")

	require.Empty(t, f.svc.List(ctx, RoleLender, f.ana, ListFilter{}))
}

type failingNotifier struct{ Notifier }

func (failingNotifier) LoanCreated(context.Context, notifications.LoanInfo) error {
	return errors.New("notification store unavailable")
}

func TestCreateWarnsWhenNotificationsFail(t *testing.T) {
	f := newFixture(t)
	f.svc.notifier = failingNotifier{Notifier: f.notif}

	res, err := f.svc.Create(context.Background(), f.ana, CreateLoanRequest{
		BorrowerID: f.ben,
		LoanType:   TypeMoney,
		Amount:     amount("5"),
		LoanDate:   date(t, "2024-06-01"),
		DueDate:    date(t, "2024-06-02"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Warning)
	require.Equal(t, StatusActive, f.get(t, res.LoanID).Status)
}

func TestListFiltersAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	phone := f.object(t, f.ana, f.ben, "Phone charger", "2024-05-01", "2024-05-20")
	toCara := f.money(t, f.ana, f.cara, "30", "2024-05-10", "2024-06-10")
	book := f.object(t, f.ana, f.ben, "Book", "2024-05-25", "2024-06-25")
	f.money(t, f.ben, f.ana, "80", "2024-05-15", "2024-06-15")

	ids := func(ls []Loan) []int64 {
		out := make([]int64, 0, len(ls))
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	// 新しい順
	require.Equal(t, []int64{book, toCara, phone}, ids(f.svc.List(ctx, RoleLender, f.ana, ListFilter{})))

	// 物の名前と相手の名前（Stephone）の両方にヒット
	require.ElementsMatch(t, []int64{phone, toCara},
		ids(f.svc.List(ctx, RoleLender, f.ana, ListFilter{Search: "PHONE"})))

	// ワイルドカードは文字どおり扱う
	require.Empty(t, f.svc.List(ctx, RoleLender, f.ana, ListFilter{Search: "%"}))

	money := TypeMoney
	require.Equal(t, []int64{toCara}, ids(f.svc.List(ctx, RoleLender, f.ana, ListFilter{LoanType: &money})))

	ben := f.ben
	require.Equal(t, []int64{book, phone}, ids(f.svc.List(ctx, RoleLender, f.ana, ListFilter{CounterpartyID: &ben})))

	from, to := date(t, "2024-05-05"), date(t, "2024-05-25")
	require.Equal(t, []int64{book, toCara},
		ids(f.svc.List(ctx, RoleLender, f.ana, ListFilter{DateFrom: &from, DateTo: &to})))

	returned := StatusReturned
	require.Empty(t, f.svc.List(ctx, RoleLender, f.ana, ListFilter{Status: &returned}))

	require.Len(t, f.svc.List(ctx, RoleBorrower, f.ana, ListFilter{}), 1)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	moneyID := f.money(t, f.ana, f.ben, "100", "2024-06-01", "2024-06-30")
	objID := f.object(t, f.ana, f.ben, "Tent", "2024-06-01", "2024-06-30")

	// 借り手・第三者・存在しない ID は同じエラー
	for _, tc := range []struct {
		loan, user int64
	}{{moneyID, f.ben}, {moneyID, f.cara}, {999, f.ana}} {
		err := f.svc.Update(ctx, tc.loan, tc.user, UpdateLoanRequest{Notes: str("x")})
		require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))
		require.Equal(t, http.StatusBadRequest, apierr.HTTPStatus(err))
	}

	err := f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	err = f.svc.Update(ctx, objID, f.ana, UpdateLoanRequest{Amount: amount("5")})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	err = f.svc.Update(ctx, objID, f.ana, UpdateLoanRequest{ObjectName: str(" ")})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	early := date(t, "2024-05-31")
	err = f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{DueDate: &early})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	bogus := Status("lost")
	err = f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{Status: &bogus})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	// sparse: notes だけ変わる
	require.NoError(t, f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{Notes: str("half now")}))
	l := f.get(t, moneyID)
	require.Equal(t, "half now", *l.Notes)
	require.True(t, decimal.RequireFromString("100").Equal(l.Amount.Decimal))
	require.Equal(t, "2024-06-30", l.DueDate.String())
	require.Equal(t, StatusActive, l.Status)

	require.NoError(t, f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{Amount: amount("75.25")}))
	require.True(t, decimal.RequireFromString("75.25").Equal(f.get(t, moneyID).Amount.Decimal))

	returned := StatusReturned
	require.NoError(t, f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{Status: &returned}))
	l = f.get(t, moneyID)
	require.Equal(t, StatusReturned, l.Status)
	require.True(t, l.ReturnDate.Valid)
	require.Equal(t, "2024-06-01", l.ReturnDate.Date.String())

	active := StatusActive
	err = f.svc.Update(ctx, moneyID, f.ana, UpdateLoanRequest{Status: &active})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestMarkReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.object(t, f.ana, f.ben, "Ladder", "2024-05-20", "2024-06-20")

	err := f.svc.MarkReturned(ctx, id, f.ben)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))

	benBefore := len(f.notif.ListFor(ctx, f.ben, 0, false))
	anaBefore := len(f.notif.ListFor(ctx, f.ana, 0, false))
	require.NoError(t, f.svc.MarkReturned(ctx, id, f.ana))

	l := f.get(t, id)
	require.Equal(t, StatusReturned, l.Status)
	require.Equal(t, "2024-06-01", l.ReturnDate.Date.String())

	// 通知は借り手へ、貸し手には届かない
	toBen := f.notif.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, benBefore+1)
	require.Equal(t, "Loan marked as returned", toBen[0].Title)
	require.Equal(t, notifications.TypeSuccess, toBen[0].Type)
	require.Contains(t, toBen[0].Message, "Ana marked your loan as returned")
	require.Equal(t, id, *toBen[0].LoanID)
	require.Len(t, f.notif.ListFor(ctx, f.ana, 0, false), anaBefore)

	// 二度目は対象なし、通知も増えない
	err = f.svc.MarkReturned(ctx, id, f.ana)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))
	require.Len(t, f.notif.ListFor(ctx, f.ben, 0, false), benBefore+1)
	require.Len(t, f.notif.ListFor(ctx, f.ana, 0, false), anaBefore)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.money(t, f.ana, f.ben, "9.99", "2024-06-01", "2024-06-02")

	err := f.svc.Delete(ctx, id, f.ben)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))

	require.NoError(t, f.svc.Delete(ctx, id, f.ana))
	require.Empty(t, f.svc.List(ctx, RoleLender, f.ana, ListFilter{}))

	// 通知は残り、loan_id だけ外れる
	toBen := f.notif.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 1)
	require.Nil(t, toBen[0].LoanID)

	err = f.svc.Delete(ctx, id, f.ana)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))
}

func TestListOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late := f.money(t, f.ana, f.ben, "40", "2024-05-01", "2024-05-20")
	lateObj := f.object(t, f.cara, f.ana, "Bike", "2024-05-02", "2024-05-10")
	f.money(t, f.ana, f.ben, "10", "2024-05-25", "2024-06-01") // 今日が期限 → まだ延滞ではない
	back := f.money(t, f.ana, f.cara, "15", "2024-05-01", "2024-05-05")
	require.NoError(t, f.svc.MarkReturned(ctx, back, f.ana))

	benBefore := len(f.notif.ListFor(ctx, f.ben, 0, false))

	got := f.svc.ListOverdue(ctx, f.ana)
	require.Len(t, got, 2)
	require.Equal(t, lateObj, got[0].ID) // 期限の古い順
	require.Equal(t, late, got[1].ID)
	for _, l := range got {
		require.Equal(t, StatusOverdue, l.Status)
	}
	require.Equal(t, StatusOverdue, f.get(t, late).Status)

	toBen := f.notif.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, benBefore+1)
	require.Equal(t, notifications.TypeWarning, toBen[0].Type)

	// 再実行しても同じ集合、通知は増えない
	again := f.svc.ListOverdue(ctx, f.ana)
	require.Len(t, again, 2)
	require.Len(t, f.notif.ListFor(ctx, f.ben, 0, false), benBefore+1)

	// 借り手側からも見える
	require.Len(t, f.svc.ListOverdue(ctx, f.ben), 1)

	// overdue からの返却は可能
	require.NoError(t, f.svc.MarkReturned(ctx, late, f.ana))
	require.Len(t, f.svc.ListOverdue(ctx, f.ana), 1)
}

func TestListUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	today := f.money(t, f.ana, f.ben, "1", "2024-05-20", "2024-06-01")
	soon := f.object(t, f.ben, f.ana, "Lamp", "2024-05-20", "2024-06-03")
	f.money(t, f.ana, f.ben, "2", "2024-05-20", "2024-06-06")
	f.money(t, f.ana, f.ben, "3", "2024-05-20", "2024-05-31")

	got, err := f.svc.ListUpcoming(ctx, f.ana, DefaultUpcomingDays)
	require.NoError(t, err)
	require.Len(t, got.AsLender, 1)
	require.Equal(t, today, got.AsLender[0].ID)
	require.Len(t, got.AsBorrower, 1)
	require.Equal(t, soon, got.AsBorrower[0].ID)

	got, err = f.svc.ListUpcoming(ctx, f.ana, 0)
	require.NoError(t, err)
	require.Len(t, got.AsLender, 1)
	require.Empty(t, got.AsBorrower)

	got, err = f.svc.ListUpcoming(ctx, f.ana, 10)
	require.NoError(t, err)
	require.Len(t, got.AsLender, 2)

	for _, days := range []int{-1, MaxUpcomingDays + 1} {
		_, err = f.svc.ListUpcoming(ctx, f.ana, days)
		require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.money(t, f.ana, f.ben, "100", "2024-06-01", "2024-07-01")
	back := f.money(t, f.ben, f.ana, "50", "2024-06-01", "2024-07-01")
	require.NoError(t, f.svc.MarkReturned(ctx, back, f.ben))
	f.object(t, f.ana, f.cara, "Saw", "2024-06-01", "2024-07-01")

	s := f.svc.Stats(ctx, f.ana)
	require.EqualValues(t, 2, s.TotalActiveLoans)
	require.EqualValues(t, 1, s.TotalReturnedLoans)
	require.EqualValues(t, 0, s.TotalOverdueLoans)
	require.Equal(t, "100", s.TotalAmountLent.String())
	require.Equal(t, "50", s.TotalAmountReturned.String())
	require.Equal(t, "100", s.PendingAmount.String())

	empty := f.svc.Stats(ctx, 999)
	require.Zero(t, empty.TotalActiveLoans)
	require.True(t, empty.PendingAmount.IsZero())
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.money(t, f.ana, f.ben, "10.50", "2024-06-01", "2024-07-01")
	f.money(t, f.ana, f.cara, "4.50", "2024-06-01", "2024-07-01")
	f.object(t, f.ana, f.ben, "Pan", "2024-06-01", "2024-07-01")

	r := f.svc.Report(ctx, f.ana)
	require.EqualValues(t, 3, r.AsLender.TotalCount)
	require.Equal(t, "15", r.AsLender.TotalAmount.String())
	require.EqualValues(t, 3, r.AsLender.ByStatus[StatusActive].Count)
	require.EqualValues(t, 2, r.AsLender.ByType[TypeMoney].Count)
	require.EqualValues(t, 1, r.AsLender.ByType[TypeObject].Count)
	require.True(t, r.AsLender.ByType[TypeObject].Amount.IsZero())

	// 該当なしのキーも 0 で埋まる
	require.Contains(t, r.AsLender.ByStatus, StatusOverdue)
	require.Zero(t, r.AsLender.ByStatus[StatusOverdue].Count)
	require.Len(t, r.AsBorrower.ByStatus, 3)
	require.Len(t, r.AsBorrower.ByType, 2)
	require.Zero(t, r.AsBorrower.TotalCount)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Dashboard(ctx, 999)
	require.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	for i := 0; i < 6; i++ {
		f.money(t, f.ana, f.ben, "1", "2024-05-01", "2024-07-01")
	}
	late := f.money(t, f.ana, f.ben, "1", "2024-05-01", "2024-05-02")

	d, err := f.svc.Dashboard(ctx, f.ana)
	require.NoError(t, err)
	require.Equal(t, "Ana", d.User.Name)
	require.Len(t, d.RecentLoans, 5)
	require.Equal(t, late, d.RecentLoans[0].ID)
	// 同じペイロード内で recent と overdue の状態が食い違わない
	require.Equal(t, StatusOverdue, d.RecentLoans[0].Status)
	require.Len(t, d.OverdueLoans, 1)
	require.Equal(t, late, d.OverdueLoans[0].ID)
	require.EqualValues(t, 1, d.Stats.TotalOverdueLoans)
	require.Len(t, d.Notifications, 5)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.object(t, f.ana, f.ben, "電卓, 関数", "2024-06-01", "2024-06-10")
	f.money(t, f.ana, f.ben, "12.5", "2024-06-01", "2024-06-10")

	var utf8 bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &utf8, RoleLender, f.ana, ListFilter{}, EncodingUTF8))
	lines := strings.Split(strings.TrimSpace(utf8.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, strings.Join(csvHeader, ","), lines[0])
	require.Contains(t, lines[1], "12.50")
	require.Contains(t, lines[2], `"電卓, 関数"`)

	var utf16 bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &utf16, RoleLender, f.ana, ListFilter{}, EncodingUTF16))
	require.Equal(t, []byte{0xFF, 0xFE}, utf16.Bytes()[:2])

	var sjis bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &sjis, RoleLender, f.ana, ListFilter{}, EncodingShiftJIS))
	decoded, err := io.ReadAll(transform.NewReader(&sjis, japanese.ShiftJIS.NewDecoder()))
	require.NoError(t, err)
	require.Equal(t, utf8.String(), string(decoded))

	var none bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &none, RoleBorrower, f.ana, ListFilter{}, EncodingUTF8))
	require.Equal(t, strings.Join(csvHeader, ",")+"\n", none.String())

	_, err = ParseEncoding("latin-1")
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
	enc, err := ParseEncoding("SJIS")
	require.NoError(t, err)
	require.Equal(t, EncodingShiftJIS, enc)
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusActive.CanBecome(StatusOverdue))
	require.True(t, StatusActive.CanBecome(StatusReturned))
	require.True(t, StatusOverdue.CanBecome(StatusReturned))
	require.True(t, StatusReturned.CanBecome(StatusReturned))
	require.False(t, StatusOverdue.CanBecome(StatusActive))
	require.False(t, StatusReturned.CanBecome(StatusActive))
	require.False(t, StatusReturned.CanBecome(StatusOverdue))
}
