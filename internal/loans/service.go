package loans

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	ulid "github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"loanbook-backend/internal/notifications"
	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/db"
	"loanbook-backend/internal/platform/events"
	"loanbook-backend/internal/users"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// -------------- Collaborators --------------

type UserDirectory interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

type Notifier interface {
	LoanCreated(ctx context.Context, l notifications.LoanInfo) error
	LoanReturned(ctx context.Context, l notifications.LoanInfo) error
	LoanOverdue(ctx context.Context, l notifications.LoanInfo) error
	ListFor(ctx context.Context, userID int64, limit int, unreadOnly bool) []notifications.Notification
}

// DECIMAL(10,2) の上限
var maxAmount = decimal.New(1, 8)

var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// -------------- Service --------------

type Service struct {
	db       *sqlx.DB
	store    *Store
	users    UserDirectory
	notifier Notifier
	events   events.Publisher
	clock    Clock
	id       IDGen
}

func NewService(conn *sqlx.DB, dir UserDirectory, notifier Notifier, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		db:       conn,
		store:    NewStore(conn),
		users:    dir,
		notifier: notifier,
		events:   pub,
		clock:    realClock{},
		id:       ulidGen{},
	}
}

func (s *Service) today() db.Date { return db.NewDate(s.clock.Now()) }

func checkAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return apierr.ErrInvalid("amount must be greater than 0")
	}
	if !a.Equal(a.Round(2)) {
		return apierr.ErrInvalid("amount must have at most 2 decimal places")
	}
	if a.GreaterThanOrEqual(maxAmount) {
		return apierr.ErrInvalid("amount is too large")
	}
	return nil
}

func blank(p *string) bool { return p == nil || strings.TrimSpace(*p) == "" }

func (s *Service) validateCreate(lenderID int64, in CreateLoanRequest) error {
	if in.BorrowerID <= 0 {
		return apierr.ErrInvalid("borrower_id must be > 0")
	}
	if !in.LoanType.Valid() {
		return apierr.ErrInvalid("loan_type must be money or object")
	}
	switch in.LoanType {
	case TypeMoney:
		if in.Amount == nil {
			return apierr.ErrInvalid("amount is required for money loans")
		}
		if err := checkAmount(*in.Amount); err != nil {
			return err
		}
	case TypeObject:
		if blank(in.ObjectName) {
			return apierr.ErrInvalid("object_name is required for object loans")
		}
		if in.Amount != nil {
			return apierr.ErrInvalid("amount must be empty for object loans")
		}
	}
	if in.LoanDate.IsZero() || in.DueDate.IsZero() {
		return apierr.ErrInvalid("loan_date and due_date are required")
	}
	if !in.DueDate.After(in.LoanDate) {
		return apierr.ErrInvalid("due_date must be after loan_date")
	}
	if err := validate.Struct(in); err != nil {
		return apierr.FromBinding(err)
	}
	if lenderID == in.BorrowerID {
		return apierr.ErrInvalid("lender and borrower must be different users")
	}
	return nil
}

// party resolves a loan participant; a missing user becomes a 400 naming the side.
func (s *Service) party(ctx context.Context, id int64, side string) (users.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if apierr.CodeOf(err) == apierr.CodeNotFound {
			return users.User{}, apierr.ErrMissingParty(side + " not found")
		}
		return users.User{}, err
	}
	return u, nil
}

// POST /loans/
func (s *Service) Create(ctx context.Context, lenderID int64, in CreateLoanRequest) (CreateLoanResponse, error) {
	if err := s.validateCreate(lenderID, in); err != nil {
		return CreateLoanResponse{}, err
	}
	lender, err := s.party(ctx, lenderID, "lender")
	if err != nil {
		return CreateLoanResponse{}, err
	}
	borrower, err := s.party(ctx, in.BorrowerID, "borrower")
	if err != nil {
		return CreateLoanResponse{}, err
	}

	now := s.clock.Now()
	l := &Loan{
		LoanULID:          s.id.NewULID(now),
		LenderID:          lenderID,
		BorrowerID:        in.BorrowerID,
		LoanType:          in.LoanType,
		ObjectName:        trimmed(in.ObjectName),
		ObjectDescription: in.ObjectDescription,
		ObjectImage:       in.ObjectImage,
		LoanDate:          in.LoanDate,
		DueDate:           in.DueDate,
		Status:            StatusActive,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
		LenderName:        lender.Name,
		BorrowerName:      borrower.Name,
	}
	if in.Amount != nil {
		l.Amount = decimal.NewNullDecimal(*in.Amount)
	}

	id, err := s.store.Insert(ctx, l)
	if err != nil {
		return CreateLoanResponse{}, err
	}
	l.ID = id
	log.Printf("[INFO] loan created id=%d lender=%d borrower=%d type=%s", id, lenderID, in.BorrowerID, in.LoanType)

	resp := CreateLoanResponse{Success: true, Message: "loan created", LoanID: id, LoanULID: l.LoanULID}

	// 貸出はコミット済み。通知の失敗は警告として返すだけ
	if err := s.notifier.LoanCreated(ctx, infoOf(*l)); err != nil {
		log.Printf("[WARN] loan created id=%d but notifications failed: %v", id, err)
		resp.Warning = "loan created but notifications could not be delivered"
	}
	s.publish(ctx, events.LoanCreated, *l)
	return resp, nil
}

// List never fails; storage errors yield an empty list.
func (s *Service) List(ctx context.Context, role Role, userID int64, f ListFilter) []Loan {
	out, err := s.store.List(ctx, role, userID, f)
	if err != nil {
		log.Printf("[ERROR] list loans role=%s user_id=%d: %v", role, userID, err)
		return []Loan{}
	}
	return out
}

// PUT /loans/:id
func (s *Service) Update(ctx context.Context, loanID, lenderID int64, in UpdateLoanRequest) error {
	if in.empty() {
		return apierr.ErrInvalid("no fields to update")
	}
	if err := validate.Struct(in); err != nil {
		return apierr.FromBinding(err)
	}

	var updated Loan
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		cur, err := s.store.GetByID(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if cur == nil || cur.LenderID != lenderID {
			return apierr.ErrNotOwned("loan not found or unauthorized")
		}

		sets, args, err := s.patch(*cur, in)
		if err != nil {
			return err
		}
		n, err := s.store.UpdateFields(ctx, tx, loanID, lenderID, sets, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.ErrNotOwned("loan not found or unauthorized")
		}
		updated = *cur
		if in.Status != nil {
			updated.Status = *in.Status
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.LoanUpdated, updated)
	return nil
}

// patch validates in against the stored loan and returns the SET list.
func (s *Service) patch(cur Loan, in UpdateLoanRequest) ([]string, []any, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if in.Amount != nil {
		if cur.LoanType != TypeMoney {
			return nil, nil, apierr.ErrInvalid("amount only applies to money loans")
		}
		if err := checkAmount(*in.Amount); err != nil {
			return nil, nil, err
		}
		set("amount", decimal.NewNullDecimal(*in.Amount))
	}
	if in.ObjectName != nil {
		if cur.LoanType == TypeObject && blank(in.ObjectName) {
			return nil, nil, apierr.ErrInvalid("object_name is required for object loans")
		}
		set("object_name", strings.TrimSpace(*in.ObjectName))
	}
	if in.ObjectDescription != nil {
		set("object_description", *in.ObjectDescription)
	}
	if in.ObjectImage != nil {
		set("object_image", *in.ObjectImage)
	}
	if in.DueDate != nil {
		if !in.DueDate.After(cur.LoanDate) {
			return nil, nil, apierr.ErrInvalid("due_date must be after loan_date")
		}
		set("due_date", *in.DueDate)
	}
	if in.ReturnDate != nil {
		if in.ReturnDate.Before(cur.LoanDate) {
			return nil, nil, apierr.ErrInvalid("return_date must not be before loan_date")
		}
		set("return_date", *in.ReturnDate)
	}
	if in.Status != nil {
		next := *in.Status
		if !next.Valid() {
			return nil, nil, apierr.ErrInvalid("status must be one of active, returned, overdue")
		}
		if !cur.Status.CanBecome(next) {
			return nil, nil, apierr.ErrInvalid(fmt.Sprintf("cannot change status from %s to %s", cur.Status, next))
		}
		set("status", string(next))
		if next == StatusReturned && in.ReturnDate == nil && !cur.ReturnDate.Valid {
			set("return_date", s.today())
		}
	}
	if in.Notes != nil {
		set("notes", *in.Notes)
	}
	set("updated_at", db.Timestamp(s.clock.Now()))
	return sets, args, nil
}

// POST /loans/:id/return
func (s *Service) MarkReturned(ctx context.Context, loanID, lenderID int64) error {
	n, err := s.store.MarkReturned(ctx, loanID, lenderID, s.today(), db.Timestamp(s.clock.Now()))
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotOwned("loan not found, unauthorized or already returned")
	}

	l, err := s.store.GetByID(ctx, s.db, loanID)
	if err != nil || l == nil {
		log.Printf("[WARN] loan returned id=%d but reload failed: %v", loanID, err)
		return nil
	}
	if err := s.notifier.LoanReturned(ctx, infoOf(*l)); err != nil {
		log.Printf("[WARN] loan returned id=%d but notification failed: %v", loanID, err)
	}
	s.publish(ctx, events.LoanReturned, *l)
	return nil
}

// DELETE /loans/:id
func (s *Service) Delete(ctx context.Context, loanID, lenderID int64) error {
	n, err := s.store.Delete(ctx, loanID, lenderID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotOwned("loan not found or unauthorized")
	}
	s.publish(ctx, events.LoanDeleted, Loan{ID: loanID, LenderID: lenderID})
	return nil
}

// ---------- helpers ----------

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func infoOf(l Loan) notifications.LoanInfo {
	return notifications.LoanInfo{
		LoanID:       l.ID,
		LenderID:     l.LenderID,
		BorrowerID:   l.BorrowerID,
		LenderName:   l.LenderName,
		BorrowerName: l.BorrowerName,
		Amount:       l.Amount,
		ObjectName:   l.objectName(),
	}
}

func (s *Service) publish(ctx context.Context, subject string, l Loan) {
	ev := events.Event{
		Subject:    subject,
		LoanID:     l.ID,
		LoanULID:   l.LoanULID,
		LenderID:   l.LenderID,
		BorrowerID: l.BorrowerID,
		Status:     string(l.Status),
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("[WARN] publish %s loan_id=%d: %v", subject, l.ID, err)
	}
}
