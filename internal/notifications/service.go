package notifications

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/db"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// UserDirectory answers whether a recipient exists.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	db    *sqlx.DB
	store *Store
	users UserDirectory
	clock Clock
	hub   *Hub
}

// hub may be nil (no live push).
func NewService(conn *sqlx.DB, users UserDirectory, hub *Hub) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		users: users,
		clock: realClock{},
		hub:   hub,
	}
}

func (s *Service) Create(ctx context.Context, in CreateRequest) (int64, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Type == "" {
		in.Type = TypeInfo
	}
	switch {
	case in.UserID <= 0:
		return 0, apierr.ErrInvalid("user_id must be > 0")
	case in.Title == "" || utf8.RuneCountInString(in.Title) > 255:
		return 0, apierr.ErrInvalid("title must be 1-255 characters")
	case in.Message == "" || utf8.RuneCountInString(in.Message) > 1000:
		return 0, apierr.ErrInvalid("message must be 1-1000 characters")
	case !in.Type.Valid():
		return 0, apierr.ErrInvalid("type must be one of info, warning, error, success")
	}

	ok, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apierr.ErrNotFound("user not found")
	}

	n := Notification{
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		LoanID:    in.LoanID,
		CreatedAt: s.clock.Now(),
	}
	id, err := s.store.Create(ctx, &n)
	if err != nil {
		return 0, err
	}
	n.ID = id

	if s.hub != nil {
		s.hub.Push(n)
	}
	return id, nil
}

// ListFor returns the user's notifications, newest first. limit <= 0 means no limit.
func (s *Service) ListFor(ctx context.Context, userID int64, limit int, unreadOnly bool) []Notification {
	out, err := s.store.ListByUser(ctx, userID, limit, unreadOnly)
	if err != nil {
		log.Printf("[ERROR] list notifications user_id=%d: %v", userID, err)
		return []Notification{}
	}
	return out
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.store.MarkRead(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.ErrNotOwned("notification not found or unauthorized")
		}
		return nil
	})
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) int64 {
	n, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		log.Printf("[ERROR] unread count user_id=%d: %v", userID, err)
		return 0
	}
	return n
}
