package users

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
	"loanbook-backend/internal/platform/db"
)

// -------------- Clock --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// gin の binding タグをそのまま使ってサービス層でも検証する
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// -------------- Service --------------

type Service struct {
	db     *sqlx.DB
	store  *Store
	clock  Clock
	tokens *auth.Tokens
}

func NewService(conn *sqlx.DB, tokens *auth.Tokens) *Service {
	return &Service{
		db:     conn,
		store:  NewStore(conn),
		clock:  realClock{},
		tokens: tokens,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterRequest) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return 0, apierr.FromBinding(err)
	}

	taken, err := s.store.UsernameTaken(ctx, in.Username)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, apierr.ErrConflict("username already exists")
	}
	taken, err = s.store.EmailTaken(ctx, s.db, in.Email, 0)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, apierr.ErrConflict("email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	id, err := s.store.Create(ctx, &User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// チェック後に同時登録された場合
		if db.IsDuplicateKey(err) {
			return 0, apierr.ErrConflict("username or email already exists")
		}
		return 0, err
	}
	log.Printf("[INFO] user registered id=%d username=%s", id, in.Username)
	return id, nil
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (LoginResponse, error) {
	u, err := s.store.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return LoginResponse{}, err
	}
	if u == nil {
		return LoginResponse{}, apierr.ErrNotFound("user not found")
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return LoginResponse{}, apierr.ErrUnauthenticated("invalid password")
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Success: true, Message: "login successful", User: *u, Token: token}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apierr.ErrNotFound("user not found")
	}
	return *u, nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.Exists(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateProfileRequest) error {
	if in.empty() {
		return apierr.ErrInvalid("no fields to update")
	}
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		in.Email = &e
	}
	if err := validate.Struct(in); err != nil {
		return apierr.FromBinding(err)
	}

	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		u, err := s.store.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return apierr.ErrNotFound("user not found")
		}

		if in.Email != nil && *in.Email != u.Email {
			taken, err := s.store.EmailTaken(ctx, tx, *in.Email, id)
			if err != nil {
				return err
			}
			if taken {
				return apierr.ErrConflict("email already exists")
			}
		}

		if _, err := s.store.UpdateProfile(ctx, tx, id, in, db.Timestamp(s.clock.Now())); err != nil {
			if db.IsDuplicateKey(err) {
				return apierr.ErrConflict("email already exists")
			}
			return err
		}
		return nil
	})
}

// Search never fails; storage errors yield an empty list.
func (s *Service) Search(ctx context.Context, term string) []User {
	out, err := s.store.Search(ctx, term)
	if err != nil {
		log.Printf("[ERROR] search users: %v", err)
		return []User{}
	}
	return out
}

func (s *Service) DBStatus(ctx context.Context) DBStatusResponse {
	if db.Ping(ctx, s.db) {
		return DBStatusResponse{DatabaseExists: true, Message: "database is reachable"}
	}
	return DBStatusResponse{DatabaseExists: false, Message: "database is not reachable"}
}
