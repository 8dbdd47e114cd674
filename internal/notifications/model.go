package notifications

import "time"

type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	}
	return false
}

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      Type      `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	LoanID    *int64    `db:"loan_id" json:"loan_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
