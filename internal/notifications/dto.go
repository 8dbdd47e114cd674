package notifications

// POST /notifications/
type CreateRequest struct {
	UserID  int64  `json:"user_id" binding:"required,gt=0"`
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required,max=1000"`
	Type    Type   `json:"type,omitempty" binding:"omitempty,oneof=info warning error success"`
	LoanID  *int64 `json:"loan_id,omitempty" binding:"omitempty,gt=0"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
