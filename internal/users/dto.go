package users

// POST /auth/register
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=255"`
	Username string  `json:"username" binding:"required,min=3,max=100"`
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address  *string `json:"address,omitempty" binding:"omitempty,max=500"`
}

// POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// PUT /auth/profile（未指定 / null のフィールドは変更しない）
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address      *string `json:"address,omitempty" binding:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image,omitempty" binding:"omitempty,max=500"`
}

func (r UpdateProfileRequest) empty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Address == nil && r.ProfileImage == nil
}

type DBStatusResponse struct {
	DatabaseExists bool   `json:"database_exists"`
	Message        string `json:"message"`
}
