package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterPublicRoutes mounts the routes that must stay reachable without an identity.
func RegisterPublicRoutes(r gin.IRoutes, svc *Service, limit gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.POST("/auth/register", limit, h.Register)
	r.POST("/auth/login", limit, h.Login)
	r.GET("/auth/db-status", h.DBStatus)
	r.GET("/auth/health", h.Health)
}

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/auth/profile", h.GetProfile)
	r.PUT("/auth/profile", h.UpdateProfile)

	// 貸出先の選択用
	r.GET("/loans/users", h.Search)
}

// ---------- handlers ----------

// Register godoc
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "new user"
// @Success  201 {object} map[string]any
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	id, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "user registered", "user_id": id})
}

// Login godoc
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} apierr.ErrorDTO
// @Failure  404 {object} apierr.ErrorDTO
// @Router   /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DBStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.DBStatus(c.Request.Context()))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "auth service is running"})
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	if err := h.svc.UpdateProfile(c.Request.Context(), auth.UserID(c), req); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "profile updated"})
}

// Search godoc
// @Summary  Users selectable as loan counterparty
// @Tags     loans
// @Produce  json
// @Param    search query string false "name, username or email fragment"
// @Success  200 {array} User
// @Router   /loans/users [get]
func (h *Handler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Search(c.Request.Context(), c.Query("search")))
}
