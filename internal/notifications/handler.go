package notifications

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/notifications/", h.List)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.POST("/notifications/:id/read", h.MarkRead)
	r.POST("/notifications/mark-all-read", h.MarkAllRead)
	r.POST("/notifications/", h.Create)
	r.GET("/notifications/ws", h.Stream)
}

// ---------- handlers ----------

// List godoc
// @Summary  Notifications of the current user, newest first
// @Tags     notifications
// @Produce  json
// @Param    limit       query int  false "max items"
// @Param    unread_only query bool false "only unread"
// @Success  200 {array} Notification
// @Router   /notifications/ [get]
func (h *Handler) List(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 0)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))
	c.JSON(http.StatusOK, h.svc.ListFor(c.Request.Context(), auth.UserID(c), limit, unreadOnly))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, UnreadCountResponse{UnreadCount: h.svc.UnreadCount(c.Request.Context(), auth.UserID(c))})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierr.Respond(c, apierr.ErrInvalid("invalid notification id"))
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, auth.UserID(c)); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": strconv.FormatInt(n, 10) + " notifications marked as read",
		"count":   n,
	})
}

// Create godoc
// @Summary  Create a notification for any user
// @Tags     notifications
// @Accept   json
// @Produce  json
// @Param    body body CreateRequest true "notification"
// @Success  201 {object} map[string]any
// @Failure  400 {object} apierr.ErrorDTO
// @Failure  404 {object} apierr.ErrorDTO
// @Router   /notifications/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	id, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "notification created", "notification_id": id})
}

func (h *Handler) Stream(c *gin.Context) {
	if h.svc.hub == nil {
		apierr.Respond(c, apierr.ErrInvalid("live notifications are disabled"))
		return
	}
	userID := auth.UserID(c)
	// Upgrade 失敗時は gorilla が 400 を書き込み済み
	if err := h.svc.hub.Serve(c.Writer, c.Request, userID); err != nil {
		log.Printf("[WARN] ws upgrade user_id=%d: %v", userID, err)
	}
}

// ---------- helpers ----------

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
