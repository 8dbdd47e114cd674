package loans

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
	"loanbook-backend/internal/platform/db"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans/", h.Create)
	r.GET("/loans/my-loans", h.MyLoans)
	r.GET("/loans/borrowed", h.Borrowed)
	r.PUT("/loans/:id", h.Update)
	r.POST("/loans/:id/return", h.MarkReturned)
	r.DELETE("/loans/:id", h.Delete)

	r.GET("/loans/stats", h.Stats)
	r.GET("/loans/overdue", h.Overdue)
	r.GET("/loans/upcoming", h.Upcoming)
	r.GET("/loans/report", h.Report)
	r.GET("/loans/dashboard", h.Dashboard)
	r.GET("/loans/export", h.Export)
}

// ---------- handlers ----------

// Create godoc
// @Summary  Lend money or an object to another user
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body CreateLoanRequest true "loan"
// @Success  201 {object} CreateLoanResponse
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/loans/"+res.LoanULID)
	c.JSON(http.StatusCreated, res)
}

// MyLoans godoc
// @Summary  Loans where the current user is the lender
// @Tags     loans
// @Produce  json
// @Param    status      query string false "active | returned | overdue"
// @Param    loan_type   query string false "money | object"
// @Param    borrower_id query int    false "counterparty"
// @Param    date_from   query string false "YYYY-MM-DD"
// @Param    date_to     query string false "YYYY-MM-DD"
// @Param    search      query string false "object name, notes or borrower name"
// @Success  200 {array} Loan
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/my-loans [get]
func (h *Handler) MyLoans(c *gin.Context) {
	h.list(c, RoleLender)
}

// Borrowed godoc
// @Summary  Loans where the current user is the borrower
// @Tags     loans
// @Produce  json
// @Param    lender_id query int false "counterparty"
// @Success  200 {array} Loan
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/borrowed [get]
func (h *Handler) Borrowed(c *gin.Context) {
	h.list(c, RoleBorrower)
}

func (h *Handler) list(c *gin.Context, role Role) {
	f, err := parseFilter(c, role)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context(), role, auth.UserID(c), f))
}

// Update godoc
// @Summary  Change fields of a loan (lender only); omitted fields stay as they are
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    id   path int               true "loan id"
// @Param    body body UpdateLoanRequest true "fields to change"
// @Success  200 {object} map[string]any
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := loanID(c)
	if !ok {
		return
	}
	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.FromBinding(err))
		return
	}
	if err := h.svc.Update(c.Request.Context(), id, auth.UserID(c), req); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "loan updated"})
}

// MarkReturned godoc
// @Summary  Mark a loan as returned (lender only)
// @Tags     loans
// @Produce  json
// @Param    id path int true "loan id"
// @Success  200 {object} map[string]any
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/{id}/return [post]
func (h *Handler) MarkReturned(c *gin.Context) {
	id, ok := loanID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkReturned(c.Request.Context(), id, auth.UserID(c)); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "loan marked as returned"})
}

// Delete godoc
// @Summary  Delete a loan (lender only)
// @Tags     loans
// @Produce  json
// @Param    id path int true "loan id"
// @Success  200 {object} map[string]any
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := loanID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, auth.UserID(c)); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "loan deleted"})
}

// Stats godoc
// @Summary  Loan counts and amounts of the current user, both roles combined
// @Tags     loans
// @Produce  json
// @Success  200 {object} LoanStats
// @Router   /loans/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context(), auth.UserID(c)))
}

// Overdue godoc
// @Summary  Past-due loans of the current user; active ones are promoted to overdue
// @Tags     loans
// @Produce  json
// @Success  200 {array} Loan
// @Router   /loans/overdue [get]
func (h *Handler) Overdue(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListOverdue(c.Request.Context(), auth.UserID(c)))
}

// Upcoming godoc
// @Summary  Active loans due within the next days, split by role
// @Tags     loans
// @Produce  json
// @Param    days query int false "window in days (default 3)"
// @Success  200 {object} UpcomingLoans
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/upcoming [get]
func (h *Handler) Upcoming(c *gin.Context) {
	days := DefaultUpcomingDays
	if v := strings.TrimSpace(c.Query("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierr.Respond(c, apierr.ErrInvalid("days must be an integer"))
			return
		}
		days = n
	}
	out, err := h.svc.ListUpcoming(c.Request.Context(), auth.UserID(c), days)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Report godoc
// @Summary  Totals by status and by type, per role
// @Tags     loans
// @Produce  json
// @Success  200 {object} ReportSummary
// @Router   /loans/report [get]
func (h *Handler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Report(c.Request.Context(), auth.UserID(c)))
}

// Dashboard godoc
// @Summary  Home screen bundle: user, stats, recent and overdue loans, latest notifications
// @Tags     loans
// @Produce  json
// @Success  200 {object} Dashboard
// @Failure  404 {object} apierr.ErrorDTO
// @Router   /loans/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Export godoc
// @Summary  Download the filtered loan list as CSV
// @Tags     loans
// @Produce  text/csv
// @Param    role     query string false "lender (default) | borrower"
// @Param    encoding query string false "utf-8 (default) | utf-16 | shift_jis"
// @Success  200 {file} file
// @Failure  400 {object} apierr.ErrorDTO
// @Router   /loans/export [get]
func (h *Handler) Export(c *gin.Context) {
	role := RoleLender
	switch strings.ToLower(c.DefaultQuery("role", string(RoleLender))) {
	case string(RoleLender):
	case string(RoleBorrower):
		role = RoleBorrower
	default:
		apierr.Respond(c, apierr.ErrInvalid("role must be lender or borrower"))
		return
	}
	enc, err := ParseEncoding(c.Query("encoding"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	f, err := parseFilter(c, role)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), &buf, role, auth.UserID(c), f, enc); err != nil {
		apierr.Respond(c, err)
		return
	}
	filename := fmt.Sprintf("loans_%s_%s.csv", role, h.svc.today())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType(enc), buf.Bytes())
}

// ---------- helpers ----------

func contentType(enc Encoding) string {
	switch enc {
	case EncodingUTF16:
		return "text/csv; charset=utf-16"
	case EncodingShiftJIS:
		return "text/csv; charset=shift_jis"
	}
	return "text/csv; charset=utf-8"
}

func loanID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierr.Respond(c, apierr.ErrInvalid("invalid loan id"))
		return 0, false
	}
	return id, true
}

// parseFilter reads the list filters from the query string. 相手側の ID は
// my-loans では borrower_id、borrowed では lender_id。
func parseFilter(c *gin.Context, role Role) (ListFilter, error) {
	var f ListFilter

	if v := strings.TrimSpace(c.Query("status")); v != "" {
		st := Status(v)
		if !st.Valid() {
			return f, apierr.ErrInvalid("status must be one of active, returned, overdue")
		}
		f.Status = &st
	}
	if v := strings.TrimSpace(c.Query("loan_type")); v != "" {
		t := LoanType(v)
		if !t.Valid() {
			return f, apierr.ErrInvalid("loan_type must be money or object")
		}
		f.LoanType = &t
	}

	param := "borrower_id"
	if role == RoleBorrower {
		param = "lender_id"
	}
	if v := strings.TrimSpace(c.Query(param)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, apierr.ErrInvalid(param + " must be a positive integer")
		}
		f.CounterpartyID = &id
	}

	for _, p := range []struct {
		name string
		dst  **db.Date
	}{{"date_from", &f.DateFrom}, {"date_to", &f.DateTo}} {
		v := strings.TrimSpace(c.Query(p.name))
		if v == "" {
			continue
		}
		d, err := db.ParseDate(v)
		if err != nil {
			return f, apierr.ErrInvalid(p.name + " must be YYYY-MM-DD")
		}
		*p.dst = &d
	}

	f.Search = c.Query("search")
	return f, nil
}
