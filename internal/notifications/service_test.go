package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"loanbook-backend/internal/platform/apierr"
	"loanbook-backend/internal/platform/auth"
	"loanbook-backend/internal/testutil"
	"loanbook-backend/internal/users"
)

type fixture struct {
	conn  *sqlx.DB
	svc   *Service
	clock *testutil.FixedClock
	ana   int64
	ben   int64
}

func newFixture(t *testing.T, hub *Hub) fixture {
	t.Helper()
	conn := testutil.NewTestDB(t)
	clock := &testutil.FixedClock{T: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(conn, users.NewStore(conn), hub)
	svc.clock = clock
	return fixture{
		conn:  conn,
		svc:   svc,
		clock: clock,
		ana:   testutil.SeedUser(t, conn, "Ana", "ana"),
		ben:   testutil.SeedUser(t, conn, "Ben", "ben"),
	}
}

func (f fixture) create(t *testing.T, userID int64, title string) int64 {
	t.Helper()
	f.clock.Advance(time.Second)
	id, err := f.svc.Create(context.Background(), CreateRequest{UserID: userID, Title: title, Message: "msg"})
	require.NoError(t, err)
	return id
}

func TestCreateRequiresExistingRecipient(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: 999, Title: "t", Message: "m"})
	require.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateRequest{UserID: f.ana, Title: "", Message: "m"})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	_, err = f.svc.Create(ctx, CreateRequest{UserID: f.ana, Title: strings.Repeat("x", 256), Message: "m"})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	_, err = f.svc.Create(ctx, CreateRequest{UserID: f.ana, Title: "t", Message: "m", Type: "urgent"})
	require.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	id, err := f.svc.Create(ctx, CreateRequest{UserID: f.ana, Title: "t", Message: "m"})
	require.NoError(t, err)
	got := f.svc.ListFor(ctx, f.ana, 0, false)
	require.Len(t, got, 1)
	require.Equal(t, id, got[0].ID)
	require.Equal(t, TypeInfo, got[0].Type)
	require.False(t, got[0].IsRead)
	require.Nil(t, got[0].LoanID)
}

func TestListForOrderLimitAndUnread(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.create(t, f.ana, "first")
	f.create(t, f.ana, "second")
	f.create(t, f.ana, "third")
	f.create(t, f.ben, "other")

	all := f.svc.ListFor(ctx, f.ana, 0, false)
	require.Len(t, all, 3)
	require.Equal(t, "third", all[0].Title)
	require.Equal(t, "first", all[2].Title)

	require.Len(t, f.svc.ListFor(ctx, f.ana, 2, false), 2)

	require.NoError(t, f.svc.MarkRead(ctx, first, f.ana))
	unread := f.svc.ListFor(ctx, f.ana, 0, true)
	require.Len(t, unread, 2)
	for _, n := range unread {
		require.NotEqual(t, first, n.ID)
	}
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, f.ana, "hello")

	err := f.svc.MarkRead(ctx, id, f.ben)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))
	require.Equal(t, int64(1), f.svc.UnreadCount(ctx, f.ana))

	err = f.svc.MarkRead(ctx, 12345, f.ana)
	require.Equal(t, apierr.CodeNotOwned, apierr.CodeOf(err))

	require.NoError(t, f.svc.MarkRead(ctx, id, f.ana))
	// 既読への再実行もエラーにしない
	require.NoError(t, f.svc.MarkRead(ctx, id, f.ana))
	require.Zero(t, f.svc.UnreadCount(ctx, f.ana))
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.create(t, f.ana, "a")
	f.create(t, f.ana, "b")
	f.create(t, f.ben, "c")

	n, err := f.svc.MarkAllRead(ctx, f.ana)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Zero(t, f.svc.UnreadCount(ctx, f.ana))
	require.Equal(t, int64(1), f.svc.UnreadCount(ctx, f.ben))

	n, err = f.svc.MarkAllRead(ctx, f.ana)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLoanTemplates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// 未保存のローン（ID 0）は loan_id なし
	money := LoanInfo{
		LenderID: f.ana, BorrowerID: f.ben, LenderName: "Ana", BorrowerName: "Ben",
		Amount: decimal.NewNullDecimal(decimal.RequireFromString("150.5")),
	}
	require.NoError(t, f.svc.LoanCreated(ctx, money))

	toBen := f.svc.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 1)
	require.Equal(t, TypeInfo, toBen[0].Type)
	require.Equal(t, "New loan received", toBen[0].Title)
	require.Contains(t, toBen[0].Message, "Ana")
	require.Contains(t, toBen[0].Message, "Amount: $150.50")
	require.Nil(t, toBen[0].LoanID)

	toAna := f.svc.ListFor(ctx, f.ana, 0, false)
	require.Len(t, toAna, 1)
	require.Equal(t, TypeSuccess, toAna[0].Type)
	require.Contains(t, toAna[0].Message, "Ben")

	loanID := testutil.SeedObjectLoan(t, f.conn, f.ana, f.ben, "Drill")
	object := LoanInfo{LoanID: loanID, LenderID: f.ana, BorrowerID: f.ben, LenderName: "Ana", BorrowerName: "Ben", ObjectName: "Drill"}
	require.NoError(t, f.svc.LoanOverdue(ctx, object))

	toBen = f.svc.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 2)
	require.Equal(t, TypeWarning, toBen[0].Type)
	require.Equal(t, "Loan overdue", toBen[0].Title)
	require.Contains(t, toBen[0].Message, "Object: Drill")
	require.NotNil(t, toBen[0].LoanID)
	require.Equal(t, loanID, *toBen[0].LoanID)

	// 返却通知は借り手へ
	require.NoError(t, f.svc.LoanReturned(ctx, object))
	toBen = f.svc.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 3)
	require.Equal(t, "Loan marked as returned", toBen[0].Title)
	require.Equal(t, TypeSuccess, toBen[0].Type)
	require.Equal(t, "Ana marked your loan as returned. Object: Drill", toBen[0].Message)
	require.Equal(t, loanID, *toBen[0].LoanID)
	require.Len(t, f.svc.ListFor(ctx, f.ana, 0, false), 1)
}

func TestLoanCreatedReportsPartialFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	loanID := testutil.SeedObjectLoan(t, f.conn, f.ana, f.ben, "Book")
	err := f.svc.LoanCreated(ctx, LoanInfo{LoanID: loanID, LenderID: 999, BorrowerID: f.ben, ObjectName: "Book"})
	require.Error(t, err)
	require.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	toBen := f.svc.ListFor(ctx, f.ben, 0, false)
	require.Len(t, toBen, 1)
	require.Equal(t, loanID, *toBen[0].LoanID)
}

func TestHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t, nil)
	r := gin.New()
	RegisterRoutes(r.Group("/", auth.Identity(auth.NewTokens("s", time.Hour), f.ana)), f.svc)

	do := func(method, target, body string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(auth.HeaderUserID, strconv.FormatInt(userID, 10))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/notifications/", `{"user_id":`+strconv.FormatInt(f.ana, 10)+`,"title":"Hi","message":"There"}`, f.ben)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		NotificationID int64 `json:"notification_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(http.MethodGet, "/notifications/unread-count", "", f.ana)
	require.JSONEq(t, `{"unread_count":1}`, w.Body.String())

	w = do(http.MethodPost, "/notifications/"+strconv.FormatInt(created.NotificationID, 10)+"/read", "", f.ben)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), string(apierr.CodeNotOwned))

	w = do(http.MethodPost, "/notifications/mark-all-read", "", f.ana)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"count":1`)

	w = do(http.MethodPost, "/notifications/", `{"user_id":999,"title":"Hi","message":"There"}`, f.ana)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(http.MethodGet, "/notifications/ws", "", f.ana)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHubPushesToConnectedRecipient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	f := newFixture(t, hub)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		_ = hub.Serve(w, r, id)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user_id=" + strconv.FormatInt(f.ben, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connected(f.ben) == 1 }, 2*time.Second, 10*time.Millisecond)

	f.create(t, f.ana, "not for ben")
	id := f.create(t, f.ben, "for ben")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Notification
	require.NoError(t, json.Unmarshal(msg, &got))
	require.Equal(t, id, got.ID)
	require.Equal(t, "for ben", got.Title)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connected(f.ben) == 0 }, 2*time.Second, 10*time.Millisecond)
}
