package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/repos/expo"
	"github.com/playmatch/api/repos/resend"
	"github.com/playmatch/api/repos/store"
	"github.com/playmatch/api/repos/store/memory"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeMailer struct {
	configured bool
	sent       []resend.Mail
	err        error
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) SendMail(_ context.Context, mail resend.Mail) error {
	f.sent = append(f.sent, mail)
	return f.err
}

type fakePusher struct {
	sent []expo.Push
}

func (f *fakePusher) Send(_ context.Context, push expo.Push) error {
	f.sent = append(f.sent, push)
	return nil
}

func seed(t *testing.T, st *memory.Store, fn func(tx store.Tx) error) {
	t.Helper()
	require.NoError(t, st.RunTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return fn(tx)
	}))
}

func accepted(id, uid string) *store.Notification {
	return &store.Notification{
		ID:        id,
		UserID:    uid,
		Type:      store.NotificationRequestAccepted,
		Title:     "Play Request Accepted!",
		Message:   "Bob accepted your request to play tennis",
		CreatedAt: now,
		RequestID: "r1",
	}
}

func TestDeliverSendsMailAndPush(t *testing.T) {
	st := memory.New()
	seed(t, st, func(tx store.Tx) error {
		return tx.SetProfile(&store.Profile{ID: "u1", Email: "ann@example.com", ExpoPushToken: "ExponentPushToken[x]"})
	})
	mailer := &fakeMailer{configured: true}
	pusher := &fakePusher{}

	NewDispatcher(st, mailer, pusher).Deliver(context.Background(), accepted("n1", "u1"))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ann@example.com", mailer.sent[0].To)
	assert.Equal(t, "/requests", mailer.sent[0].Path)
	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "r1", pusher.sent[0].Data["requestId"])
}

func TestDeliverSkipsUnavailableChannels(t *testing.T) {
	st := memory.New()
	seed(t, st, func(tx store.Tx) error {
		return tx.SetProfile(&store.Profile{ID: "u1", Email: "ann@example.com"})
	})
	mailer := &fakeMailer{configured: false}
	pusher := &fakePusher{}

	d := NewDispatcher(st, mailer, pusher)
	d.Deliver(context.Background(), accepted("n1", "u1"))
	d.Deliver(context.Background(), accepted("n2", "ghost"))

	assert.Empty(t, mailer.sent)
	assert.Empty(t, pusher.sent)
}

func TestDeliverSwallowsFailures(t *testing.T) {
	st := memory.New()
	seed(t, st, func(tx store.Tx) error {
		return tx.SetProfile(&store.Profile{ID: "u1", Email: "ann@example.com"})
	})
	mailer := &fakeMailer{configured: true, err: errors.New("resend down")}

	assert.NotPanics(t, func() {
		NewDispatcher(st, mailer, nil).Deliver(context.Background(), accepted("n1", "u1"))
	})
	assert.Len(t, mailer.sent, 1)
}

func TestMarkRead(t *testing.T) {
	st := memory.New()
	seed(t, st, func(tx store.Tx) error { return tx.SetNotification(accepted("n1", "u1")) })
	s := NewService(st)

	_, err := s.MarkRead(context.Background(), "u2", "n1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = s.MarkRead(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err := s.MarkRead(context.Background(), "u1", "n1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	list, err := s.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

func pending(id, sender, receiver string) *store.PlayRequest {
	return &store.PlayRequest{ID: id, SenderID: sender, ReceiverID: receiver, Status: store.StatusPending, CreatedAt: now}
}

func TestPendingCountFollowsRequests(t *testing.T) {
	st := memory.New()
	s := NewService(st)
	seed(t, st, func(tx store.Tx) error { return tx.SetPlayRequest(pending("r1", "a", "u1")) })

	count, err := s.PendingCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	sub := s.SubscribePendingCount(context.Background(), "u1")
	defer sub.Close()
	assert.Equal(t, 1, <-sub.Updates())

	seed(t, st, func(tx store.Tx) error { return tx.SetPlayRequest(pending("r2", "b", "u1")) })
	assert.Equal(t, 2, next(t, sub))

	seed(t, st, func(tx store.Tx) error {
		r := pending("r1", "a", "u1")
		r.Status = store.StatusDeclined
		return tx.SetPlayRequest(r)
	})
	assert.Equal(t, 1, next(t, sub))
}

func next(t *testing.T, sub *store.Subscription[int]) int {
	t.Helper()
	select {
	case n := <-sub.Updates():
		return n
	case <-time.After(time.Second):
		t.Fatal("no update")
		return -1
	}
}

type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return r.closed
}

type staticVerifier struct{}

func (staticVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	return &firebaseauth.Token{UID: idToken}, nil
}

func TestPendingStreamWritesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memory.New()
	seed(t, st, func(tx store.Tx) error { return tx.SetPlayRequest(pending("r1", "a", "u1")) })

	router := gin.New()
	group := router.Group("/notifications/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: NewService(st), Router: group})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/notifications/v1/pending/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer u1")
	w := &closeNotifyingRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "event:pending")
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestPendingEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memory.New()
	seed(t, st, func(tx store.Tx) error { return tx.SetPlayRequest(pending("r1", "a", "u1")) })

	router := gin.New()
	group := router.Group("/notifications/v1")
	group.Use(auth.AuthMiddleware(staticVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: NewService(st), Router: group})

	req := httptest.NewRequest(http.MethodGet, "/notifications/v1/pending", nil)
	req.Header.Set("Authorization", "Bearer u1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}
