package playrequests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/api/pkg/apperrors"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/store"
	"github.com/playmatch/api/repos/store/memory"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*store.Notification
}

func (r *recordingNotifier) Deliver(_ context.Context, n *store.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func newTestService(t *testing.T) (*Service, *memory.Store, *recordingNotifier) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.RunTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for _, p := range []*store.Profile{
			{ID: "ann", DisplayName: "Ann", Email: "ann@example.com", PhoneNumber: "555-0001", OnboardingCompleted: true},
			{ID: "bob", DisplayName: "Bob", Email: "bob@example.com", PhoneNumber: "555-0002", OnboardingCompleted: true},
			{ID: "cat", DisplayName: "Cat", Email: "cat@example.com", OnboardingCompleted: true},
		} {
			if err := tx.SetProfile(p); err != nil {
				return err
			}
		}
		return nil
	}))
	n := &recordingNotifier{}
	s := NewService(st, n)
	s.now = timehelper.Fixed(now)
	return s, st, n
}

func tennis(receiver string) CreatePlayRequest {
	return CreatePlayRequest{ReceiverID: receiver, Sport: store.Tennis}
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		request CreatePlayRequest
		field   string
	}{
		{"self", tennis("ann"), "receiverId"},
		{"no receiver", CreatePlayRequest{Sport: store.Tennis}, "receiverId"},
		{"bad sport", CreatePlayRequest{ReceiverID: "bob", Sport: "squash"}, "sport"},
		{"long message", CreatePlayRequest{ReceiverID: "bob", Sport: store.Tennis, Message: strings.Repeat("x", 501)}, "message"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, "ann", tc.request)
			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestCreateDefaultsMessageAndSnapshotsSender(t *testing.T) {
	s, st, _ := newTestService(t)

	created, err := s.Create(context.Background(), "ann", tennis("bob"))
	require.NoError(t, err)
	assert.Equal(t, "Would you like to play tennis?", created.Message)
	assert.Equal(t, store.StatusPending, created.Status)
	assert.False(t, created.ContactShared)
	assert.Nil(t, created.Contact)

	stored, err := st.ListPlayRequests(context.Background(), store.PlayRequestFilter{SenderID: "ann"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "ann@example.com", stored[0].SenderEmail)
	assert.Equal(t, "555-0001", stored[0].SenderPhone)
	assert.Equal(t, now, stored[0].CreatedAt)
}

func TestCreateRequiresProfiles(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Create(context.Background(), "ann", tennis("ghost"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.Create(context.Background(), "ghost", tennis("ann"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOnlyOnePendingRequestPerPair(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "ann", tennis("bob"))
	require.NoError(t, err)

	_, err = s.Create(ctx, "ann", CreatePlayRequest{ReceiverID: "bob", Sport: store.Pickleball})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	// The reverse direction is a different pair.
	_, err = s.Create(ctx, "bob", tennis("ann"))
	assert.NoError(t, err)

	_, err = s.Respond(ctx, "bob", first.ID, ActionDecline)
	require.NoError(t, err)

	second, err := s.Create(ctx, "ann", tennis("bob"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	sent, err := s.ListSent(ctx, "ann", "")
	require.NoError(t, err)
	assert.Len(t, sent, 2)
}

func TestConcurrentCreatesYieldOnePending(t *testing.T) {
	s, st, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, "ann", tennis("bob"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	pending, err := st.ListPlayRequests(ctx, store.PlayRequestFilter{SenderID: "ann", ReceiverID: "bob", Status: store.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAcceptSharesContactsAndNotifies(t *testing.T) {
	s, st, notifier := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "ann", tennis("bob"))
	require.NoError(t, err)

	received, err := s.ListReceived(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Nil(t, received[0].Contact)

	answered, err := s.Respond(ctx, "bob", created.ID, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, store.StatusAccepted, answered.Status)
	assert.True(t, answered.ContactShared)
	require.NotNil(t, answered.RespondedAt)
	assert.Equal(t, now, *answered.RespondedAt)
	require.NotNil(t, answered.Contact)
	assert.Equal(t, Contact{Name: "Ann", Email: "ann@example.com", Phone: "555-0001"}, *answered.Contact)

	sent, err := s.ListSent(ctx, "ann", store.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Contact)
	assert.Equal(t, Contact{Name: "Bob", Email: "bob@example.com", Phone: "555-0002"}, *sent[0].Contact)

	received, err = s.ListReceived(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	notes, err := st.ListNotifications(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, store.NotificationRequestAccepted, notes[0].Type)
	assert.Equal(t, "Play Request Accepted!", notes[0].Title)
	assert.Equal(t, "Bob accepted your request to play tennis", notes[0].Message)
	assert.Equal(t, created.ID, notes[0].RequestID)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notes[0].ID, notifier.sent[0].ID)
}

func TestDeclineKeepsContactsPrivate(t *testing.T) {
	s, st, notifier := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "ann", tennis("bob"))
	require.NoError(t, err)

	answered, err := s.Respond(ctx, "bob", created.ID, ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDeclined, answered.Status)
	assert.False(t, answered.ContactShared)
	assert.Nil(t, answered.Contact)

	notes, err := st.ListNotifications(ctx, "ann")
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, notifier.sent)
}

func TestRespondRules(t *testing.T) {
	s, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "ann", tennis("bob"))
	require.NoError(t, err)

	_, err = s.Respond(ctx, "cat", created.ID, ActionAccept)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = s.Respond(ctx, "ann", created.ID, ActionAccept)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = s.Respond(ctx, "bob", created.ID, "maybe")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.Respond(ctx, "bob", "missing", ActionAccept)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.Respond(ctx, "bob", created.ID, ActionDecline)
	require.NoError(t, err)

	_, err = s.Respond(ctx, "bob", created.ID, ActionAccept)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := st.ListPlayRequests(ctx, store.PlayRequestFilter{SenderID: "ann"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, store.StatusDeclined, stored[0].Status)
	assert.False(t, stored[0].ContactShared)
}

func TestListSentRejectsUnknownStatus(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.ListSent(context.Background(), "ann", "accept")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
