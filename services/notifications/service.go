// Package notifications serves the in-app notification list, the pending
// request badge and out-of-app delivery.
package notifications

import (
	"context"
	"fmt"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) List(ctx context.Context, uid string) ([]*store.Notification, error) {
	return s.store.ListNotifications(ctx, uid)
}

// MarkRead flags one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, uid, id string) (*store.Notification, error) {
	var marked *store.Notification
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		n, err := tx.Notification(id)
		if err != nil {
			return err
		}
		if n.UserID != uid {
			return fmt.Errorf("notification %s belongs to another user: %w", id, apperrors.ErrForbidden)
		}
		marked = n
		if n.Read {
			return nil
		}
		n.Read = true
		return tx.SetNotification(n)
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

func pendingFilter(uid string) store.PlayRequestFilter {
	return store.PlayRequestFilter{ReceiverID: uid, Status: store.StatusPending}
}

// PendingCount is the number of play requests waiting for uid's answer.
func (s *Service) PendingCount(ctx context.Context, uid string) (int, error) {
	pending, err := s.store.ListPlayRequests(ctx, pendingFilter(uid))
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// SubscribePendingCount emits the pending count whenever it changes. The
// caller must Close the subscription.
func (s *Service) SubscribePendingCount(ctx context.Context, uid string) *store.Subscription[int] {
	return store.NewSubscription(ctx, func(ctx context.Context, emit store.Emit[int]) error {
		requests := s.store.SubscribePlayRequests(ctx, pendingFilter(uid))
		defer requests.Close()

		last := -1
		for snapshot := range requests.Updates() {
			if len(snapshot) == last {
				continue
			}
			last = len(snapshot)
			if !emit(last) {
				return nil
			}
		}
		return requests.Err()
	})
}
