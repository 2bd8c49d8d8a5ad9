// Package playrequests implements the one-to-one play request workflow.
package playrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xorcare/pointer"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/ids"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/store"
)

// Notifier delivers a committed notification outside the app.
type Notifier interface {
	Deliver(ctx context.Context, n *store.Notification)
}

type Service struct {
	store    store.Store
	notifier Notifier
	now      timehelper.Clock
}

func NewService(st store.Store, notifier Notifier) *Service {
	return &Service{store: st, notifier: notifier, now: timehelper.Now}
}

// Create sends a play request. Only one request between the same sender and
// receiver can be pending at a time.
func (s *Service) Create(ctx context.Context, senderID string, request CreatePlayRequest) (*PlayRequestView, error) {
	if err := request.validate(senderID); err != nil {
		return nil, err
	}

	slot := store.PlaySlotKey(senderID, request.ReceiverID)
	var created *store.PlayRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		sender, err := tx.Profile(senderID)
		if err != nil {
			return err
		}
		receiver, err := tx.Profile(request.ReceiverID)
		if err != nil {
			return err
		}
		if err := checkSlot(tx, slot); err != nil {
			return err
		}

		created = &store.PlayRequest{
			ID:           ids.New(),
			SenderID:     senderID,
			SenderName:   sender.DisplayName,
			SenderEmail:  sender.Email,
			SenderPhone:  sender.PhoneNumber,
			ReceiverID:   receiver.ID,
			ReceiverName: receiver.DisplayName,
			Sport:        request.Sport,
			Message:      request.Message,
			Status:       store.StatusPending,
			CreatedAt:    s.now(),
		}
		if err := tx.SetPlayRequest(created); err != nil {
			return err
		}
		return tx.SetPendingRequest(slot, created.ID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request": created.ID, "sender": senderID, "receiver": request.ReceiverID}).Info("play request sent")
	v := view(created, senderID)
	return &v, nil
}

// checkSlot fails when the slot holds a request that is still pending. A slot
// left behind by an answered or deleted request is free.
func checkSlot(tx store.Tx, slot string) error {
	holder, err := tx.PendingRequest(slot)
	if err != nil || holder == "" {
		return err
	}
	existing, err := tx.PlayRequest(holder)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Status == store.StatusPending {
		return fmt.Errorf("a play request to this player is already pending: %w", apperrors.ErrAlreadyExists)
	}
	return nil
}

// ListReceived returns the requests waiting for uid's answer, newest first.
func (s *Service) ListReceived(ctx context.Context, uid string) ([]PlayRequestView, error) {
	requests, err := s.store.ListPlayRequests(ctx, store.PlayRequestFilter{ReceiverID: uid, Status: store.StatusPending})
	if err != nil {
		return nil, err
	}
	return views(requests, uid), nil
}

// ListSent returns the requests uid sent, optionally filtered by status.
func (s *Service) ListSent(ctx context.Context, uid string, status store.Status) ([]PlayRequestView, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Invalid("status", "status must be pending, accepted or declined")
	}
	requests, err := s.store.ListPlayRequests(ctx, store.PlayRequestFilter{SenderID: uid, Status: status})
	if err != nil {
		return nil, err
	}
	return views(requests, uid), nil
}

// Respond accepts or declines a pending request addressed to uid.
func (s *Service) Respond(ctx context.Context, uid, requestID, action string) (*PlayRequestView, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, apperrors.Invalid("action", "action must be accept or decline")
	}

	var (
		answered     *store.PlayRequest
		notification *store.Notification
	)
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		notification = nil
		request, err := tx.PlayRequest(requestID)
		if err != nil {
			return err
		}
		if request.ReceiverID != uid {
			return fmt.Errorf("only the receiver can answer a play request: %w", apperrors.ErrForbidden)
		}
		if request.Status != store.StatusPending {
			return fmt.Errorf("play request already %s: %w", request.Status, apperrors.ErrConflict)
		}
		responder, err := tx.Profile(uid)
		if err != nil {
			return err
		}

		now := s.now()
		request.RespondedAt = pointer.Time(now)
		if action == ActionAccept {
			request.Status = store.StatusAccepted
			request.ContactShared = true
			request.ReceiverName = responder.DisplayName
			request.ReceiverEmail = responder.Email
			request.ReceiverPhone = responder.PhoneNumber
			notification = acceptedNotification(request, responder, now)
		} else {
			request.Status = store.StatusDeclined
			request.ContactShared = false
		}

		if err := tx.SetPlayRequest(request); err != nil {
			return err
		}
		if notification != nil {
			if err := tx.SetNotification(notification); err != nil {
				return err
			}
		}
		answered = request
		return tx.DeletePendingRequest(store.PlaySlotKey(request.SenderID, request.ReceiverID))
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request": requestID, "status": answered.Status}).Info("play request answered")
	if notification != nil && s.notifier != nil {
		s.notifier.Deliver(ctx, notification)
	}

	v := view(answered, uid)
	return &v, nil
}

func acceptedNotification(r *store.PlayRequest, responder *store.Profile, now time.Time) *store.Notification {
	name := responder.DisplayName
	if name == "" {
		name = "Someone"
	}
	return &store.Notification{
		ID:        ids.New(),
		UserID:    r.SenderID,
		Type:      store.NotificationRequestAccepted,
		Title:     "Play Request Accepted!",
		Message:   fmt.Sprintf("%s accepted your request to play %s", name, r.Sport),
		CreatedAt: now,
		RequestID: r.ID,
	}
}
