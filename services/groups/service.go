// Package groups implements groups and the join request workflow.
package groups

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xorcare/pointer"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/ids"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/photos"
	"github.com/playmatch/api/repos/store"
)

type Notifier interface {
	Deliver(ctx context.Context, n *store.Notification)
}

type Service struct {
	store    store.Store
	notifier Notifier
	uploader photos.Uploader
	now      timehelper.Clock
}

func NewService(st store.Store, notifier Notifier, uploader photos.Uploader) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		uploader: uploader,
		now:      timehelper.Now,
	}
}

// Create stores a new group with the creator as its only member.
func (s *Service) Create(ctx context.Context, uid string, request CreateGroupRequest) (*store.Group, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	group := &store.Group{
		ID:          ids.New(),
		Name:        request.Name,
		Sport:       request.Sport,
		Location:    request.Location,
		Description: request.Description,
		SkillLevel:  request.SkillLevel,
		Tags:        request.Tags,
		Schedule:    request.Schedule,
		MaxMembers:  request.MaxMembers,
		CreatedBy:   uid,
		CreatedAt:   s.now(),
	}
	if group.Schedule == nil {
		group.Schedule = []store.ScheduleSlot{}
	}
	group.AddMember(uid)

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Profile(uid); err != nil {
			return err
		}
		return tx.SetGroup(group)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"group": group.ID, "uid": uid}).Info("group created")
	return group, nil
}

// Mine lists the groups uid belongs to, ordered by name.
func (s *Service) Mine(ctx context.Context, uid string) ([]*store.Group, error) {
	return s.store.ListGroupsByMember(ctx, uid)
}

func (s *Service) Detail(ctx context.Context, uid, groupID string) (*GroupDetail, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.ListGroupRequests(ctx, store.GroupRequestFilter{
		GroupID: groupID,
		UserID:  uid,
		Status:  store.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	var pendingID string
	if len(pending) > 0 {
		pendingID = pending[0].ID
	}
	return &GroupDetail{Group: group, Viewer: viewerState(group, uid, pendingID)}, nil
}

// RequestJoin files a join request. Only one request per user and group can
// be pending at a time.
func (s *Service) RequestJoin(ctx context.Context, uid, groupID string) (*store.GroupRequest, error) {
	slot := store.GroupSlotKey(groupID, uid)

	var created *store.GroupRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		group, err := tx.Group(groupID)
		if err != nil {
			return err
		}
		if group.CanAccess(uid) {
			return fmt.Errorf("already a member of %s: %w", group.Name, apperrors.ErrConflict)
		}
		requester, err := tx.Profile(uid)
		if err != nil {
			return err
		}
		if err := checkSlot(tx, slot); err != nil {
			return err
		}

		created = &store.GroupRequest{
			ID:           ids.New(),
			GroupID:      group.ID,
			GroupName:    group.Name,
			UserID:       uid,
			UserName:     requester.DisplayName,
			UserPhotoURL: requester.PhotoURL,
			Status:       store.StatusPending,
			CreatedAt:    s.now(),
		}
		if err := tx.SetGroupRequest(created); err != nil {
			return err
		}
		return tx.SetPendingRequest(slot, created.ID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"group": groupID, "uid": uid, "request": created.ID}).Info("join request sent")
	return created, nil
}

func checkSlot(tx store.Tx, slot string) error {
	holder, err := tx.PendingRequest(slot)
	if err != nil || holder == "" {
		return err
	}
	existing, err := tx.GroupRequest(holder)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Status == store.StatusPending {
		return fmt.Errorf("a join request for this group is already pending: %w", apperrors.ErrAlreadyExists)
	}
	return nil
}

// ListPending returns the pending join requests of a group to its creator.
func (s *Service) ListPending(ctx context.Context, uid, groupID string) ([]*store.GroupRequest, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != uid {
		return nil, fmt.Errorf("only the group creator can see join requests: %w", apperrors.ErrForbidden)
	}
	return s.store.ListGroupRequests(ctx, store.GroupRequestFilter{GroupID: groupID, Status: store.StatusPending})
}

// MyRequests lists the caller's own join requests, newest first.
func (s *Service) MyRequests(ctx context.Context, uid string) ([]*store.GroupRequest, error) {
	return s.store.ListGroupRequests(ctx, store.GroupRequestFilter{UserID: uid})
}

// Respond lets the group creator accept or decline a pending join request.
// The request status, the member list and the notification change together.
func (s *Service) Respond(ctx context.Context, uid, requestID, action string) (*store.GroupRequest, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, apperrors.Invalid("action", "action must be accept or decline")
	}

	var (
		answered     *store.GroupRequest
		notification *store.Notification
	)
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		notification = nil
		request, err := tx.GroupRequest(requestID)
		if err != nil {
			return err
		}
		group, err := tx.Group(request.GroupID)
		if err != nil {
			return err
		}
		if group.CreatedBy != uid {
			return fmt.Errorf("only the group creator can answer join requests: %w", apperrors.ErrForbidden)
		}
		if request.Status != store.StatusPending {
			return fmt.Errorf("join request already %s: %w", request.Status, apperrors.ErrConflict)
		}

		now := s.now()
		request.RespondedAt = pointer.Time(now)
		if action == ActionAccept {
			if !group.HasMember(request.UserID) && group.Full() {
				return fmt.Errorf("group %s is full: %w", group.Name, apperrors.ErrConflict)
			}
			request.Status = store.StatusAccepted
			group.AddMember(request.UserID)
			if err := tx.SetGroup(group); err != nil {
				return err
			}
			notification = joinedNotification(request, now)
			if err := tx.SetNotification(notification); err != nil {
				return err
			}
		} else {
			request.Status = store.StatusDeclined
		}

		if err := tx.SetGroupRequest(request); err != nil {
			return err
		}
		answered = request
		return tx.DeletePendingRequest(store.GroupSlotKey(request.GroupID, request.UserID))
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request": requestID, "status": answered.Status}).Info("join request answered")
	if notification != nil && s.notifier != nil {
		s.notifier.Deliver(ctx, notification)
	}
	return answered, nil
}

func joinedNotification(r *store.GroupRequest, now time.Time) *store.Notification {
	return &store.Notification{
		ID:        ids.New(),
		UserID:    r.UserID,
		Type:      store.NotificationGroupRequestAccepted,
		Title:     "Group Request Accepted!",
		Message:   fmt.Sprintf("You are now a member of %s", r.GroupName),
		CreatedAt: now,
		RequestID: r.ID,
	}
}

// UploadImage replaces the group picture. Only the creator may do this.
func (s *Service) UploadImage(ctx context.Context, uid, groupID, filename, contentType string, r io.Reader) (string, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	if group.CreatedBy != uid {
		return "", fmt.Errorf("only the group creator can change the image: %w", apperrors.ErrForbidden)
	}

	objectPath := fmt.Sprintf("groups/%s/%s_%s", groupID, ids.New(), path.Base("/"+filename))
	imageURL, err := s.uploader.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		group, err := tx.Group(groupID)
		if err != nil {
			return err
		}
		group.ImageURL = imageURL
		return tx.SetGroup(group)
	})
	if err != nil {
		return "", err
	}
	return imageURL, nil
}
