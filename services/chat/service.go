// Package chat implements the group message board and its live stream.
package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/ids"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/store"
)

const maxContentLength = 2000

type Service struct {
	store store.Store
	now   timehelper.Clock
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: timehelper.Now}
}

// member loads the group and fails unless uid may read and write its chat.
func (s *Service) member(ctx context.Context, uid, groupID string) (*store.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.CanAccess(uid) {
		return nil, fmt.Errorf("only members can use the group chat: %w", apperrors.ErrForbidden)
	}
	return group, nil
}

// Send appends a message to the group chat. The sender's name and photo are
// copied into the message as they are now.
func (s *Service) Send(ctx context.Context, uid, groupID, content string) (*store.Message, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return nil, apperrors.Invalid("content", "message cannot be empty")
	case utf8.RuneCountInString(content) > maxContentLength:
		return nil, apperrors.Invalid("content", fmt.Sprintf("message must be at most %d characters", maxContentLength))
	}

	if _, err := s.member(ctx, uid, groupID); err != nil {
		return nil, err
	}
	sender, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	m := &store.Message{
		ID:             ids.New(),
		GroupID:        groupID,
		SenderID:       uid,
		SenderName:     sender.DisplayName,
		SenderPhotoURL: sender.PhotoURL,
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.store.AddMessage(ctx, m); err != nil {
		log.WithError(err).WithField("group", groupID).Error("could not store chat message")
		return nil, err
	}
	return m, nil
}

// List returns every message of the group, newest first.
func (s *Service) List(ctx context.Context, uid, groupID string) ([]*store.Message, error) {
	if _, err := s.member(ctx, uid, groupID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	return messages, nil
}

// Subscribe streams the full message list of the group on every change. The
// caller must Close the returned subscription.
func (s *Service) Subscribe(ctx context.Context, uid, groupID string) (*store.Subscription[[]*store.Message], error) {
	if _, err := s.member(ctx, uid, groupID); err != nil {
		return nil, err
	}
	return s.store.SubscribeMessages(ctx, groupID), nil
}
