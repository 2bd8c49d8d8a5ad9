// Package expo sends push notifications to Expo push tokens.
package expo

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"
)

// Push is one notification for a single device token.
type Push struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type publisher interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

type Service struct {
	client publisher
}

func NewService() *Service {
	return &Service{client: expo.NewPushClient(nil)}
}

// ValidToken reports whether token looks like an Expo push token.
func ValidToken(token string) bool {
	_, err := expo.NewExponentPushToken(token)
	return err == nil
}

func (s *Service) Send(_ context.Context, push Push) error {
	token, err := expo.NewExponentPushToken(push.Token)
	if err != nil {
		return fmt.Errorf("invalid expo token: %w", err)
	}

	pushMessage := &expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Body:     push.Body,
		Sound:    "default",
		Title:    push.Title,
		Data:     push.Data,
		Priority: expo.DefaultPriority,
	}

	response, err := s.client.Publish(pushMessage)
	if err != nil {
		return fmt.Errorf("publish push: %w", err)
	}
	if err := response.ValidateResponse(); err != nil {
		log.WithError(err).WithField("to", response.PushMessage.To).Error("push failed")
		return fmt.Errorf("push rejected: %w", err)
	}
	return nil
}
