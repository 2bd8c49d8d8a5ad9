package notifications

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/playmatch/api/repos/expo"
	"github.com/playmatch/api/repos/resend"
	"github.com/playmatch/api/repos/store"
)

type Mailer interface {
	Configured() bool
	SendMail(ctx context.Context, mail resend.Mail) error
}

type Pusher interface {
	Send(ctx context.Context, push expo.Push) error
}

// Dispatcher delivers stored notifications outside the app by e-mail and
// push. Delivery is best effort: failures are logged and dropped.
type Dispatcher struct {
	store  store.Store
	mailer Mailer
	pusher Pusher
}

func NewDispatcher(st store.Store, mailer Mailer, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: st, mailer: mailer, pusher: pusher}
}

var appPaths = map[string]string{
	store.NotificationRequestAccepted:      "/requests",
	store.NotificationGroupRequestAccepted: "/groups",
}

func (d *Dispatcher) Deliver(ctx context.Context, n *store.Notification) {
	logger := log.WithFields(log.Fields{
		"notification": n.ID,
		"type":         n.Type,
		"uid":          n.UserID,
	})

	recipient, err := d.store.GetProfile(ctx, n.UserID)
	if err != nil {
		logger.WithError(err).Warn("notification recipient not found")
		return
	}

	if recipient.Email != "" && d.mailer != nil && d.mailer.Configured() {
		err := d.mailer.SendMail(ctx, resend.Mail{
			To:      recipient.Email,
			Subject: n.Title,
			Title:   n.Title,
			Message: n.Message,
			Path:    appPaths[n.Type],
		})
		if err != nil {
			logger.WithError(err).Error("notification e-mail failed")
		}
	}

	if d.pusher != nil && expo.ValidToken(recipient.ExpoPushToken) {
		err := d.pusher.Send(ctx, expo.Push{
			Token: recipient.ExpoPushToken,
			Title: n.Title,
			Body:  n.Message,
			Data:  map[string]string{"type": n.Type, "requestId": n.RequestID},
		})
		if err != nil {
			logger.WithError(err).Error("notification push failed")
		}
	}
}
