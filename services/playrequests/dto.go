package playrequests

import (
	"strings"
	"time"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"

	maxMessageLength = 500
)

type CreatePlayRequest struct {
	ReceiverID string      `json:"receiverId" binding:"required"`
	Sport      store.Sport `json:"sport" binding:"required,sport"`
	Message    string      `json:"message" binding:"max=500"`
}

type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// Contact is the counterpart's contact card, only present once shared.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// PlayRequestView is a play request as seen by one of its two parties.
type PlayRequestView struct {
	ID            string       `json:"id"`
	SenderID      string       `json:"senderId"`
	SenderName    string       `json:"senderName"`
	ReceiverID    string       `json:"receiverId"`
	ReceiverName  string       `json:"receiverName,omitempty"`
	Sport         store.Sport  `json:"sport"`
	Message       string       `json:"message"`
	Status        store.Status `json:"status"`
	ContactShared bool         `json:"contactShared"`
	Contact       *Contact     `json:"contact,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	RespondedAt   *time.Time   `json:"respondedAt,omitempty"`
}

func (r *CreatePlayRequest) validate(senderID string) error {
	fields := map[string]string{}
	r.ReceiverID = strings.TrimSpace(r.ReceiverID)
	r.Message = strings.TrimSpace(r.Message)
	switch r.ReceiverID {
	case "":
		fields["receiverId"] = "receiver is required"
	case senderID:
		fields["receiverId"] = "you cannot send a play request to yourself"
	}
	if !r.Sport.Valid() {
		fields["sport"] = "sport must be tennis or pickleball"
	}
	if len([]rune(r.Message)) > maxMessageLength {
		fields["message"] = "message must be 500 characters or fewer"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	if r.Message == "" {
		r.Message = "Would you like to play " + string(r.Sport) + "?"
	}
	return nil
}

// view redacts contact details unless the request was accepted with
// contacts shared. The contact shown is always the other party's.
func view(r *store.PlayRequest, viewerID string) PlayRequestView {
	v := PlayRequestView{
		ID:            r.ID,
		SenderID:      r.SenderID,
		SenderName:    r.SenderName,
		ReceiverID:    r.ReceiverID,
		ReceiverName:  r.ReceiverName,
		Sport:         r.Sport,
		Message:       r.Message,
		Status:        r.Status,
		ContactShared: r.ContactShared,
		CreatedAt:     r.CreatedAt,
		RespondedAt:   r.RespondedAt,
	}
	if r.Status != store.StatusAccepted || !r.ContactShared {
		return v
	}
	if viewerID == r.ReceiverID {
		v.Contact = &Contact{Name: r.SenderName, Email: r.SenderEmail, Phone: r.SenderPhone}
	} else {
		v.Contact = &Contact{Name: r.ReceiverName, Email: r.ReceiverEmail, Phone: r.ReceiverPhone}
	}
	return v
}

func views(requests []*store.PlayRequest, viewerID string) []PlayRequestView {
	out := make([]PlayRequestView, 0, len(requests))
	for _, r := range requests {
		out = append(out, view(r, viewerID))
	}
	return out
}
