// Package store defines the documents of the app and the contract both
// document store backends (Firestore and in-memory) implement.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/playmatch/api/pkg/cursor"
)

const (
	ProfilesCollection        = "users"
	GroupsCollection          = "groups"
	GroupRequestsCollection   = "groupRequests"
	PlayRequestsCollection    = "playRequests"
	ConnectionsCollection     = "connections"
	MessagesCollection        = "messages"
	NotificationsCollection   = "notifications"
	PreferencesCollection     = "preferences"
	PendingRequestsCollection = "pendingRequests"
)

// PageQuery selects one page of a name-ordered listing.
type PageQuery struct {
	// Sport filters by sport; empty means all sports.
	Sport Sport
	Limit int
	// After is the last document of the previous page, nil for page 1.
	After *cursor.Position
}

type PlayRequestFilter struct {
	SenderID   string
	ReceiverID string
	// Status filters by status; empty means any.
	Status Status
}

type GroupRequestFilter struct {
	GroupID string
	UserID  string
	Status  Status
}

// Tx is a read-modify-write unit of work. All reads must happen before the
// first write; Firestore rejects reads after writes inside a transaction.
// Getters return apperrors.ErrNotFound for missing documents.
type Tx interface {
	Profile(uid string) (*Profile, error)
	Group(id string) (*Group, error)
	GroupRequest(id string) (*GroupRequest, error)
	PlayRequest(id string) (*PlayRequest, error)
	Notification(id string) (*Notification, error)
	// PendingRequest returns the request id held in the pending slot key,
	// or "" when the slot is free.
	PendingRequest(key string) (string, error)

	SetProfile(p *Profile) error
	SetGroup(g *Group) error
	SetGroupRequest(r *GroupRequest) error
	SetPlayRequest(r *PlayRequest) error
	SetNotification(n *Notification) error
	SetPendingRequest(key, requestID string) error
	DeletePendingRequest(key string) error
}

// TxFunc is the body of a transaction. It may be re-run on contention.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is everything the services need from the document database.
type Store interface {
	RunTransaction(ctx context.Context, fn TxFunc) error

	GetProfile(ctx context.Context, uid string) (*Profile, error)
	ListProfiles(ctx context.Context, q PageQuery) ([]*Profile, error)

	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context, q PageQuery) ([]*Group, error)
	ListGroupsByMember(ctx context.Context, uid string) ([]*Group, error)

	ListGroupRequests(ctx context.Context, f GroupRequestFilter) ([]*GroupRequest, error)

	ListPlayRequests(ctx context.Context, f PlayRequestFilter) ([]*PlayRequest, error)
	SubscribePlayRequests(ctx context.Context, f PlayRequestFilter) *Subscription[[]*PlayRequest]

	ListConnections(ctx context.Context, uid string) ([]*Connection, error)

	AddMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, groupID string) ([]*Message, error)
	SubscribeMessages(ctx context.Context, groupID string) *Subscription[[]*Message]

	ListNotifications(ctx context.Context, uid string) ([]*Notification, error)

	GetPreferences(ctx context.Context, uid string) (*Preferences, error)
	SetPreferences(ctx context.Context, p *Preferences) error
}

// PlaySlotKey is the uniqueness key of a pending play request between two users.
func PlaySlotKey(senderID, receiverID string) string {
	return fmt.Sprintf("play:%s:%s", senderID, receiverID)
}

// GroupSlotKey is the uniqueness key of a pending join request.
func GroupSlotKey(groupID, userID string) string {
	return fmt.Sprintf("group:%s:%s", groupID, userID)
}

// NewerFirst orders documents by time, newest first, then by id descending
// so equal timestamps list the same way on every backend.
func NewerFirst(a time.Time, idA string, b time.Time, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA > idB
}
