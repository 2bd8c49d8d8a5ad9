package fsstore

import (
	"errors"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

type txn struct {
	s  *Store
	tx *firestore.Transaction
}

func txGet[T any](t *txn, collection, id, what string) (*T, error) {
	snap, err := t.tx.Get(t.s.doc(collection, id))
	if err != nil {
		return nil, translate(err, what)
	}
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, xerrors.Errorf("decode %s: %w", what, err)
	}
	return &v, nil
}

func (t *txn) set(collection, id string, data interface{}) error {
	if err := t.tx.Set(t.s.doc(collection, id), data); err != nil {
		return xerrors.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (t *txn) Profile(uid string) (*store.Profile, error) {
	return txGet[store.Profile](t, store.ProfilesCollection, uid, "profile "+uid)
}

func (t *txn) Group(id string) (*store.Group, error) {
	g, err := txGet[store.Group](t, store.GroupsCollection, id, "group "+id)
	if err != nil {
		return nil, err
	}
	g.SyncMemberCount()
	return g, nil
}

func (t *txn) GroupRequest(id string) (*store.GroupRequest, error) {
	return txGet[store.GroupRequest](t, store.GroupRequestsCollection, id, "group request "+id)
}

func (t *txn) PlayRequest(id string) (*store.PlayRequest, error) {
	return txGet[store.PlayRequest](t, store.PlayRequestsCollection, id, "play request "+id)
}

func (t *txn) Notification(id string) (*store.Notification, error) {
	return txGet[store.Notification](t, store.NotificationsCollection, id, "notification "+id)
}

func (t *txn) PendingRequest(key string) (string, error) {
	slot, err := txGet[pendingSlot](t, store.PendingRequestsCollection, key, "pending slot "+key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return slot.RequestID, nil
}

func (t *txn) SetProfile(p *store.Profile) error {
	return t.set(store.ProfilesCollection, p.ID, p)
}

func (t *txn) SetGroup(g *store.Group) error {
	g.SyncMemberCount()
	return t.set(store.GroupsCollection, g.ID, g)
}

func (t *txn) SetGroupRequest(r *store.GroupRequest) error {
	return t.set(store.GroupRequestsCollection, r.ID, r)
}

func (t *txn) SetPlayRequest(r *store.PlayRequest) error {
	return t.set(store.PlayRequestsCollection, r.ID, r)
}

func (t *txn) SetNotification(n *store.Notification) error {
	return t.set(store.NotificationsCollection, n.ID, n)
}

func (t *txn) SetPendingRequest(key, requestID string) error {
	return t.set(store.PendingRequestsCollection, key, pendingSlot{RequestID: requestID})
}

func (t *txn) DeletePendingRequest(key string) error {
	if err := t.tx.Delete(t.s.doc(store.PendingRequestsCollection, key)); err != nil {
		return xerrors.Errorf("delete pending slot %s: %w", key, err)
	}
	return nil
}
