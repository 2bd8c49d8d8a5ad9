package memory

import (
	"errors"

	"github.com/playmatch/api/repos/store"
)

var errReadAfterWrite = errors.New("memory: transaction reads must happen before writes")

// txn runs under the store's write lock. Writes are staged and only applied
// when the transaction function returns nil.
type txn struct {
	s       *Store
	ops     []func()
	touched map[string]bool
}

func (t *txn) read() error {
	if len(t.ops) > 0 {
		return errReadAfterWrite
	}
	return nil
}

func (t *txn) stage(collection string, op func()) error {
	t.ops = append(t.ops, op)
	t.touched[collection] = true
	return nil
}

func (t *txn) Profile(uid string) (*store.Profile, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	p, ok := t.s.profiles[uid]
	if !ok {
		return nil, notFound("profile", uid)
	}
	return cloneProfile(p), nil
}

func (t *txn) Group(id string) (*store.Group, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	g, ok := t.s.groups[id]
	if !ok {
		return nil, notFound("group", id)
	}
	return cloneGroup(g), nil
}

func (t *txn) GroupRequest(id string) (*store.GroupRequest, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	r, ok := t.s.groupRequests[id]
	if !ok {
		return nil, notFound("group request", id)
	}
	c := *r
	return &c, nil
}

func (t *txn) PlayRequest(id string) (*store.PlayRequest, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	r, ok := t.s.playRequests[id]
	if !ok {
		return nil, notFound("play request", id)
	}
	c := *r
	return &c, nil
}

func (t *txn) Notification(id string) (*store.Notification, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	n, ok := t.s.notifications[id]
	if !ok {
		return nil, notFound("notification", id)
	}
	c := *n
	return &c, nil
}

func (t *txn) PendingRequest(key string) (string, error) {
	if err := t.read(); err != nil {
		return "", err
	}
	return t.s.pending[key], nil
}

func (t *txn) SetProfile(p *store.Profile) error {
	c := cloneProfile(p)
	return t.stage(store.ProfilesCollection, func() { t.s.profiles[c.ID] = c })
}

func (t *txn) SetGroup(g *store.Group) error {
	c := cloneGroup(g)
	c.SyncMemberCount()
	return t.stage(store.GroupsCollection, func() { t.s.groups[c.ID] = c })
}

func (t *txn) SetGroupRequest(r *store.GroupRequest) error {
	c := *r
	return t.stage(store.GroupRequestsCollection, func() { t.s.groupRequests[c.ID] = &c })
}

func (t *txn) SetPlayRequest(r *store.PlayRequest) error {
	c := *r
	return t.stage(store.PlayRequestsCollection, func() { t.s.playRequests[c.ID] = &c })
}

func (t *txn) SetNotification(n *store.Notification) error {
	c := *n
	return t.stage(store.NotificationsCollection, func() { t.s.notifications[c.ID] = &c })
}

func (t *txn) SetPendingRequest(key, requestID string) error {
	return t.stage(store.PendingRequestsCollection, func() { t.s.pending[key] = requestID })
}

func (t *txn) DeletePendingRequest(key string) error {
	return t.stage(store.PendingRequestsCollection, func() { delete(t.s.pending, key) })
}
