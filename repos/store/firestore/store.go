// Package fsstore implements store.Store on Cloud Firestore.
package fsstore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

type pendingSlot struct {
	RequestID string `firestore:"requestId"`
}

// translate maps grpc status codes onto the app's error sentinels.
func translate(err error, what string) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return xerrors.Errorf("%s: %w", what, apperrors.ErrNotFound)
	case codes.AlreadyExists:
		return xerrors.Errorf("%s: %w", what, apperrors.ErrAlreadyExists)
	case codes.Unavailable, codes.DeadlineExceeded:
		return xerrors.Errorf("%s: %v: %w", what, err, apperrors.ErrUnavailable)
	default:
		return xerrors.Errorf("%s: %w", what, err)
	}
}

func (s *Store) doc(collection, id string) *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(id)
}

func (s *Store) RunTransaction(ctx context.Context, fn store.TxFunc) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &txn{s: s, tx: tx})
	})
}

func get[T any](ctx context.Context, ref *firestore.DocumentRef, what string) (*T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, translate(err, what)
	}
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, xerrors.Errorf("decode %s: %w", what, err)
	}
	return &v, nil
}

func all[T any](iter *firestore.DocumentIterator, what string) ([]*T, error) {
	defer iter.Stop()
	var out []*T
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translate(err, what)
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, xerrors.Errorf("decode %s %s: %w", what, snap.Ref.ID, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// page applies name ordering, the cursor and the limit to a listing query.
func page(q firestore.Query, field string, pq store.PageQuery) firestore.Query {
	q = q.OrderBy(field, firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)
	if pq.After != nil {
		q = q.StartAfter(pq.After.Key, pq.After.ID)
	}
	if pq.Limit > 0 {
		q = q.Limit(pq.Limit)
	}
	return q
}

func (s *Store) GetProfile(ctx context.Context, uid string) (*store.Profile, error) {
	return get[store.Profile](ctx, s.doc(store.ProfilesCollection, uid), "profile "+uid)
}

func (s *Store) ListProfiles(ctx context.Context, pq store.PageQuery) ([]*store.Profile, error) {
	q := s.client.Collection(store.ProfilesCollection).Where("onboardingCompleted", "==", true)
	if pq.Sport != "" {
		q = q.Where("sports", "array-contains", string(pq.Sport))
	}
	return all[store.Profile](page(q, "displayName", pq).Documents(ctx), "profiles")
}

func (s *Store) GetGroup(ctx context.Context, id string) (*store.Group, error) {
	g, err := get[store.Group](ctx, s.doc(store.GroupsCollection, id), "group "+id)
	if err != nil {
		return nil, err
	}
	g.SyncMemberCount()
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context, pq store.PageQuery) ([]*store.Group, error) {
	q := s.client.Collection(store.GroupsCollection).Query
	if pq.Sport != "" {
		q = q.Where("sport", "==", string(pq.Sport))
	}
	groups, err := all[store.Group](page(q, "name", pq).Documents(ctx), "groups")
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.SyncMemberCount()
	}
	return groups, nil
}

func (s *Store) ListGroupsByMember(ctx context.Context, uid string) ([]*store.Group, error) {
	q := s.client.Collection(store.GroupsCollection).Where("members", "array-contains", uid)
	groups, err := all[store.Group](q.Documents(ctx), "groups")
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.SyncMemberCount()
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (s *Store) ListGroupRequests(ctx context.Context, f store.GroupRequestFilter) ([]*store.GroupRequest, error) {
	q := s.client.Collection(store.GroupRequestsCollection).Query
	if f.GroupID != "" {
		q = q.Where("groupId", "==", f.GroupID)
	}
	if f.UserID != "" {
		q = q.Where("userId", "==", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	out, err := all[store.GroupRequest](q.Documents(ctx), "group requests")
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) playRequestQuery(f store.PlayRequestFilter) firestore.Query {
	q := s.client.Collection(store.PlayRequestsCollection).Query
	if f.SenderID != "" {
		q = q.Where("senderId", "==", f.SenderID)
	}
	if f.ReceiverID != "" {
		q = q.Where("receiverId", "==", f.ReceiverID)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	return q
}

func sortPlayRequests(out []*store.PlayRequest) {
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
}

func (s *Store) ListPlayRequests(ctx context.Context, f store.PlayRequestFilter) ([]*store.PlayRequest, error) {
	out, err := all[store.PlayRequest](s.playRequestQuery(f).Documents(ctx), "play requests")
	if err != nil {
		return nil, err
	}
	sortPlayRequests(out)
	return out, nil
}

func (s *Store) SubscribePlayRequests(ctx context.Context, f store.PlayRequestFilter) *store.Subscription[[]*store.PlayRequest] {
	q := s.playRequestQuery(f)
	return store.NewSubscription(ctx, func(ctx context.Context, emit store.Emit[[]*store.PlayRequest]) error {
		return listen(ctx, q, "play requests", sortPlayRequests, emit)
	})
}

func (s *Store) ListConnections(ctx context.Context, uid string) ([]*store.Connection, error) {
	q := s.client.Collection(store.ConnectionsCollection).Where("players", "array-contains", uid)
	out, err := all[store.Connection](q.Documents(ctx), "connections")
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].LastPlayedAt, out[i].ID, out[j].LastPlayedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) AddMessage(ctx context.Context, m *store.Message) error {
	_, err := s.doc(store.MessagesCollection, m.ID).Create(ctx, m)
	if err != nil {
		return translate(err, "message "+m.ID)
	}
	return nil
}

func (s *Store) messageQuery(groupID string) firestore.Query {
	return s.client.Collection(store.MessagesCollection).Where("groupId", "==", groupID)
}

func sortMessages(out []*store.Message) {
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
}

func (s *Store) ListMessages(ctx context.Context, groupID string) ([]*store.Message, error) {
	out, err := all[store.Message](s.messageQuery(groupID).Documents(ctx), "messages")
	if err != nil {
		return nil, err
	}
	sortMessages(out)
	return out, nil
}

func (s *Store) SubscribeMessages(ctx context.Context, groupID string) *store.Subscription[[]*store.Message] {
	q := s.messageQuery(groupID)
	return store.NewSubscription(ctx, func(ctx context.Context, emit store.Emit[[]*store.Message]) error {
		return listen(ctx, q, "messages", sortMessages, emit)
	})
}

func (s *Store) ListNotifications(ctx context.Context, uid string) ([]*store.Notification, error) {
	q := s.client.Collection(store.NotificationsCollection).Where("userId", "==", uid)
	out, err := all[store.Notification](q.Documents(ctx), "notifications")
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetPreferences(ctx context.Context, uid string) (*store.Preferences, error) {
	return get[store.Preferences](ctx, s.doc(store.PreferencesCollection, uid), "preferences "+uid)
}

func (s *Store) SetPreferences(ctx context.Context, p *store.Preferences) error {
	if _, err := s.doc(store.PreferencesCollection, p.UserID).Set(ctx, p); err != nil {
		return translate(err, "preferences "+p.UserID)
	}
	return nil
}

// listen runs a snapshot listener on q and emits the full, sorted result set
// for every snapshot until ctx ends.
func listen[T any](ctx context.Context, q firestore.Query, what string, order func([]*T), emit store.Emit[[]*T]) error {
	snaps := q.Snapshots(ctx)
	defer snaps.Stop()
	for {
		snap, err := snaps.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return translate(err, what)
		}
		out, err := all[T](snap.Documents, what)
		if err != nil {
			return err
		}
		order(out)
		if !emit(out) {
			return nil
		}
	}
}
