// Package memory is an in-process document store with the same semantics as
// the Firestore backend: serialised transactions that apply all of their
// writes or none, and live queries that re-emit on every committed change.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu            sync.RWMutex
	profiles      map[string]*store.Profile
	groups        map[string]*store.Group
	groupRequests map[string]*store.GroupRequest
	playRequests  map[string]*store.PlayRequest
	connections   map[string]*store.Connection
	messages      map[string]*store.Message
	notifications map[string]*store.Notification
	preferences   map[string]*store.Preferences
	pending       map[string]string

	wmu      sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

func New() *Store {
	return &Store{
		profiles:      map[string]*store.Profile{},
		groups:        map[string]*store.Group{},
		groupRequests: map[string]*store.GroupRequest{},
		playRequests:  map[string]*store.PlayRequest{},
		connections:   map[string]*store.Connection{},
		messages:      map[string]*store.Message{},
		notifications: map[string]*store.Notification{},
		preferences:   map[string]*store.Preferences{},
		pending:       map[string]string{},
		watchers:      map[string]map[*watcher]struct{}{},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
}

func (s *Store) RunTransaction(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	t := &txn{s: s, touched: map[string]bool{}}
	err := fn(ctx, t)
	if err == nil {
		for _, op := range t.ops {
			op()
		}
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for collection := range t.touched {
		s.notify(collection)
	}
	return nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (*store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil, notFound("profile", uid)
	}
	return cloneProfile(p), nil
}

func (s *Store) ListProfiles(_ context.Context, q store.PageQuery) ([]*store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Profile
	for _, p := range s.profiles {
		if !p.OnboardingCompleted {
			continue
		}
		if q.Sport != "" && !p.PlaysSport(q.Sport) {
			continue
		}
		if !afterCursor(p.DisplayName, p.ID, q.After) {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].DisplayName, out[i].ID, out[j].DisplayName, out[j].ID)
	})
	return limit(out, q.Limit), nil
}

func (s *Store) GetGroup(_ context.Context, id string) (*store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, notFound("group", id)
	}
	return cloneGroup(g), nil
}

func (s *Store) ListGroups(_ context.Context, q store.PageQuery) ([]*store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Group
	for _, g := range s.groups {
		if q.Sport != "" && g.Sport != q.Sport {
			continue
		}
		if !afterCursor(g.Name, g.ID, q.After) {
			continue
		}
		out = append(out, cloneGroup(g))
	}
	sortGroups(out)
	return limit(out, q.Limit), nil
}

func (s *Store) ListGroupsByMember(_ context.Context, uid string) ([]*store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Group
	for _, g := range s.groups {
		if g.HasMember(uid) {
			out = append(out, cloneGroup(g))
		}
	}
	sortGroups(out)
	return out, nil
}

func (s *Store) ListGroupRequests(_ context.Context, f store.GroupRequestFilter) ([]*store.GroupRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.GroupRequest
	for _, r := range s.groupRequests {
		if f.GroupID != "" && r.GroupID != f.GroupID {
			continue
		}
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) ListPlayRequests(_ context.Context, f store.PlayRequestFilter) ([]*store.PlayRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playRequestsLocked(f), nil
}

func (s *Store) playRequestsLocked(f store.PlayRequestFilter) []*store.PlayRequest {
	var out []*store.PlayRequest
	for _, r := range s.playRequests {
		if f.SenderID != "" && r.SenderID != f.SenderID {
			continue
		}
		if f.ReceiverID != "" && r.ReceiverID != f.ReceiverID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out
}

func (s *Store) SubscribePlayRequests(ctx context.Context, f store.PlayRequestFilter) *store.Subscription[[]*store.PlayRequest] {
	return store.NewSubscription(ctx, func(ctx context.Context, emit store.Emit[[]*store.PlayRequest]) error {
		w, stop := s.watch(store.PlayRequestsCollection)
		defer stop()
		for {
			s.mu.RLock()
			snapshot := s.playRequestsLocked(f)
			s.mu.RUnlock()
			if !emit(snapshot) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.dirty:
			}
		}
	})
}

func (s *Store) ListConnections(_ context.Context, uid string) ([]*store.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Connection
	for _, c := range s.connections {
		for _, p := range c.Players {
			if p == uid {
				out = append(out, cloneConnection(c))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].LastPlayedAt, out[i].ID, out[j].LastPlayedAt, out[j].ID)
	})
	return out, nil
}

// AddConnection stores a connection document. The API has no write path for
// connections; this seeds them for local runs and tests.
func (s *Store) AddConnection(c *store.Connection) {
	s.mu.Lock()
	s.connections[c.ID] = cloneConnection(c)
	s.mu.Unlock()
	s.notify(store.ConnectionsCollection)
}

func (s *Store) AddMessage(_ context.Context, m *store.Message) error {
	s.mu.Lock()
	if _, ok := s.messages[m.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("message %s: %w", m.ID, apperrors.ErrAlreadyExists)
	}
	c := *m
	s.messages[m.ID] = &c
	s.mu.Unlock()

	s.notify(store.MessagesCollection)
	return nil
}

func (s *Store) ListMessages(_ context.Context, groupID string) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messagesLocked(groupID), nil
}

func (s *Store) messagesLocked(groupID string) []*store.Message {
	var out []*store.Message
	for _, m := range s.messages {
		if m.GroupID == groupID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out
}

func (s *Store) SubscribeMessages(ctx context.Context, groupID string) *store.Subscription[[]*store.Message] {
	return store.NewSubscription(ctx, func(ctx context.Context, emit store.Emit[[]*store.Message]) error {
		w, stop := s.watch(store.MessagesCollection)
		defer stop()
		for {
			s.mu.RLock()
			snapshot := s.messagesLocked(groupID)
			s.mu.RUnlock()
			if !emit(snapshot) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.dirty:
			}
		}
	})
}

func (s *Store) ListNotifications(_ context.Context, uid string) ([]*store.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Notification
	for _, n := range s.notifications {
		if n.UserID == uid {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return store.NewerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetPreferences(_ context.Context, uid string) (*store.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preferences[uid]
	if !ok {
		return nil, notFound("preferences", uid)
	}
	c := *p
	return &c, nil
}

func (s *Store) SetPreferences(_ context.Context, p *store.Preferences) error {
	s.mu.Lock()
	c := *p
	s.preferences[p.UserID] = &c
	s.mu.Unlock()

	s.notify(store.PreferencesCollection)
	return nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func sortGroups(groups []*store.Group) {
	sort.Slice(groups, func(i, j int) bool {
		return lessByName(groups[i].Name, groups[i].ID, groups[j].Name, groups[j].ID)
	})
}
