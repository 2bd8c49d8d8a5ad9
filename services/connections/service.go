// Package connections lists the players a user has connected with.
package connections

import (
	"context"

	"github.com/playmatch/api/repos/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns the connections of uid, most recently played first.
func (s *Service) List(ctx context.Context, uid string) ([]ConnectionView, error) {
	connections, err := s.store.ListConnections(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectionView, 0, len(connections))
	for _, c := range connections {
		out = append(out, view(c, uid))
	}
	return out, nil
}
