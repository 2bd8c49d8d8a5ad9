// Package discovery serves the paged player and community feed together with
// the persisted feed preferences.
package discovery

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/cursor"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/store"
	"github.com/playmatch/api/services/playrequests"
)

const connectConcurrency = 4

// PlayRequester creates play requests. *playrequests.Service implements it.
type PlayRequester interface {
	Create(ctx context.Context, senderID string, request playrequests.CreatePlayRequest) (*playrequests.PlayRequestView, error)
}

type Service struct {
	store     store.Store
	requester PlayRequester
	pageSize  int
	now       timehelper.Clock
}

func NewService(st store.Store, requester PlayRequester, pageSize int) *Service {
	return &Service{store: st, requester: requester, pageSize: pageSize, now: timehelper.Now}
}

// Preferences returns the stored feed settings of uid, or the defaults.
func (s *Service) Preferences(ctx context.Context, uid string) (*store.Preferences, error) {
	prefs, err := s.store.GetPreferences(ctx, uid)
	if errors.Is(err, apperrors.ErrNotFound) {
		defaults := store.DefaultPreferences(uid)
		return &defaults, nil
	}
	return prefs, err
}

func (s *Service) UpdatePreferences(ctx context.Context, uid string, patch PreferencesPatch) (*store.Preferences, error) {
	prefs, err := s.Preferences(ctx, uid)
	if err != nil {
		return nil, err
	}
	if patch.View != nil {
		prefs.View = *patch.View
	}
	if patch.SportFilter != nil {
		prefs.SportFilter = *patch.SportFilter
	}
	if patch.InstallPromptDismissed != nil {
		prefs.InstallPromptDismissed = *patch.InstallPromptDismissed
	}
	if err := checkPreferences(prefs.View, prefs.SportFilter); err != nil {
		return nil, err
	}
	prefs.UpdatedAt = s.now()
	if err := s.store.SetPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Feed returns one page of players or communities. A view or sport that
// differs from the stored preferences is saved and restarts paging.
func (s *Service) Feed(ctx context.Context, uid string, request FeedRequest) (*FeedResponse, error) {
	prefs, err := s.Preferences(ctx, uid)
	if err != nil {
		return nil, err
	}

	view, sport := request.View, request.Sport
	if view == "" {
		view = prefs.View
	}
	if sport == "" {
		sport = prefs.SportFilter
	}
	if err := checkPreferences(view, sport); err != nil {
		return nil, err
	}

	after, err := cursor.Decode(request.Cursor)
	if err != nil {
		return nil, apperrors.Invalid("cursor", "cursor is not valid")
	}
	if view != prefs.View || sport != prefs.SportFilter {
		prefs.View, prefs.SportFilter, prefs.UpdatedAt = view, sport, s.now()
		if err := s.store.SetPreferences(ctx, prefs); err != nil {
			return nil, err
		}
		after = nil
	}

	q := store.PageQuery{Limit: s.pageSize, After: after}
	if sport != store.SportAll {
		q.Sport = store.Sport(sport)
	}

	response := &FeedResponse{View: view, Sport: sport}
	var last *cursor.Position
	if view == store.ViewCommunities {
		groups, err := s.store.ListGroups(ctx, q)
		if err != nil {
			return nil, err
		}
		response.Groups = groups
		if n := len(groups); n > 0 {
			last = &cursor.Position{Key: groups[n-1].Name, ID: groups[n-1].ID}
		}
		response.HasMore = len(groups) == s.pageSize
	} else {
		profiles, err := s.store.ListProfiles(ctx, q)
		if err != nil {
			return nil, err
		}
		if n := len(profiles); n > 0 {
			last = &cursor.Position{Key: profiles[n-1].DisplayName, ID: profiles[n-1].ID}
		}
		response.HasMore = len(profiles) == s.pageSize
		response.Players = make([]PlayerCard, 0, len(profiles))
		for _, p := range profiles {
			if p.ID != uid {
				response.Players = append(response.Players, card(p))
			}
		}
	}

	if response.HasMore && last != nil {
		response.NextCursor = cursor.Encode(*last)
	}
	return response, nil
}

// Connect sends one play request per receiver. A failed request does not stop
// the others; each outcome is reported in receiver order.
func (s *Service) Connect(ctx context.Context, uid string, request ConnectRequest) ([]ConnectResult, error) {
	targets := receivers(request.ReceiverIDs, uid)
	switch {
	case len(targets) == 0:
		return nil, apperrors.Invalid("receiverIds", "at least one other player is required")
	case len(targets) > maxConnectReceivers:
		return nil, apperrors.Invalid("receiverIds", fmt.Sprintf("at most %d players at once", maxConnectReceivers))
	}

	results := make([]ConnectResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(connectConcurrency)
	for i, receiverID := range targets {
		g.Go(func() error {
			results[i].ReceiverID = receiverID
			created, err := s.requester.Create(gctx, uid, playrequests.CreatePlayRequest{
				ReceiverID: receiverID,
				Sport:      request.Sport,
				Message:    request.Message,
			})
			if err != nil {
				log.WithError(err).WithFields(log.Fields{"sender": uid, "receiver": receiverID}).Warn("connect request failed")
				results[i].Error = err.Error()
				return nil
			}
			results[i].RequestID = created.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
