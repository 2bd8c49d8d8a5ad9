// Package courts finds tennis and pickleball courts near a location.
package courts

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/playmatch/api/pkg/apperrors"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/maps"
	"github.com/playmatch/api/repos/store"
)

const (
	placeType          = "establishment"
	detailsConcurrency = 5
	locationFallback   = "Location not available"
)

// Places is the subset of the Google Maps client the courts lookup needs.
type Places interface {
	Configured() bool
	Geocode(ctx context.Context, zip string) (*maps.LatLng, error)
	NearbySearch(ctx context.Context, request maps.NearbyRequest) ([]maps.Place, error)
	Details(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
}

type Options struct {
	SearchRadius int
	DailyLimit   int
	CacheTTL     time.Duration
}

type cacheEntry struct {
	courts  []Court
	fetched time.Time
}

type Service struct {
	places Places
	opts   Options
	now    timehelper.Clock

	mu       sync.Mutex
	cache    map[string]cacheEntry
	day      string
	requests int
}

func NewService(places Places, opts Options) *Service {
	return &Service{
		places: places,
		opts:   opts,
		now:    timehelper.Now,
		cache:  map[string]cacheEntry{},
	}
}

func (s *Service) configured() error {
	if !s.places.Configured() {
		return fmt.Errorf("court search is not configured: %w", apperrors.ErrUnavailable)
	}
	return nil
}

// Geocode resolves a US zip code to coordinates.
func (s *Service) Geocode(ctx context.Context, zip string) (*GeocodeResponse, error) {
	if !validation.IsZipCode(zip) {
		return nil, apperrors.Invalid("zip", "zip must be a US ZIP or ZIP+4 code")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	location, err := s.places.Geocode(ctx, zip)
	if err != nil {
		return nil, err
	}
	return &GeocodeResponse{Zip: zip, Lat: location.Lat, Lng: location.Lng}, nil
}

// Nearby lists courts for the sport around a point or a zip code, nearest
// first. Results are cached per point and sport.
func (s *Service) Nearby(ctx context.Context, query NearbyQuery) ([]Court, error) {
	if !query.Sport.Valid() {
		return nil, apperrors.Invalid("sport", "sport must be tennis or pickleball")
	}
	if err := s.configured(); err != nil {
		return nil, err
	}

	var origin maps.LatLng
	switch {
	case query.Lat != nil && query.Lng != nil:
		origin = maps.LatLng{Lat: *query.Lat, Lng: *query.Lng}
	case query.Zip != "":
		geocoded, err := s.Geocode(ctx, query.Zip)
		if err != nil {
			return nil, err
		}
		origin = maps.LatLng{Lat: geocoded.Lat, Lng: geocoded.Lng}
	default:
		return nil, apperrors.Invalid("location", "lat and lng or zip is required")
	}

	key := cacheKey(origin, query.Sport)
	if courts, ok := s.cached(key); ok {
		return courts, nil
	}
	if err := s.spend(); err != nil {
		return nil, err
	}

	places, err := s.places.NearbySearch(ctx, maps.NearbyRequest{
		Location: origin,
		Radius:   s.opts.SearchRadius,
		Keyword:  fmt.Sprintf("%s courts near", query.Sport),
		Type:     placeType,
	})
	if err != nil {
		return nil, err
	}

	courts, err := s.describe(ctx, origin, query.Sport, places)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{courts: courts, fetched: s.now()}
	s.mu.Unlock()
	return courts, nil
}

func cacheKey(origin maps.LatLng, sport store.Sport) string {
	return fmt.Sprintf("%s-%s-%s",
		strconv.FormatFloat(origin.Lat, 'f', -1, 64),
		strconv.FormatFloat(origin.Lng, 'f', -1, 64),
		sport)
}

func (s *Service) cached(key string) ([]Court, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.fetched) >= s.opts.CacheTTL {
		delete(s.cache, key)
		return nil, false
	}
	return entry.courts, true
}

// spend takes one search from the daily budget. The budget resets when the
// calendar day changes.
func (s *Service) spend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if today := timehelper.DayKey(s.now()); today != s.day {
		s.day, s.requests = today, 0
	}
	if s.requests >= s.opts.DailyLimit {
		log.WithField("limit", s.opts.DailyLimit).Warn("daily court search budget exhausted")
		return fmt.Errorf("daily court search limit reached, try again tomorrow: %w", apperrors.ErrRateLimited)
	}
	s.requests++
	return nil
}

// describe fetches place details concurrently and turns places into courts.
// A place whose details cannot be fetched is still listed.
func (s *Service) describe(ctx context.Context, origin maps.LatLng, sport store.Sport, places []maps.Place) ([]Court, error) {
	courts := make([]Court, len(places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, place := range places {
		g.Go(func() error {
			details, err := s.places.Details(gctx, place.PlaceID)
			if err != nil {
				log.WithError(err).WithField("place", place.PlaceID).Warn("place details unavailable")
				details = nil
			}
			courts[i] = toCourt(origin, sport, place, details)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(courts, func(i, j int) bool { return courts[i].Distance < courts[j].Distance })
	return courts, nil
}

func toCourt(origin maps.LatLng, sport store.Sport, place maps.Place, details *maps.PlaceDetails) Court {
	miles := distance(origin, place.Geometry.Location)
	free, price := priceInfo(place)

	c := Court{
		ID:             place.PlaceID,
		Name:           place.Name,
		Location:       place.Vicinity,
		Type:           sport,
		Distance:       miles,
		DistanceText:   distanceText(miles),
		Rating:         place.Rating,
		NumberOfCourts: estimateCourtCount(place.Types),
		URL:            place.URL,
		OpeningHours:   []string{},
		IsIndoor:       isIndoor(place, details),
		IsFree:         free,
		PriceInfo:      price,
	}
	if c.Location == "" {
		c.Location = locationFallback
	}
	if len(place.Photos) > 0 {
		c.PhotoReference = place.Photos[0].PhotoReference
	}
	if details != nil {
		if details.URL != "" && c.URL == "" {
			c.URL = details.URL
		}
		if len(details.Photos) > 0 {
			c.PhotoReference = details.Photos[0].PhotoReference
		}
		if details.OpeningHours != nil {
			c.OpeningHours = details.OpeningHours.WeekdayText
		}
		c.PhoneNumber = details.FormattedPhoneNumber
	}
	if c.URL == "" {
		c.URL = "https://maps.google.com/maps?q=place_id:" + place.PlaceID
	}
	return c
}
