// Package maps is a small client for the Google Geocoding and Places web
// services.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/playmatch/api/pkg/apperrors"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	detailFields = "opening_hours,formatted_phone_number,photos,types,price_level,url"
)

var ErrNoLocation = xerrors.Errorf("No location found for this zip code: %w", apperrors.ErrNotFound)

type Service struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewService(baseURL, apiKey string) *Service {
	return &Service{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether an API key is set.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

func (s *Service) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", s.apiKey)
	apiURL := fmt.Sprintf("%s/%s?%s", s.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return xerrors.Errorf("create request: %w", err)
	}

	response, err := s.httpClient.Do(req)
	if err != nil {
		err = redact(err)
		log.WithError(err).WithField("path", path).Error("maps request failed")
		return xerrors.Errorf("maps request %s: %v: %w", path, err, apperrors.ErrUpstream)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusForbidden {
		return xerrors.Errorf("API key error - please check configuration: %w", apperrors.ErrUpstream)
	}
	if response.StatusCode != http.StatusOK {
		return xerrors.Errorf("maps request %s returned %d: %w", path, response.StatusCode, apperrors.ErrUpstream)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return xerrors.Errorf("decode %s response: %v: %w", path, err, apperrors.ErrUpstream)
	}
	return nil
}

// redact drops the request URL, which carries the API key, from transport
// errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// Geocode resolves a US zip code to coordinates.
func (s *Service) Geocode(ctx context.Context, zip string) (*LatLng, error) {
	params := url.Values{}
	params.Set("address", zip)
	params.Set("region", "us")

	var apiResponse geocodeResponse
	if err := s.get(ctx, "geocode/json", params, &apiResponse); err != nil {
		return nil, err
	}

	switch apiResponse.Status {
	case statusOK:
	case statusZeroResults:
		return nil, ErrNoLocation
	default:
		return nil, xerrors.Errorf("Geocoding error: %s: %w", apiResponse.Status, apperrors.ErrUpstream)
	}
	if len(apiResponse.Results) == 0 {
		return nil, xerrors.Errorf("Invalid zip code: %w", apperrors.ErrNotFound)
	}

	location := apiResponse.Results[0].Geometry.Location
	return &location, nil
}

// NearbySearch lists places around a location. ZERO_RESULTS is an empty list.
func (s *Service) NearbySearch(ctx context.Context, request NearbyRequest) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", request.Location.Lat, request.Location.Lng))
	params.Set("radius", strconv.Itoa(request.Radius))
	if request.Keyword != "" {
		params.Set("keyword", request.Keyword)
	}
	if request.Type != "" {
		params.Set("type", request.Type)
	}

	var apiResponse nearbyResponse
	if err := s.get(ctx, "place/nearbysearch/json", params, &apiResponse); err != nil {
		return nil, err
	}

	switch apiResponse.Status {
	case statusOK:
		return apiResponse.Results, nil
	case statusZeroResults:
		return nil, nil
	default:
		log.WithField("status", apiResponse.Status).WithField("error", apiResponse.ErrorMessage).Error("Places API status")
		return nil, xerrors.Errorf("Failed to fetch courts: %s: %w", apiResponse.Status, apperrors.ErrUpstream)
	}
}

// Details fetches the court detail fields of one place.
func (s *Service) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	var apiResponse detailsResponse
	if err := s.get(ctx, "place/details/json", params, &apiResponse); err != nil {
		return nil, err
	}
	if apiResponse.Status != statusOK {
		return nil, xerrors.Errorf("place details %s: %s: %w", placeID, apiResponse.Status, apperrors.ErrUpstream)
	}
	return &apiResponse.Result, nil
}
