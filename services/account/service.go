// Package account binds Firebase Auth identities to user profiles: sign-up,
// sign-out, onboarding and profile maintenance.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"

	firebaseauth "firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	timehelper "github.com/playmatch/api/pkg/timeHelper"
	"github.com/playmatch/api/repos/expo"
	"github.com/playmatch/api/repos/photos"
	"github.com/playmatch/api/repos/store"
)

// AuthClient is the part of the Firebase Auth admin client the account
// service uses. *firebaseauth.Client implements it.
type AuthClient interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Service struct {
	store    store.Store
	auth     AuthClient
	uploader photos.Uploader
	now      timehelper.Clock
}

func NewService(st store.Store, authClient AuthClient, uploader photos.Uploader) *Service {
	return &Service{
		store:    st,
		auth:     authClient,
		uploader: uploader,
		now:      timehelper.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, request SignUpRequest) (*SignUpResponse, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	params := (&firebaseauth.UserToCreate{}).
		Email(request.Email).
		Password(request.Password)
	if request.DisplayName != "" {
		params = params.DisplayName(request.DisplayName)
	}

	user, err := s.auth.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return nil, fmt.Errorf("an account with this e-mail already exists: %w", apperrors.ErrAlreadyExists)
		}
		log.WithError(err).Error("Failed to create user")
		return nil, fmt.Errorf("create user: %v: %w", err, apperrors.ErrUpstream)
	}
	return &SignUpResponse{UID: user.UID, Email: user.Email}, nil
}

// SignOut revokes the caller's refresh tokens so every session has to sign in again.
func (s *Service) SignOut(ctx context.Context, uid string) error {
	if err := s.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		log.WithError(err).WithField("uid", uid).Error("Failed to revoke refresh tokens")
		return fmt.Errorf("sign out: %v: %w", err, apperrors.ErrUpstream)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, identity auth.Identity) (*MeResponse, error) {
	response := &MeResponse{UID: identity.UID, Email: identity.Email}

	profile, err := s.store.GetProfile(ctx, identity.UID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return response, nil
	}
	if err != nil {
		return nil, err
	}
	response.OnboardingCompleted = profile.OnboardingCompleted
	if profile.OnboardingCompleted {
		response.Profile = profile
	}
	return response, nil
}

// IsOnboarded implements auth.OnboardingChecker.
func (s *Service) IsOnboarded(ctx context.Context, uid string) (bool, error) {
	profile, err := s.store.GetProfile(ctx, uid)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.OnboardingCompleted, nil
}

func (s *Service) Onboard(ctx context.Context, identity auth.Identity, request OnboardingRequest) (*store.Profile, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	profile := &store.Profile{
		ID:                  identity.UID,
		DisplayName:         request.DisplayName,
		Email:               identity.Email,
		Bio:                 request.Bio,
		Level:               request.Level,
		Sports:              uniqueSports(request.Sports),
		ZipCode:             request.ZipCode,
		PhoneNumber:         request.PhoneNumber,
		Availability:        store.DefaultAvailability(),
		OnboardingCompleted: true,
		CreatedAt:           s.now(),
	}
	if profile.Level == "" {
		profile.Level = store.Beginner
	}
	if request.Availability != nil {
		profile.Availability = *request.Availability
	}

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Profile(identity.UID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case err != nil:
			return err
		case existing.OnboardingCompleted:
			return fmt.Errorf("onboarding already completed: %w", apperrors.ErrConflict)
		default:
			// A photo or push token can be stored before onboarding finishes.
			profile.PhotoURL = existing.PhotoURL
			profile.ExpoPushToken = existing.ExpoPushToken
		}
		return tx.SetProfile(profile)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("uid", identity.UID).Info("onboarding completed")
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, patch ProfilePatch) (*store.Profile, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var updated *store.Profile
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		profile, err := tx.Profile(uid)
		if err != nil {
			return err
		}
		applyPatch(profile, patch)
		updated = profile
		return tx.SetProfile(profile)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyPatch(p *store.Profile, patch ProfilePatch) {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Level != nil {
		p.Level = *patch.Level
	}
	if patch.Sports != nil {
		p.Sports = uniqueSports(patch.Sports)
	}
	if patch.ZipCode != nil {
		p.ZipCode = *patch.ZipCode
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Availability != nil {
		p.Availability = *patch.Availability
	}
}

// UploadPhoto stores the profile picture and records its download URL.
func (s *Service) UploadPhoto(ctx context.Context, identity auth.Identity, contentType string, r io.Reader) (string, error) {
	photoURL, err := s.uploader.Upload(ctx, fmt.Sprintf("users/%s/profile.jpg", identity.UID), contentType, r)
	if err != nil {
		return "", err
	}

	err = s.updateOrCreate(ctx, identity, func(p *store.Profile) {
		p.PhotoURL = photoURL
	})
	if err != nil {
		return "", err
	}
	return photoURL, nil
}

func (s *Service) SetPushToken(ctx context.Context, identity auth.Identity, token string) error {
	if !expo.ValidToken(token) {
		return apperrors.Invalid("token", "not an Expo push token")
	}
	return s.updateOrCreate(ctx, identity, func(p *store.Profile) {
		p.ExpoPushToken = token
	})
}

// updateOrCreate applies fn to the caller's profile, creating a
// not-yet-onboarded stub when none exists.
func (s *Service) updateOrCreate(ctx context.Context, identity auth.Identity, fn func(p *store.Profile)) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		profile, err := tx.Profile(identity.UID)
		if errors.Is(err, apperrors.ErrNotFound) {
			profile = &store.Profile{
				ID:           identity.UID,
				Email:        identity.Email,
				Availability: store.DefaultAvailability(),
				CreatedAt:    s.now(),
			}
		} else if err != nil {
			return err
		}
		fn(profile)
		return tx.SetProfile(profile)
	})
}
