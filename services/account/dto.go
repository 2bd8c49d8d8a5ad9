package account

import (
	"strings"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

const (
	maxNameLength  = 80
	maxBioLength   = 500
	maxPhoneLength = 30
	minPassword    = 6
)

type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"max=80"`
}

type SignUpResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type MeResponse struct {
	UID                 string         `json:"uid"`
	Email               string         `json:"email"`
	OnboardingCompleted bool           `json:"onboardingCompleted"`
	Profile             *store.Profile `json:"profile"`
}

type OnboardingRequest struct {
	DisplayName  string              `json:"displayName" binding:"required,max=80"`
	Level        store.Level         `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Sports       []store.Sport       `json:"sports" binding:"required,min=1,dive,sport"`
	ZipCode      string              `json:"zipCode" binding:"required,zipcode"`
	Bio          string              `json:"bio" binding:"max=500"`
	PhoneNumber  string              `json:"phoneNumber" binding:"max=30"`
	Availability *store.Availability `json:"availability"`
}

// ProfilePatch holds the fields of a partial profile update; nil means unchanged.
type ProfilePatch struct {
	DisplayName  *string             `json:"displayName" binding:"omitempty,max=80"`
	Level        *store.Level        `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Sports       []store.Sport       `json:"sports" binding:"omitempty,min=1,dive,sport"`
	ZipCode      *string             `json:"zipCode" binding:"omitempty,zipcode"`
	Bio          *string             `json:"bio" binding:"omitempty,max=500"`
	PhoneNumber  *string             `json:"phoneNumber" binding:"omitempty,max=30"`
	Availability *store.Availability `json:"availability"`
}

type PushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type PhotoResponse struct {
	PhotoURL string `json:"photoURL"`
}

func (r *SignUpRequest) validate() error {
	fields := map[string]string{}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		fields["email"] = "a valid e-mail address is required"
	}
	if len(r.Password) < minPassword {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(r.DisplayName) > maxNameLength {
		fields["displayName"] = "display name is too long"
	}
	return result(fields)
}

func (r *OnboardingRequest) validate() error {
	fields := map[string]string{}
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if r.DisplayName == "" {
		fields["displayName"] = "display name is required"
	}
	checkProfileFields(fields, r.DisplayName, r.Level, r.Sports, r.ZipCode, r.Bio, r.PhoneNumber)
	if len(r.Sports) == 0 {
		fields["sports"] = "select at least one sport"
	}
	if r.Availability != nil {
		validateAvailability(fields, r.Availability)
	}
	return result(fields)
}

func (p *ProfilePatch) validate() error {
	fields := map[string]string{}
	if p.DisplayName != nil {
		*p.DisplayName = strings.TrimSpace(*p.DisplayName)
		if *p.DisplayName == "" {
			fields["displayName"] = "display name is required"
		}
	}
	checkProfileFields(fields,
		deref(p.DisplayName),
		derefLevel(p.Level),
		p.Sports,
		deref(p.ZipCode),
		deref(p.Bio),
		deref(p.PhoneNumber),
	)
	if p.ZipCode != nil && *p.ZipCode == "" {
		fields["zipCode"] = "zip code is required"
	}
	if p.Sports != nil && len(p.Sports) == 0 {
		fields["sports"] = "select at least one sport"
	}
	if p.Availability != nil {
		validateAvailability(fields, p.Availability)
	}
	return result(fields)
}

func checkProfileFields(fields map[string]string, name string, level store.Level, sports []store.Sport, zip, bio, phone string) {
	if len(name) > maxNameLength {
		fields["displayName"] = "display name is too long"
	}
	switch level {
	case "", store.Beginner, store.Intermediate, store.Advanced:
	default:
		fields["level"] = "level must be Beginner, Intermediate or Advanced"
	}
	for _, sport := range sports {
		if !sport.Valid() {
			fields["sports"] = "sports must be tennis or pickleball"
		}
	}
	if zip != "" && !validation.IsZipCode(zip) {
		fields["zipCode"] = "zip code must be a US ZIP or ZIP+4"
	}
	if len(bio) > maxBioLength {
		fields["bio"] = "bio is too long"
	}
	if len(phone) > maxPhoneLength {
		fields["phoneNumber"] = "phone number is too long"
	}
}

func result(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError(fields)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefLevel(l *store.Level) store.Level {
	if l == nil {
		return ""
	}
	return *l
}

// uniqueSports drops duplicates while keeping the caller's order.
func uniqueSports(sports []store.Sport) []store.Sport {
	seen := map[store.Sport]bool{}
	out := make([]store.Sport, 0, len(sports))
	for _, s := range sports {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
