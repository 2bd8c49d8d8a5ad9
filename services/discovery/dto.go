package discovery

import (
	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/repos/store"
)

const maxConnectReceivers = 20

type FeedRequest struct {
	View   string `form:"view"`
	Sport  string `form:"sport"`
	Cursor string `form:"cursor"`
}

// PlayerCard is the public part of a profile shown in discovery. Contact
// details stay out of it.
type PlayerCard struct {
	ID           string             `json:"id"`
	DisplayName  string             `json:"displayName"`
	PhotoURL     string             `json:"photoURL"`
	Bio          string             `json:"bio"`
	Level        store.Level        `json:"level"`
	Sports       []store.Sport      `json:"sports"`
	ZipCode      string             `json:"zipCode"`
	Availability store.Availability `json:"availability"`
}

type FeedResponse struct {
	View       string         `json:"view"`
	Sport      string         `json:"sport"`
	Players    []PlayerCard   `json:"players,omitempty"`
	Groups     []*store.Group `json:"groups,omitempty"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

type PreferencesPatch struct {
	View                   *string `json:"view"`
	SportFilter            *string `json:"sportFilter"`
	InstallPromptDismissed *bool   `json:"installPromptDismissed"`
}

type ConnectRequest struct {
	ReceiverIDs []string    `json:"receiverIds" binding:"required,min=1"`
	Sport       store.Sport `json:"sport" binding:"required,sport"`
	Message     string      `json:"message" binding:"max=500"`
}

// ConnectResult is the outcome of one play request of a connect fan-out.
type ConnectResult struct {
	ReceiverID string `json:"receiverId"`
	RequestID  string `json:"requestId,omitempty"`
	Error      string `json:"error,omitempty"`
}

func card(p *store.Profile) PlayerCard {
	return PlayerCard{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		PhotoURL:     p.PhotoURL,
		Bio:          p.Bio,
		Level:        p.Level,
		Sports:       p.Sports,
		ZipCode:      p.ZipCode,
		Availability: p.Availability,
	}
}

func validView(v string) bool {
	return v == store.ViewPlayers || v == store.ViewCommunities
}

func validSportFilter(s string) bool {
	return s == store.SportAll || store.Sport(s).Valid()
}

func checkPreferences(view, sport string) error {
	fields := map[string]string{}
	if !validView(view) {
		fields["view"] = "view must be players or communities"
	}
	if !validSportFilter(sport) {
		fields["sport"] = "sport must be all, tennis or pickleball"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

// receivers drops blank and repeated ids, keeping the first occurrence.
func receivers(ids []string, senderID string) []string {
	seen := map[string]bool{senderID: true}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
