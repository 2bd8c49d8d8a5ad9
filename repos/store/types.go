package store

import "time"

type Sport string

const (
	Tennis     Sport = "tennis"
	Pickleball Sport = "pickleball"
)

func (s Sport) Valid() bool {
	return s == Tennis || s == Pickleball
}

type Level string

const (
	Beginner     Level = "Beginner"
	Intermediate Level = "Intermediate"
	Advanced     Level = "Advanced"
	AllLevels    Level = "All Levels"
)

// Status is the lifecycle of play and group requests.
// pending is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusDeclined
}

type TimeRange struct {
	Start string `firestore:"start" json:"start"`
	End   string `firestore:"end" json:"end"`
}

type DayAvailability struct {
	Available  bool        `firestore:"available" json:"available"`
	TimeRanges []TimeRange `firestore:"timeRanges,omitempty" json:"timeRanges,omitempty"`
}

type Weekdays struct {
	Monday    DayAvailability `firestore:"monday" json:"monday"`
	Tuesday   DayAvailability `firestore:"tuesday" json:"tuesday"`
	Wednesday DayAvailability `firestore:"wednesday" json:"wednesday"`
	Thursday  DayAvailability `firestore:"thursday" json:"thursday"`
	Friday    DayAvailability `firestore:"friday" json:"friday"`
	Saturday  DayAvailability `firestore:"saturday" json:"saturday"`
	Sunday    DayAvailability `firestore:"sunday" json:"sunday"`
}

// Days returns the weekdays in calendar order, keyed by their stored name.
func (w Weekdays) Days() []NamedDay {
	return []NamedDay{
		{"monday", w.Monday},
		{"tuesday", w.Tuesday},
		{"wednesday", w.Wednesday},
		{"thursday", w.Thursday},
		{"friday", w.Friday},
		{"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
}

type NamedDay struct {
	Name string
	DayAvailability
}

type Availability struct {
	Weekdays       Weekdays `firestore:"weekdays" json:"weekdays"`
	PreferredTimes string   `firestore:"preferredTimes" json:"preferredTimes"`
	Notes          string   `firestore:"notes" json:"notes"`
}

// DefaultAvailability is what a new profile starts with: no days, flexible.
func DefaultAvailability() Availability {
	return Availability{PreferredTimes: "flexible"}
}

type Profile struct {
	ID                  string       `firestore:"id" json:"id"`
	DisplayName         string       `firestore:"displayName" json:"displayName"`
	Email               string       `firestore:"email" json:"email"`
	PhotoURL            string       `firestore:"photoURL" json:"photoURL"`
	Bio                 string       `firestore:"bio" json:"bio"`
	Level               Level        `firestore:"level" json:"level"`
	Sports              []Sport      `firestore:"sports" json:"sports"`
	ZipCode             string       `firestore:"zipCode" json:"zipCode"`
	PhoneNumber         string       `firestore:"phoneNumber" json:"phoneNumber"`
	Availability        Availability `firestore:"availability" json:"availability"`
	OnboardingCompleted bool         `firestore:"onboardingCompleted" json:"onboardingCompleted"`
	ExpoPushToken       string       `firestore:"expoPushToken,omitempty" json:"-"`
	CreatedAt           time.Time    `firestore:"createdAt" json:"createdAt"`
}

func (p *Profile) PlaysSport(s Sport) bool {
	for _, v := range p.Sports {
		if v == s {
			return true
		}
	}
	return false
}

type ScheduleSlot struct {
	Day       string `firestore:"day" json:"day"`
	StartTime string `firestore:"startTime" json:"startTime"`
	EndTime   string `firestore:"endTime" json:"endTime"`
	Recurring bool   `firestore:"recurring" json:"recurring"`
}

type Group struct {
	ID          string         `firestore:"id" json:"id"`
	Name        string         `firestore:"name" json:"name"`
	Sport       Sport          `firestore:"sport" json:"sport"`
	Location    string         `firestore:"location" json:"location"`
	Description string         `firestore:"description" json:"description"`
	SkillLevel  Level          `firestore:"skillLevel" json:"skillLevel"`
	Tags        []string       `firestore:"tags" json:"tags"`
	Schedule    []ScheduleSlot `firestore:"schedule" json:"schedule"`
	Members     []string       `firestore:"members" json:"members"`
	MemberCount int            `firestore:"memberCount" json:"memberCount"`
	MaxMembers  int            `firestore:"maxMembers" json:"maxMembers"`
	CreatedBy   string         `firestore:"createdBy" json:"createdBy"`
	ImageURL    string         `firestore:"imageUrl" json:"imageUrl"`
	CreatedAt   time.Time      `firestore:"createdAt" json:"createdAt"`
}

func (g *Group) HasMember(uid string) bool {
	for _, m := range g.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// AddMember unions uid into Members and re-derives MemberCount.
func (g *Group) AddMember(uid string) {
	if !g.HasMember(uid) {
		g.Members = append(g.Members, uid)
	}
	g.SyncMemberCount()
}

// SyncMemberCount derives the stored counter from the members array.
func (g *Group) SyncMemberCount() {
	g.MemberCount = len(g.Members)
}

// CanAccess reports whether uid is a member or the creator of the group.
func (g *Group) CanAccess(uid string) bool {
	return g.CreatedBy == uid || g.HasMember(uid)
}

func (g *Group) Full() bool {
	return g.MaxMembers > 0 && len(g.Members) >= g.MaxMembers
}

type GroupRequest struct {
	ID           string     `firestore:"id" json:"id"`
	GroupID      string     `firestore:"groupId" json:"groupId"`
	GroupName    string     `firestore:"groupName" json:"groupName"`
	UserID       string     `firestore:"userId" json:"userId"`
	UserName     string     `firestore:"userName" json:"userName"`
	UserPhotoURL string     `firestore:"userPhotoURL" json:"userPhotoURL"`
	Status       Status     `firestore:"status" json:"status"`
	CreatedAt    time.Time  `firestore:"createdAt" json:"createdAt"`
	RespondedAt  *time.Time `firestore:"respondedAt" json:"respondedAt,omitempty"`
}

type PlayRequest struct {
	ID            string     `firestore:"id" json:"id"`
	SenderID      string     `firestore:"senderId" json:"senderId"`
	SenderName    string     `firestore:"senderName" json:"senderName"`
	SenderEmail   string     `firestore:"senderEmail" json:"senderEmail,omitempty"`
	SenderPhone   string     `firestore:"senderPhone" json:"senderPhone,omitempty"`
	ReceiverID    string     `firestore:"receiverId" json:"receiverId"`
	ReceiverName  string     `firestore:"receiverName" json:"receiverName,omitempty"`
	ReceiverEmail string     `firestore:"receiverEmail" json:"receiverEmail,omitempty"`
	ReceiverPhone string     `firestore:"receiverPhone" json:"receiverPhone,omitempty"`
	Sport         Sport      `firestore:"sport" json:"sport"`
	Message       string     `firestore:"message" json:"message"`
	Status        Status     `firestore:"status" json:"status"`
	ContactShared bool       `firestore:"contactShared" json:"contactShared"`
	CreatedAt     time.Time  `firestore:"createdAt" json:"createdAt"`
	RespondedAt   *time.Time `firestore:"respondedAt" json:"respondedAt,omitempty"`
}

type PlayerDetail struct {
	ID       string `firestore:"id" json:"id"`
	Name     string `firestore:"name" json:"name"`
	PhotoURL string `firestore:"photoURL" json:"photoURL"`
}

type Connection struct {
	ID            string         `firestore:"id" json:"id"`
	Players       []string       `firestore:"players" json:"players"`
	PlayerDetails []PlayerDetail `firestore:"playerDetails" json:"playerDetails"`
	Sport         Sport          `firestore:"sport" json:"sport"`
	Status        string         `firestore:"status" json:"status"`
	CreatedAt     time.Time      `firestore:"createdAt" json:"createdAt"`
	LastPlayedAt  time.Time      `firestore:"lastPlayedAt" json:"lastPlayedAt"`
}

type Message struct {
	ID             string    `firestore:"id" json:"id"`
	GroupID        string    `firestore:"groupId" json:"groupId"`
	SenderID       string    `firestore:"senderId" json:"senderId"`
	SenderName     string    `firestore:"senderName" json:"senderName"`
	SenderPhotoURL string    `firestore:"senderPhotoURL" json:"senderPhotoURL"`
	Content        string    `firestore:"content" json:"content"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
}

const (
	NotificationRequestAccepted      = "request_accepted"
	NotificationGroupRequestAccepted = "group_request_accepted"
)

type Notification struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"userId" json:"userId"`
	Type      string    `firestore:"type" json:"type"`
	Title     string    `firestore:"title" json:"title"`
	Message   string    `firestore:"message" json:"message"`
	Read      bool      `firestore:"read" json:"read"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	RequestID string    `firestore:"requestId" json:"requestId"`
}

const (
	ViewPlayers     = "players"
	ViewCommunities = "communities"
	SportAll        = "all"
)

// Preferences are the persisted discovery UI settings of one user.
type Preferences struct {
	UserID                 string    `firestore:"userId" json:"userId"`
	View                   string    `firestore:"view" json:"view"`
	SportFilter            string    `firestore:"sportFilter" json:"sportFilter"`
	InstallPromptDismissed bool      `firestore:"installPromptDismissed" json:"installPromptDismissed"`
	UpdatedAt              time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func DefaultPreferences(uid string) Preferences {
	return Preferences{UserID: uid, View: ViewPlayers, SportFilter: SportAll}
}
