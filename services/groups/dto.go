package groups

import (
	"fmt"
	"strings"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"

	defaultMaxMembers = 20
	maxNameLength     = 100
	maxTagLength      = 30
	maxTags           = 20

	TabAbout    = "about"
	TabMembers  = "members"
	TabSchedule = "schedule"
	TabChat     = "chat"
)

var scheduleDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

type CreateGroupRequest struct {
	Name        string               `json:"name" binding:"required,max=100"`
	Sport       store.Sport          `json:"sport" binding:"required,sport"`
	Location    string               `json:"location" binding:"required,max=200"`
	Description string               `json:"description" binding:"max=1000"`
	SkillLevel  store.Level          `json:"skillLevel" binding:"required"`
	Tags        []string             `json:"tags"`
	Schedule    []store.ScheduleSlot `json:"schedule"`
	MaxMembers  int                  `json:"maxMembers"`
}

type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// ViewerState is what the caller may do on a group page.
type ViewerState struct {
	IsCreator        bool     `json:"isCreator"`
	IsMember         bool     `json:"isMember"`
	PendingRequestID string   `json:"pendingRequestId,omitempty"`
	CanRequestJoin   bool     `json:"canRequestJoin"`
	CanChat          bool     `json:"canChat"`
	Tabs             []string `json:"tabs"`
}

type GroupDetail struct {
	Group  *store.Group `json:"group"`
	Viewer ViewerState  `json:"viewer"`
}

type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (r *CreateGroupRequest) validate() error {
	fields := map[string]string{}

	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		fields["name"] = "name is required"
	} else if len(r.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}
	if !r.Sport.Valid() {
		fields["sport"] = "sport must be tennis or pickleball"
	}
	if r.Location == "" {
		fields["location"] = "location is required"
	}
	switch r.SkillLevel {
	case store.AllLevels, store.Beginner, store.Intermediate, store.Advanced:
	default:
		fields["skillLevel"] = "skill level must be All Levels, Beginner, Intermediate or Advanced"
	}

	switch {
	case r.MaxMembers == 0:
		r.MaxMembers = defaultMaxMembers
	case r.MaxMembers < 1:
		fields["maxMembers"] = "max members must be at least 1"
	}

	r.Tags = normaliseTags(r.Tags)
	if len(r.Tags) > maxTags {
		fields["tags"] = fmt.Sprintf("at most %d tags", maxTags)
	}
	for _, tag := range r.Tags {
		if len(tag) > maxTagLength {
			fields["tags"] = fmt.Sprintf("tag %q is too long", tag)
		}
	}

	for i, slot := range r.Schedule {
		if msg := checkSchedule(slot); msg != "" {
			fields[fmt.Sprintf("schedule[%d]", i)] = msg
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

// normaliseTags trims tags and drops empty and repeated ones.
func normaliseTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func checkSchedule(slot store.ScheduleSlot) string {
	if !scheduleDays[slot.Day] {
		return fmt.Sprintf("unknown day %q", slot.Day)
	}
	if !validation.IsClock(slot.StartTime) || !validation.IsClock(slot.EndTime) {
		return "times must use HH:mm"
	}
	if slot.StartTime >= slot.EndTime {
		return "start time must be before end time"
	}
	return ""
}

func viewerState(g *store.Group, uid, pendingID string) ViewerState {
	v := ViewerState{
		IsCreator:        g.CreatedBy == uid,
		IsMember:         g.HasMember(uid),
		PendingRequestID: pendingID,
	}
	v.CanRequestJoin = !v.IsMember && !v.IsCreator && pendingID == ""
	v.CanChat = v.IsMember || v.IsCreator
	v.Tabs = []string{TabAbout, TabMembers, TabSchedule}
	if v.CanChat {
		v.Tabs = append(v.Tabs, TabChat)
	}
	return v
}
