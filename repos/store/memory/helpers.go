package memory

import (
	"github.com/playmatch/api/pkg/cursor"
	"github.com/playmatch/api/repos/store"
)

type watcher struct {
	dirty chan struct{}
}

// watch registers interest in a collection. Commits coalesce into a single
// pending signal per watcher.
func (s *Store) watch(collection string) (*watcher, func()) {
	w := &watcher{dirty: make(chan struct{}, 1)}

	s.wmu.Lock()
	if s.watchers[collection] == nil {
		s.watchers[collection] = map[*watcher]struct{}{}
	}
	s.watchers[collection][w] = struct{}{}
	s.wmu.Unlock()

	return w, func() {
		s.wmu.Lock()
		delete(s.watchers[collection], w)
		s.wmu.Unlock()
	}
}

func (s *Store) notify(collection string) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for w := range s.watchers[collection] {
		select {
		case w.dirty <- struct{}{}:
		default:
		}
	}
}

// afterCursor reports whether (name, id) sorts strictly after the cursor.
func afterCursor(name, id string, after *cursor.Position) bool {
	if after == nil {
		return true
	}
	return lessByName(after.Key, after.ID, name, id)
}

func lessByName(nameA, idA, nameB, idB string) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}

func cloneProfile(p *store.Profile) *store.Profile {
	c := *p
	c.Sports = append([]store.Sport(nil), p.Sports...)
	c.Availability.Weekdays = cloneWeekdays(p.Availability.Weekdays)
	return &c
}

func cloneWeekdays(w store.Weekdays) store.Weekdays {
	day := func(d store.DayAvailability) store.DayAvailability {
		d.TimeRanges = append([]store.TimeRange(nil), d.TimeRanges...)
		return d
	}
	return store.Weekdays{
		Monday:    day(w.Monday),
		Tuesday:   day(w.Tuesday),
		Wednesday: day(w.Wednesday),
		Thursday:  day(w.Thursday),
		Friday:    day(w.Friday),
		Saturday:  day(w.Saturday),
		Sunday:    day(w.Sunday),
	}
}

func cloneGroup(g *store.Group) *store.Group {
	c := *g
	c.Tags = append([]string(nil), g.Tags...)
	c.Schedule = append([]store.ScheduleSlot(nil), g.Schedule...)
	c.Members = append([]string(nil), g.Members...)
	return &c
}

func cloneConnection(conn *store.Connection) *store.Connection {
	c := *conn
	c.Players = append([]string(nil), conn.Players...)
	c.PlayerDetails = append([]store.PlayerDetail(nil), conn.PlayerDetails...)
	return &c
}
