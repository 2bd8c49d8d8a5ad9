package connections

import "github.com/playmatch/api/repos/store"

// ConnectionView is a connection as seen by one of its two players.
type ConnectionView struct {
	*store.Connection
	Partner *store.PlayerDetail `json:"partner,omitempty"`
}

func view(c *store.Connection, uid string) ConnectionView {
	v := ConnectionView{Connection: c}
	for i := range c.PlayerDetails {
		if c.PlayerDetails[i].ID != uid {
			v.Partner = &c.PlayerDetails[i]
			break
		}
	}
	return v
}
