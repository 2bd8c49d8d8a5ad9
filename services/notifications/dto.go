package notifications

type PendingCountResponse struct {
	Count int `json:"count"`
}
