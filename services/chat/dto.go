package chat

type SendRequest struct {
	Content string `json:"content" binding:"required"`
}
