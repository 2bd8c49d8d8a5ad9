package resend

// Mail is one transactional e-mail rendered with the notification template.
type Mail struct {
	To      string
	Subject string
	Title   string
	Message string
	// Path is appended to the app URL for the call-to-action button.
	Path string
}
