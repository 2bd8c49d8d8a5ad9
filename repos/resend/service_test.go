package resend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredServiceRefusesToSend(t *testing.T) {
	s := NewService("", "from@example.com", "https://app.example.com")
	assert.False(t, s.Configured())
	assert.ErrorIs(t, s.SendMail(context.Background(), Mail{To: "a@example.com"}), ErrNotConfigured)
}

func TestEmailTemplateEscapesContent(t *testing.T) {
	body := getEmailTemplate("Play Request Accepted!", "<b>Ann</b> accepted", "https://app.example.com/requests")
	assert.Contains(t, body, "Play Request Accepted!")
	assert.Contains(t, body, "&lt;b&gt;Ann&lt;/b&gt; accepted")
	assert.Contains(t, body, `href="https://app.example.com/requests"`)
}
