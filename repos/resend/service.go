package resend

import (
	"context"
	"errors"
	"fmt"
	"html"

	resend "github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
)

var ErrNotConfigured = errors.New("resend: no API key configured")

// Service sends transactional e-mail through Resend.
type Service struct {
	resendClient *resend.Client
	from         string
	hostURL      string
}

// NewService returns a mailer. An empty key yields a service that reports
// ErrNotConfigured.
func NewService(resendKey, from, hostURL string) *Service {
	s := &Service{from: from, hostURL: hostURL}
	if resendKey != "" {
		s.resendClient = resend.NewClient(resendKey)
	}
	return s
}

func (s *Service) Configured() bool {
	return s.resendClient != nil
}

func (s *Service) SendMail(ctx context.Context, mail Mail) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{mail.To},
		Subject: mail.Subject,
		Html:    getEmailTemplate(mail.Title, mail.Message, s.hostURL+mail.Path),
	}

	sent, err := s.resendClient.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.WithError(err).WithField("subject", mail.Subject).Error("Failed to send mail request")
		return fmt.Errorf("send mail: %w", err)
	}
	log.WithField("id", sent.Id).Debug("mail sent")
	return nil
}

func getEmailTemplate(title, message, url string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
        .button {
            display: block;
            width: 200px;
            height: 50px;
            margin: 20px auto;
            background-color: #16a34a;
            color: #ffffff;
            font-size: 16px;
            text-align: center;
            line-height: 50px;
            text-decoration: none;
            border-radius: 5px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>%s</h2>
        <p>%s</p>
        <a href="%s" class="button">Open PlayMatch</a>
        <p>See you on the court,<br>PlayMatch</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message), html.EscapeString(url))
}
