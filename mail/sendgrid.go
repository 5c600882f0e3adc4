package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGridSender implements Sender using the SendGrid v3 mail send API.
// SendGrid answers 202 Accepted on success; any other status is a failure.
type SendGridSender struct {
	apiKey    string
	sender    string
	recipient string
	host      string // overridable in tests
}

// NewSendGridSender creates a sender for the given verified sender address
// and fixed recipient.
func NewSendGridSender(apiKey, sender, recipient string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	if sender == "" || recipient == "" {
		return nil, fmt.Errorf("sender and recipient addresses required")
	}

	return &SendGridSender{
		apiKey:    apiKey,
		sender:    sender,
		recipient: recipient,
		host:      sendGridHost,
	}, nil
}

// Send delivers the message via POST /v3/mail/send.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", s.sender))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", s.recipient))
	m.AddPersonalizations(p)

	// SendGrid requires text/plain content before text/html.
	m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return &SendError{Provider: "sendgrid", Err: err}
	}

	if resp.StatusCode != http.StatusAccepted {
		return &SendError{
			Provider:   "sendgrid",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrRejected, resp.Body),
		}
	}

	return nil
}
