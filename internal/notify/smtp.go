package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPDispatcher struct {
	client *mail.Client
	from   string
}

func NewSMTPDispatcher(cfg SMTPConfig) (*SMTPDispatcher, error) {
	c, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPDispatcher{client: c, from: cfg.From}, nil
}

func (d *SMTPDispatcher) Send(ctx context.Context, kind Kind, recipient string, payload Payload) error {
	subject, body, err := render(kind, payload)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return d.client.DialAndSendWithContext(ctx, msg)
}

var templates = map[Kind]struct {
	subject string
	body    *template.Template
}{
	KindSuggestionProposal: {
		subject: "Your session date: {{.city}} on {{.date}}",
		body: template.Must(template.New("proposal").Parse(`Hi {{.client_name}},

We have an opening for your tattoo session in {{.city}} on {{.date}} at {{.time}}.

Confirm this date: {{.confirm_url}}
Ask for another date: {{.decline_url}}
`)),
	},
	KindWaitlistOffer: {
		subject: "A spot just opened up",
		body: template.Must(template.New("offer").Parse(`Hi {{.client_name}},

A session opened up{{if .city}} in {{.city}}{{end}}{{if .date}} on {{.date}}{{end}}. Book it in the next few days and take {{.discount_percent}}% off.
`)),
	},
}

func render(kind Kind, payload Payload) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no email template for %q", kind)
	}

	subject, err := template.New("subject").Parse(tpl.subject)
	if err != nil {
		return "", "", err
	}
	var s, b bytes.Buffer
	if err := subject.Execute(&s, map[string]any(payload)); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&b, map[string]any(payload)); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return s.String(), b.String(), nil
}
