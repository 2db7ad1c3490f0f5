package mail

import (
	"context"
	"fmt"

	"github.com/tranaskommun/tranas-forms/internal/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends through a single SMTP account.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	mm := gomail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(gomail.TypeTextPlain, msg.Body)
	for _, path := range msg.Attachments {
		mm.AttachFile(path)
	}

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
