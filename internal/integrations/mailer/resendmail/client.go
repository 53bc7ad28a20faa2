package resendmail

import (
	"context"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
)

type Config struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client sends shipment emails through Resend. A disabled client (no API key
// or Enabled=false) skips delivery and reports SendResult.Skipped.
type Client struct {
	emails  emailSender
	enabled bool
	from    string
	replyTo string
	log     *logger.Logger
}

var _ mailer.Mailer = (*Client)(nil)

func New(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Client{log: log}
	}
	return newWithSender(resend.NewClient(cfg.APIKey).Emails, cfg, log)
}

func newWithSender(s emailSender, cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		emails:  s,
		enabled: true,
		from:    cfg.FromAddress,
		replyTo: cfg.ReplyTo,
		log:     log,
	}
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) SendStatusEmail(ctx context.Context, email mailer.StatusEmail) (*mailer.SendResult, error) {
	r, err := mailer.RenderStatus(email)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, email.To, r)
}

func (c *Client) SendDriverAssignmentEmail(ctx context.Context, email mailer.DriverAssignmentEmail) (*mailer.SendResult, error) {
	r, err := mailer.RenderDriverAssignment(email)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, email.To, r)
}

func (c *Client) send(ctx context.Context, to string, r *mailer.Rendered) (*mailer.SendResult, error) {
	if to == "" {
		return nil, errors.New("send email: empty recipient")
	}
	if !c.enabled {
		c.log.Warnw("email client is disabled, skipping email send",
			"to", to,
			"subject", r.Subject,
		)
		return &mailer.SendResult{Skipped: true}, nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: r.Subject,
		Html:    r.HTML,
		Text:    r.Text,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	sent, err := c.emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "resend send")
	}

	c.log.Infow("email sent",
		"message_id", sent.Id,
		"to", to,
		"subject", r.Subject,
	)
	return &mailer.SendResult{MessageID: sent.Id}, nil
}
