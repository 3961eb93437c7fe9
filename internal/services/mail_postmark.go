package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
	"shiftwise/internal/config"
)

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailService(cfg config.Postmark, appName, appBaseURL string) (IMailService, error) {
	if cfg.ServerToken == "" || cfg.SenderEmail == "" {
		return nil, errors.New("postmark server token and sender email are required")
	}
	sender := &postmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		from:   cfg.SenderEmail,
	}
	return newMailService(sender, appName, appBaseURL), nil
}

func (p *postmarkSender) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       p.from,
		To:         to,
		Subject:    subject,
		HTMLBody:   htmlBody,
		TextBody:   textBody,
		TrackOpens: true,
	})
	if err != nil {
		return err
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
