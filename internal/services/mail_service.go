package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"shiftwise/pkg/utils"
)

type IMailService interface {
	SendMailToNotifyUser(ctx context.Context, to, subject, body, ctaText, ctaURL string) error
	SendMailToResetPassword(ctx context.Context, to, token string) error
}

// mailSender delivers one rendered message.
type mailSender interface {
	send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type mailService struct {
	sender     mailSender
	appName    string
	appBaseURL string
	htmlTpl    *template.Template
	textTpl    *texttemplate.Template
}

func newMailService(sender mailSender, appName, appBaseURL string) *mailService {
	return &mailService{
		sender:     sender,
		appName:    appName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		htmlTpl:    template.Must(template.New("html").Parse(baseHTMLTemplate)),
		textTpl:    texttemplate.Must(texttemplate.New("text").Parse(plainTextTemplate)),
	}
}

func (s *mailService) SendMailToNotifyUser(ctx context.Context, to, subject, body, ctaText, ctaURL string) error {
	return s.deliver(ctx, to, EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
	})
}

func (s *mailService) SendMailToResetPassword(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/accounts/reset-password?token=%s", s.appBaseURL, url.QueryEscape(token))
	return s.deliver(ctx, to, EmailData{
		Title:     "Reset your password",
		Intro:     "We received a request to reset your password. If you did not ask for this you can ignore this email.",
		ButtonURL: link,
		ButtonTxt: "Reset Password",
	})
}

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

func (s *mailService) deliver(ctx context.Context, to string, data EmailData) error {
	data.AppName = s.appName
	data.Year = time.Now().Year()

	var hb, tb bytes.Buffer
	if err := s.htmlTpl.Execute(&hb, data); err != nil {
		return err
	}
	if err := s.textTpl.Execute(&tb, data); err != nil {
		return err
	}

	if err := s.sender.send(ctx, to, data.Title, hb.String(), tb.String()); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrMailProvider, err)
	}
	return nil
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; background: #f4f6fb; font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; color: #1f2937; }
    .card { max-width: 560px; margin: 32px auto; background: #ffffff; border-radius: 12px; padding: 32px; }
    .brand { font-weight: 700; color: #2563eb; font-size: 20px; }
    .btn { display: inline-block; margin-top: 24px; padding: 12px 22px; background: #2563eb; color: #ffffff; border-radius: 8px; text-decoration: none; }
    .footer { margin-top: 32px; font-size: 12px; color: #6b7280; }
  </style>
</head>
<body>
  <div class="card">
    <div class="brand">{{.AppName}}</div>
    <h2>{{.Title}}</h2>
    <p>{{.Intro}}</p>
    {{if .ButtonURL}}<a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a>{{end}}
    <div class="footer">&copy; {{.Year}} {{.AppName}}</div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

// logMailSender is used when no mail transport is configured.
type logMailSender struct {
	logger *slog.Logger
}

func (l logMailSender) send(ctx context.Context, to, subject, _, textBody string) error {
	l.logger.InfoContext(ctx, "mail not sent, no transport configured",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(textBody)))
	return nil
}

func NewLogMailService(logger *slog.Logger, appName, appBaseURL string) IMailService {
	return newMailService(logMailSender{logger: logger}, appName, appBaseURL)
}
