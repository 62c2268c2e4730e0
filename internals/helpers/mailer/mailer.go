// file: internals/helpers/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"schoolhub_backend/internals/configs"
)

type Message struct {
	ToName    string
	ToEmail   string
	Subject   string
	PlainText string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New: SendGrid kalau SENDGRID_API_KEY ada, selain itu cukup di-log.
func New() Mailer {
	key := strings.TrimSpace(configs.GetEnv("SENDGRID_API_KEY"))
	if key == "" {
		log.Println("⚠️ SENDGRID_API_KEY kosong, email hanya dicatat di log")
		return LogMailer{}
	}
	return &SendGridMailer{
		APIKey:   key,
		FromName: configs.AppName,
		From:     configs.EmailFrom,
		Host:     "https://api.sendgrid.com",
	}
}

/* ===============================
   SendGrid
=================================*/

type SendGridMailer struct {
	APIKey   string
	FromName string
	From     string
	Host     string
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return errors.New("alamat email tujuan kosong")
	}

	mail := sgmail.NewV3Mail()
	mail.SetFrom(sgmail.NewEmail(m.FromName, m.From))
	mail.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))
	mail.AddPersonalizations(p)

	if msg.PlainText != "" {
		mail.AddContent(sgmail.NewContent("text/plain", msg.PlainText))
	}
	if msg.HTML != "" {
		mail.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	req := sendgrid.GetRequest(m.APIKey, "/v3/mail/send", m.Host)
	req.Method = "POST"
	req.Body = sgmail.GetRequestBody(mail)

	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	log.Printf("[MAIL] terkirim ke %s (%s)", msg.ToEmail, msg.Subject)
	return nil
}

/* ===============================
   Log only (dev / tanpa API key)
=================================*/

type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("[MAIL] (dry-run) to=%s subject=%q", msg.ToEmail, msg.Subject)
	return nil
}
