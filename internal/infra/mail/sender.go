package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var saleClosedTmpl = template.Must(template.ParseFS(templateFS, "templates/sale_closed.html"))

// Notifier emails the team when a lead reaches sale_closed. It is registered
// as a handler on the lead event worker.
type Notifier struct {
	Sender *EmailSender
	Log    *zap.Logger
	send   func(*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string, to []string, dashboardURL string) *EmailSender {
	return &EmailSender{
		Host:         host,
		Port:         port,
		User:         user,
		Password:     password,
		From:         from,
		To:           to,
		DashboardURL: dashboardURL,
	}
}

func (s *EmailSender) Configured() bool {
	return s != nil && s.Host != "" && len(s.To) > 0
}

func NewNotifier(sender *EmailSender, log *zap.Logger) *Notifier {
	n := &Notifier{Sender: sender, Log: log}
	n.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(sender.Host, sender.Port, sender.User, sender.Password)
		return d.DialAndSend(m)
	}
	return n
}

func (n *Notifier) HandleLeadEvent(_ context.Context, event entity.LeadEvent) error {
	if event.Type != entity.EventLeadStatusChanged || event.ToStatus != entity.StatusSaleClosed {
		return nil
	}
	if !n.Sender.Configured() {
		n.Log.Info("sale closed, mail not configured",
			zap.Int64("lead_id", event.LeadID),
			zap.String("username", event.Username),
		)
		return nil
	}

	m, err := n.saleClosedMessage(event)
	if err != nil {
		return err
	}
	if err := n.send(m); err != nil {
		return eris.Wrapf(err, "mail: send sale closed notice for lead %d", event.LeadID)
	}

	n.Log.Info("sale closed notice sent", zap.Int64("lead_id", event.LeadID), zap.Strings("to", n.Sender.To))
	return nil
}

func (n *Notifier) saleClosedMessage(event entity.LeadEvent) (*gomail.Message, error) {
	data := SaleClosedEmailData{
		LeadID:       event.LeadID,
		Username:     event.Username,
		ProfileURL:   "https://www.instagram.com/" + event.Username + "/",
		FromStatus:   string(event.FromStatus),
		ClosedAt:     event.OccurredAt,
		DashboardURL: n.Sender.DashboardURL,
	}

	var body bytes.Buffer
	if err := saleClosedTmpl.Execute(&body, data); err != nil {
		return nil, eris.Wrap(err, "mail: render sale closed template")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.Sender.From)
	m.SetHeader("To", n.Sender.To...)
	m.SetHeader("Subject", fmt.Sprintf("Sale closed with @%s", event.Username))
	m.SetBody("text/html", body.String())
	return m, nil
}
