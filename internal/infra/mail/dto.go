package mail

import "time"

type SaleClosedEmailData struct {
	LeadID       int64
	Username     string
	ProfileURL   string
	FromStatus   string
	ClosedAt     time.Time
	DashboardURL string
}

type EmailSender struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	To           []string
	DashboardURL string
}
