package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

func saleClosed() entity.LeadEvent {
	return entity.LeadEvent{
		ID:         "evt-9",
		Type:       entity.EventLeadStatusChanged,
		LeadID:     42,
		Username:   "mindful.money",
		FromStatus: entity.StatusMessageSent,
		ToStatus:   entity.StatusSaleClosed,
		OccurredAt: time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC),
	}
}

func captureNotifier(sender *EmailSender) (*Notifier, *[]*gomail.Message) {
	var sent []*gomail.Message
	n := NewNotifier(sender, zap.NewNop())
	n.send = func(m *gomail.Message) error {
		sent = append(sent, m)
		return nil
	}
	return n, &sent
}

func TestNotifier_SendsOnSaleClosed(t *testing.T) {
	sender := NewEmailSender("smtp.example.com", 587, "u", "p", "bot@example.com", []string{"team@example.com"}, "https://dash.example.com")
	n, sent := captureNotifier(sender)

	require.NoError(t, n.HandleLeadEvent(context.Background(), saleClosed()))
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, []string{"Sale closed with @mindful.money"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"team@example.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Lead #42")
	assert.Contains(t, buf.String(), "message_sent")
	assert.Contains(t, buf.String(), "https://dash.example.com")
}

func TestNotifier_IgnoresOtherEvents(t *testing.T) {
	sender := NewEmailSender("smtp.example.com", 587, "", "", "bot@example.com", []string{"team@example.com"}, "")
	n, sent := captureNotifier(sender)

	created := entity.LeadEvent{Type: entity.EventLeadCreated, LeadID: 1, ToStatus: entity.StatusWarmLead}
	messaged := saleClosed()
	messaged.ToStatus = entity.StatusMessageSent

	require.NoError(t, n.HandleLeadEvent(context.Background(), created))
	require.NoError(t, n.HandleLeadEvent(context.Background(), messaged))
	assert.Empty(t, *sent)
}

func TestNotifier_UnconfiguredOnlyLogs(t *testing.T) {
	n, sent := captureNotifier(NewEmailSender("", 587, "", "", "", nil, ""))

	require.NoError(t, n.HandleLeadEvent(context.Background(), saleClosed()))
	assert.Empty(t, *sent)
}

func TestNotifier_SendFailure(t *testing.T) {
	sender := NewEmailSender("smtp.example.com", 587, "", "", "bot@example.com", []string{"team@example.com"}, "")
	n := NewNotifier(sender, zap.NewNop())
	n.send = func(*gomail.Message) error { return errors.New("connection refused") }

	err := n.HandleLeadEvent(context.Background(), saleClosed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead 42")
}
