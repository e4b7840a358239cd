package usecase

import (
	"context"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type MetricsRecorder interface {
	RecordLeadsIngested(source string, n int)
	RecordStatusTransition(from, to entity.LeadStatus)
	RecordIntegrationError(service string)
}

type nopMetrics struct{}

func (nopMetrics) RecordLeadsIngested(string, int) {}

func (nopMetrics) RecordStatusTransition(entity.LeadStatus, entity.LeadStatus) {}

func (nopMetrics) RecordIntegrationError(string) {}

func metricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

type discardPublisher struct{}

func (discardPublisher) PublishLeadEvent(context.Context, entity.LeadEvent) error { return nil }

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return discardPublisher{}
	}
	return p
}
