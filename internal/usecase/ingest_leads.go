package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

type IngestLeadsUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher EventPublisher
	Metrics   MetricsRecorder
	Log       *zap.Logger
}

func NewIngestLeadsUseCase(repo entity.LeadRepositoryInterface, publisher EventPublisher, metrics MetricsRecorder, log *zap.Logger) *IngestLeadsUseCase {
	return &IngestLeadsUseCase{
		Repo:      repo,
		Publisher: publisherOrNop(publisher),
		Metrics:   metricsOrNop(metrics),
		Log:       log,
	}
}

// Execute validates the whole batch before writing anything, then stores every
// lead as warm_lead in one transaction.
func (uc *IngestLeadsUseCase) Execute(ctx context.Context, source string, inputs []IngestLeadInput) (*IngestLeadsOutput, error) {
	if errs := ValidateBatch(inputs); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	leads := make([]*entity.Lead, 0, len(inputs))
	for _, in := range inputs {
		leads = append(leads, in.toLead())
	}

	var err error
	if len(leads) == 1 {
		err = uc.Repo.Create(ctx, leads[0])
	} else {
		err = uc.Repo.CreateBatch(ctx, leads)
	}
	if err != nil {
		uc.Log.Error("lead ingest failed", zap.String("source", source), zap.Int("count", len(leads)), zap.Error(err))
		return nil, storeError(err, "store leads")
	}

	uc.Metrics.RecordLeadsIngested(source, len(leads))
	uc.Log.Info("leads ingested", zap.String("source", source), zap.Int("count", len(leads)))

	for _, lead := range leads {
		if err := uc.Publisher.PublishLeadEvent(ctx, entity.NewLeadCreatedEvent(lead, source)); err != nil {
			// the row is committed; the event stream is best effort
			uc.Metrics.RecordIntegrationError("rabbitmq")
			uc.Log.Warn("lead created event not published", zap.Int64("lead_id", lead.ID), zap.Error(err))
		}
	}

	return &IngestLeadsOutput{Success: true, Count: len(leads), Leads: leads}, nil
}
