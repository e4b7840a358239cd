package usecase

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

type UpdateLeadStatusUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher EventPublisher
	Metrics   MetricsRecorder
	Log       *zap.Logger
}

func NewUpdateLeadStatusUseCase(repo entity.LeadRepositoryInterface, publisher EventPublisher, metrics MetricsRecorder, log *zap.Logger) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{
		Repo:      repo,
		Publisher: publisherOrNop(publisher),
		Metrics:   metricsOrNop(metrics),
		Log:       log,
	}
}

// Execute moves a lead along the pipeline. The status literal is checked here;
// the transition itself is enforced atomically by the store.
func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {
	to, ok := entity.ParseLeadStatus(input.Status)
	if !ok {
		return nil, invalidStatusError(input.Status)
	}

	lead, from, err := uc.Repo.UpdateStatus(ctx, input.ID, to, input.Notes)
	if err != nil {
		de := storeError(err, "update lead status")
		if IsTechnicalError(de) {
			uc.Log.Error("status update failed", zap.Int64("lead_id", input.ID), zap.String("to", string(to)), zap.Error(err))
		}
		return nil, de
	}

	uc.Metrics.RecordStatusTransition(from, to)
	uc.Log.Info("lead status changed",
		zap.Int64("lead_id", lead.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("messages_sent", lead.MessagesSent),
	)

	if err := uc.Publisher.PublishLeadEvent(ctx, entity.NewStatusChangedEvent(lead, from)); err != nil {
		uc.Metrics.RecordIntegrationError("rabbitmq")
		uc.Log.Warn("status changed event not published", zap.Int64("lead_id", lead.ID), zap.Error(err))
	}

	return lead, nil
}

type UpdateLeadNotesUseCase struct {
	Repo entity.LeadRepositoryInterface
	Log  *zap.Logger
}

func NewUpdateLeadNotesUseCase(repo entity.LeadRepositoryInterface, log *zap.Logger) *UpdateLeadNotesUseCase {
	return &UpdateLeadNotesUseCase{Repo: repo, Log: log}
}

// Execute overwrites the notes field; status and date_added are untouched.
func (uc *UpdateLeadNotesUseCase) Execute(ctx context.Context, input UpdateLeadNotesInput) (*entity.Lead, error) {
	if input.Notes == nil {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "notes is required",
			Status:  http.StatusBadRequest,
			Fields:  []ValidationError{{Field: "notes", Message: "is required"}},
		}
	}

	lead, err := uc.Repo.UpdateNotes(ctx, input.ID, *input.Notes)
	if err != nil {
		de := storeError(err, "update lead notes")
		if IsTechnicalError(de) {
			uc.Log.Error("notes update failed", zap.Int64("lead_id", input.ID), zap.Error(err))
		}
		return nil, de
	}
	return lead, nil
}

type DeleteLeadUseCase struct {
	Repo entity.LeadRepositoryInterface
	Log  *zap.Logger
}

func NewDeleteLeadUseCase(repo entity.LeadRepositoryInterface, log *zap.Logger) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Repo: repo, Log: log}
}

func (uc *DeleteLeadUseCase) Execute(ctx context.Context, id int64) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		de := storeError(err, "delete lead")
		if IsTechnicalError(de) {
			uc.Log.Error("lead delete failed", zap.Int64("lead_id", id), zap.Error(err))
		}
		return de
	}
	uc.Log.Info("lead deleted", zap.Int64("lead_id", id))
	return nil
}
