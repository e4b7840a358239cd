package usecase

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

const MaxListLimit = 1000

// PipelineQueryUseCase groups the read side of the dashboard.
type PipelineQueryUseCase struct {
	Repo       entity.LeadRepositoryInterface
	DailyQuota int
	Location   *time.Location
	Now        func() time.Time
	Log        *zap.Logger
}

func NewPipelineQueryUseCase(repo entity.LeadRepositoryInterface, dailyQuota int, loc *time.Location, log *zap.Logger) *PipelineQueryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &PipelineQueryUseCase{
		Repo:       repo,
		DailyQuota: dailyQuota,
		Location:   loc,
		Now:        time.Now,
		Log:        log,
	}
}

func (uc *PipelineQueryUseCase) List(ctx context.Context, input ListLeadsInput) ([]*entity.Lead, error) {
	filter, err := parseListInput(input)
	if err != nil {
		return nil, err
	}

	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		uc.Log.Error("list leads failed", zap.Error(err))
		return nil, storeError(err, "list leads")
	}
	return leads, nil
}

func parseListInput(input ListLeadsInput) (entity.LeadFilter, error) {
	filter := entity.LeadFilter{Order: entity.SortNewestFirst}

	if raw := strings.TrimSpace(input.Status); raw != "" && raw != "all" {
		status, ok := entity.ParseLeadStatus(raw)
		if !ok {
			return filter, invalidStatusError(raw)
		}
		filter.Status = &status
	}

	if raw := strings.TrimSpace(input.Limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			return filter, &DomainError{
				Code:    CodeInvalidLimit,
				Message: "limit must be an integer between 1 and " + strconv.Itoa(MaxListLimit),
				Status:  http.StatusBadRequest,
			}
		}
		filter.Limit = n
	}

	switch strings.ToLower(strings.TrimSpace(input.Order)) {
	case "", "desc":
	case "asc":
		filter.Order = entity.SortOldestFirst
	default:
		return filter, &DomainError{Code: CodeInvalidOrder, Message: "order must be asc or desc", Status: http.StatusBadRequest}
	}

	return filter, nil
}

func (uc *PipelineQueryUseCase) Get(ctx context.Context, id int64) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.fail(err, "load lead")
	}
	return lead, nil
}

// NextWarm returns the oldest lead still waiting for outreach.
func (uc *PipelineQueryUseCase) NextWarm(ctx context.Context) (*entity.Lead, error) {
	lead, err := uc.Repo.NextWarm(ctx)
	if err != nil {
		return nil, uc.fail(err, "load next warm lead")
	}
	return lead, nil
}

func (uc *PipelineQueryUseCase) Counts(ctx context.Context) (*entity.LeadCounts, error) {
	counts, err := uc.Repo.CountsByStatus(ctx)
	if err != nil {
		return nil, uc.fail(err, "count leads")
	}
	if counts == nil {
		counts = &entity.LeadCounts{}
	}
	return counts, nil
}

// Quota reports today's outreach progress against the configured daily quota.
// "Today" starts at local midnight in the configured location.
func (uc *PipelineQueryUseCase) Quota(ctx context.Context) (*QuotaOutput, error) {
	now := uc.Now().In(uc.Location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.Location)

	sent, err := uc.Repo.CountMessagedSince(ctx, midnight)
	if err != nil {
		return nil, uc.fail(err, "count messages sent today")
	}

	return buildQuota(sent, uc.DailyQuota), nil
}

func buildQuota(sent, quota int) *QuotaOutput {
	out := &QuotaOutput{SentToday: sent, DailyQuota: quota}
	if quota <= 0 {
		return out
	}

	out.Remaining = max(quota-sent, 0)
	pct := float64(sent) / float64(quota) * 100
	out.ProgressPercent = math.Round(math.Min(pct, 100)*10) / 10
	return out
}

func (uc *PipelineQueryUseCase) fail(err error, op string) error {
	de := storeError(err, op)
	if IsTechnicalError(de) {
		uc.Log.Error(op+" failed", zap.Error(err))
	}
	return de
}
