package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/makecom"
	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

type CountsSource interface {
	Counts(ctx context.Context) (*entity.LeadCounts, error)
}

type ScenarioTrigger interface {
	TriggerScenario(ctx context.Context, p makecom.TriggerPayload) error
}

// DailyTrigger starts the scraping agent once a day by calling the Make.com
// scenario with the current pipeline counts.
type DailyTrigger struct {
	Counts     CountsSource
	Scenario   ScenarioTrigger
	Metrics    usecase.MetricsRecorder
	DailyQuota int
	Spec       string
	Timeout    time.Duration
	Log        *zap.Logger

	cron *cron.Cron
	mu   sync.Mutex
	now  func() time.Time
}

func NewDailyTrigger(counts CountsSource, scenario ScenarioTrigger, metrics usecase.MetricsRecorder, dailyQuota int, spec string, loc *time.Location, log *zap.Logger) *DailyTrigger {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyTrigger{
		Counts:     counts,
		Scenario:   scenario,
		Metrics:    metrics,
		DailyQuota: dailyQuota,
		Spec:       spec,
		Timeout:    time.Minute,
		Log:        log,
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		now:        time.Now,
	}
}

// Start registers the job and blocks until ctx is done.
func (t *DailyTrigger) Start(ctx context.Context) error {
	id, err := t.cron.AddFunc(t.Spec, func() {
		if err := t.RunNow(ctx, "scheduled"); err != nil {
			t.Log.Error("daily trigger failed", zap.Error(err))
		}
	})
	if err != nil {
		return eris.Wrapf(err, "daily trigger: invalid schedule %q", t.Spec)
	}

	t.cron.Start()
	t.Log.Info("daily trigger scheduled",
		zap.String("spec", t.Spec),
		zap.Time("next_run", t.cron.Entry(id).Next),
	)

	<-ctx.Done()
	stopped := t.cron.Stop()
	<-stopped.Done()
	t.Log.Info("daily trigger stopped")
	return nil
}

// RunNow fires the scenario immediately. Overlapping runs are serialized.
func (t *DailyTrigger) RunNow(ctx context.Context, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	counts, err := t.Counts.Counts(ctx)
	if err != nil {
		return eris.Wrap(err, "daily trigger: load counts")
	}

	err = t.Scenario.TriggerScenario(ctx, makecom.TriggerPayload{
		Trigger:     reason,
		TriggeredAt: t.now().UTC(),
		Counts:      *counts,
		DailyQuota:  t.DailyQuota,
	})
	if err != nil {
		if t.Metrics != nil {
			t.Metrics.RecordIntegrationError("makecom")
		}
		return eris.Wrap(err, "daily trigger")
	}
	return nil
}
