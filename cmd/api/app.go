package main

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/config"
	"github.com/xavierca1/outreach-dashboard/internal/infra/database"
	"github.com/xavierca1/outreach-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/makecom"
	"github.com/xavierca1/outreach-dashboard/internal/infra/queue"
	"github.com/xavierca1/outreach-dashboard/internal/infra/worker"
	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

// app holds everything the subcommands share.
type app struct {
	DB       *sql.DB
	Repo     *database.LeadRepository
	RabbitMQ *queue.RabbitMQ
	Metrics  middleware.PipelineMetrics

	Query        *usecase.PipelineQueryUseCase
	Ingest       *usecase.IngestLeadsUseCase
	UpdateStatus *usecase.UpdateLeadStatusUseCase
	UpdateNotes  *usecase.UpdateLeadNotesUseCase
	Delete       *usecase.DeleteLeadUseCase
	Seed         *usecase.SeedLeadsUseCase
	Trigger      *worker.DailyTrigger

	log *zap.Logger
}

// newApp connects to Postgres and, when configured, RabbitMQ. withBroker is
// false for one-shot commands that never publish.
func newApp(cfg *config.Config, log *zap.Logger, withBroker bool) (*app, error) {
	db, err := database.NewDBConnection(cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
		PingTimeout:     5 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Pipeline.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{DB: db, Repo: database.NewLeadRepository(db), log: log}

	var publisher usecase.EventPublisher = queue.NopProducer{Log: log}
	if withBroker && cfg.RabbitMQ.URL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.RabbitMQ = mq
		publisher = queue.NewProducer(mq.Ch, log)
	}

	a.Query = usecase.NewPipelineQueryUseCase(a.Repo, cfg.Pipeline.DailyMessageQuota, loc, log)
	a.Ingest = usecase.NewIngestLeadsUseCase(a.Repo, publisher, a.Metrics, log)
	a.UpdateStatus = usecase.NewUpdateLeadStatusUseCase(a.Repo, publisher, a.Metrics, log)
	a.UpdateNotes = usecase.NewUpdateLeadNotesUseCase(a.Repo, log)
	a.Delete = usecase.NewDeleteLeadUseCase(a.Repo, log)
	a.Seed = usecase.NewSeedLeadsUseCase(a.Ingest, log)

	scenario := makecom.NewClient(cfg.Scheduler.WebhookURL, cfg.Scheduler.APIKey, cfg.Scheduler.Timeout(), log)
	a.Trigger = worker.NewDailyTrigger(a.Query, scenario, a.Metrics, cfg.Pipeline.DailyMessageQuota, cfg.Scheduler.Spec, loc, log)
	a.Trigger.Timeout = cfg.Scheduler.Timeout() + 5*time.Second

	return a, nil
}

func (a *app) Close() {
	a.RabbitMQ.Close()
	if err := a.DB.Close(); err != nil {
		a.log.Warn("database close", zap.Error(err))
	}
}
