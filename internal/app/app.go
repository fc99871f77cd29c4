package app

import (
	"fitnesspoint/internal/billing"
	"fitnesspoint/internal/branch"
	"fitnesspoint/internal/company"
	"fitnesspoint/internal/config"
	"fitnesspoint/internal/db"
	"fitnesspoint/internal/email"
	"fitnesspoint/internal/importer"
	"fitnesspoint/internal/member"
	"fitnesspoint/internal/plan"
	"fitnesspoint/internal/server"
	"fitnesspoint/internal/subscription"
	"fitnesspoint/internal/user"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Email         *email.Service
	Imports       *importer.Repository
	Runner        *importer.Runner
	Queue         *importer.Queue
	Subscriptions subscription.Service
	Handlers      server.Handlers
}

func New(cfg *config.Config, database *sqlx.DB, rdb *redis.Client) *App {
	tx := db.NewTransactor(database)

	members := member.NewRepository(database)
	plans := plan.NewRepository(database)
	subs := subscription.NewRepository(database)
	bills := billing.NewRepository(database)
	users := user.NewRepository(database)
	imports := importer.NewRepository(database)

	mailer := email.New(rdb, email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
	})

	pipeline := importer.NewPipeline(importer.PipelineDeps{
		Branches:      branch.NewRepository(database),
		Users:         users,
		Plans:         plans,
		Companies:     company.NewRepository(database),
		Members:       members,
		Subscriptions: subs,
		Logs:          imports,
		Tx:            tx,
	})
	runner := importer.NewRunner(imports, pipeline, mailer)
	queue := importer.NewQueue(rdb, runner)

	lifecycle := subscription.NewService(subscription.Deps{
		Subscriptions: subs,
		Plans:         plans,
		Billing:       bills,
		Members:       members,
		Notifier:      mailer,
		Tx:            tx,
		Defaults: subscription.BillingDefaults{
			RateTypeID: cfg.DefaultRateTypeID,
			TaxRateID:  cfg.DefaultTaxRateID,
			DueDays:    cfg.InvoiceDueDays,
		},
	})

	return &App{
		Email:         mailer,
		Imports:       imports,
		Runner:        runner,
		Queue:         queue,
		Subscriptions: lifecycle,
		Handlers: server.Handlers{
			Imports:       importer.NewHandler(imports, queue, cfg.ImportStorageDir),
			Subscriptions: subscription.NewHandler(lifecycle),
			Ready:         []server.Pinger{server.DBPinger(database), server.RedisPinger(rdb)},
		},
	}
}
