package internal

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	process "github.com/s-larionov/process-manager"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/config"
	"github.com/novalend/governance-storage/internal/discussion"
	"github.com/novalend/governance-storage/internal/events"
	"github.com/novalend/governance-storage/internal/metrics"
	"github.com/novalend/governance-storage/internal/notification"
	"github.com/novalend/governance-storage/internal/pricefeed"
	"github.com/novalend/governance-storage/internal/proposal"
	"github.com/novalend/governance-storage/internal/stream"
	"github.com/novalend/governance-storage/internal/vote"
	"github.com/novalend/governance-storage/pkg/health"
	"github.com/novalend/governance-storage/pkg/httpsrv"
	"github.com/novalend/governance-storage/pkg/prometheus"
	"github.com/novalend/governance-storage/pkg/sdk/coingecko"
	"github.com/novalend/governance-storage/pkg/sdk/staking"
)

type Application struct {
	sigChan <-chan os.Signal
	manager *process.Manager
	cfg     config.App
	db      *gorm.DB
	nc      *nats.Conn

	pub *events.Publisher

	proposals     *proposal.Service
	votes         *vote.Service
	discussions   *discussion.Service
	notifications *notification.Service
	prices        *pricefeed.Service
	hub           *stream.Hub
}

func NewApplication(cfg config.App) (*Application, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a := &Application{
		sigChan: sigChan,
		cfg:     cfg,
		manager: process.NewManager(),
	}

	err := a.bootstrap()
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Application) Run() {
	a.manager.StartAll()
	a.registerShutdown()
}

func (a *Application) bootstrap() error {
	initializers := []func() error{
		a.initDB,
		a.initNats,

		// Init Dependencies
		a.initServices,

		// Init Workers: Application
		a.initAPI,
		a.initStream,
		a.initScheduler,
		a.initPriceFeed,

		// Init Workers: System
		a.initPrometheusWorker,
		a.initHealthWorker,
	}

	for _, initializer := range initializers {
		if err := initializer(); err != nil {
			return err
		}
	}

	return nil
}

func (a *Application) initDB() error {
	db, err := gorm.Open(postgres.Open(a.cfg.DB.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	ps, err := db.DB()
	if err != nil {
		return err
	}
	ps.SetMaxOpenConns(a.cfg.DB.MaxOpenConnections)

	a.db = db
	if a.cfg.DB.Debug {
		a.db = db.Debug()
	}

	return a.db.AutoMigrate(
		&proposal.Proposal{},
		&proposal.Document{},
		&proposal.AISummary{},
		&proposal.AIRequest{},
		&vote.Vote{},
		&discussion.Discussion{},
		&notification.Notification{},
	)
}

func (a *Application) initNats() error {
	nc, err := nats.Connect(
		a.cfg.Nats.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(a.cfg.Nats.MaxReconnects),
		nats.ReconnectWait(a.cfg.Nats.ReconnectTimeout),
	)
	if err != nil {
		return err
	}

	a.nc = nc
	a.pub = events.NewPublisher(nc)

	return nil
}

func (a *Application) initServices() error {
	powerClient := staking.NewClient(a.cfg.Staking.BaseURL, &http.Client{
		Transport: metrics.NewRequestWatcher("staking"),
	})

	voteRepo := vote.NewRepo(a.db)
	discussionRepo := discussion.NewRepo(a.db)
	notificationRepo := notification.NewRepo(a.db)
	proposalRepo := proposal.NewRepo(a.db)

	a.notifications = notification.NewService(notificationRepo, voteRepo, discussionRepo, a.pub)

	var aiClient *proposal.AIClient
	if a.cfg.AI.Enabled {
		aiClient = proposal.NewAIClient(a.cfg.AI.APIKey)
	}

	a.proposals = proposal.NewService(
		proposalRepo,
		powerClient,
		a.notifications,
		a.pub,
		a.cfg.Governance.MinProposerPower,
		aiClient,
		a.cfg.AI.MonthlyRateLimit,
	)

	a.votes = vote.NewService(voteRepo, a.proposals, powerClient, a.pub)
	a.discussions = discussion.NewService(discussionRepo, a.proposals, a.pub)

	priceClient := coingecko.NewClient(a.cfg.PriceFeed.BaseURL, &http.Client{
		Transport: metrics.NewRequestWatcher("coingecko"),
	})
	a.prices = pricefeed.NewService(priceClient)

	a.hub = stream.NewHub(a.nc)

	return nil
}

func (a *Application) initAPI() error {
	router := mux.NewRouter()

	proposal.NewServer(a.proposals).Register(router)
	vote.NewServer(a.votes).Register(router)
	discussion.NewServer(a.discussions).Register(router)
	notification.NewServer(a.notifications).Register(router)
	pricefeed.NewServer(a.prices).Register(router)
	stream.NewServer(a.hub).Register(router)

	srv := httpsrv.NewServer(a.cfg.API.Bind, router)
	a.manager.AddWorker(process.NewServerWorker("API", srv))

	return nil
}

func (a *Application) initStream() error {
	a.manager.AddWorker(process.NewCallbackWorker("stream hub", a.hub.Start))

	return nil
}

func (a *Application) initScheduler() error {
	scheduler := proposal.NewScheduler(
		a.proposals,
		a.cfg.Governance.SweepSchedule,
		a.cfg.Governance.DeadlineWindow,
	)
	a.manager.AddWorker(process.NewCallbackWorker("proposal scheduler", scheduler.Start))

	return nil
}

func (a *Application) initPriceFeed() error {
	worker := pricefeed.NewWorker(a.prices, a.cfg.PriceFeed.PollInterval)
	a.manager.AddWorker(process.NewCallbackWorker("price feed", worker.Start))

	return nil
}

func (a *Application) initPrometheusWorker() error {
	srv := prometheus.NewServer(a.cfg.Prometheus.Listen, "/metrics")
	a.manager.AddWorker(process.NewServerWorker("prometheus", srv))

	return nil
}

func (a *Application) initHealthWorker() error {
	srv := health.NewHealthCheckServer(a.cfg.Health.Listen, "/status", health.DefaultHandler(a.manager))
	a.manager.AddWorker(process.NewServerWorker("health", srv))

	return nil
}

func (a *Application) registerShutdown() {
	go func(manager *process.Manager) {
		<-a.sigChan

		manager.StopAll()
	}(a.manager)

	a.manager.AwaitAll()
}
