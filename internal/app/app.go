package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/haneulbot/scrim-queue/internal/config"
	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/domain/queue"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/chat/discord"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/repository/memory"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/repository/postgres"
	"github.com/haneulbot/scrim-queue/internal/interfaces/httpapi"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
	"github.com/haneulbot/scrim-queue/internal/platform/resilience"
	"github.com/haneulbot/scrim-queue/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned shutdown function releases the worker pool and the database
// handle; call it after the server has stopped serving.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		memberRepo member.Repository
		queueRepo  queue.Repository
		closeDB    = func() error { return nil }
	)
	if cfg.DBURL != "" {
		db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		memberRepo = postgres.NewMemberRepository(db)
		queueRepo = postgres.NewQueueRepository(db)
		closeDB = db.Close
		logger.Info("using postgres repositories", "db", dbNameFromURL(cfg.DBURL))
	} else {
		memberRepo = memory.NewMemberRepository(nil)
		queueRepo = memory.NewQueueRepository()
		logger.Warn("DB_URL is empty, using in-memory repositories")
	}

	var (
		notifier   usecase.Notifier
		membership usecase.Membership
	)
	if cfg.DiscordEnabled {
		client := discord.NewClient(discord.ClientConfig{
			BaseURL: cfg.DiscordBaseURL,
			Token:   cfg.DiscordToken,
			GuildID: cfg.DiscordGuildID,
			Timeout: cfg.DiscordTimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.DiscordCircuitEnabled,
				FailureThreshold: cfg.DiscordCircuitFailureCount,
				OpenTimeout:      cfg.DiscordCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.DiscordCircuitHalfOpenMaxReq,
			},
		})
		notifier = client
		membership = client
	} else {
		notifier = logOnlyNotifier{logger: logger}
		membership = everyoneLiveMembership{}
		logger.Warn("discord disabled, notifications are log-only and all members count as live")
	}

	memberSvc := usecase.NewMemberService(memberRepo, logger)
	queueSvc := usecase.NewQueueService(memberRepo, queueRepo, logger)
	rankingSvc := usecase.NewRankingService(memberRepo, queueRepo, membership, cfg.FrontGroupSize, logger)
	sessionSvc := usecase.NewSessionService(memberRepo, queueRepo, rankingSvc, notifier, logger)
	pointsSvc := usecase.NewPointsService(memberRepo, logger)

	priorityJobs, err := usecase.NewPriorityJobs(rankingSvc, notifier, logger, cfg.PriorityJobWorkers)
	if err != nil {
		_ = closeDB()
		return nil, nil, fmt.Errorf("build priority jobs: %w", err)
	}

	handler := httpapi.NewHandler(memberSvc, queueSvc, rankingSvc, sessionSvc, pointsSvc, priorityJobs, logger)
	router := httpapi.NewRouter(handler, logger, cfg.AdminAPIToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		priorityJobs.Close()
		_ = closeDB()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	shutdown := func(context.Context) error {
		priorityJobs.Close()
		return closeDB()
	}

	return server, shutdown, nil
}
