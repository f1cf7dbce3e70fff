package di

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/admin"
	cleanupService "github.com/mkorobov/daily-topic-bot/internal/modules/cleanup/service"
	greetingRepo "github.com/mkorobov/daily-topic-bot/internal/modules/greeting/repository"
	greetingService "github.com/mkorobov/daily-topic-bot/internal/modules/greeting/service"
	moderationService "github.com/mkorobov/daily-topic-bot/internal/modules/moderation/service"
	topicRepo "github.com/mkorobov/daily-topic-bot/internal/modules/topic/repository"
	topicService "github.com/mkorobov/daily-topic-bot/internal/modules/topic/service"
	"github.com/mkorobov/daily-topic-bot/internal/scheduler"
	"github.com/mkorobov/daily-topic-bot/internal/shared/config"
	httpServer "github.com/mkorobov/daily-topic-bot/internal/transport/http"
	telegramHandler "github.com/mkorobov/daily-topic-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"log/slog"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Topic Repository
	do.Provide(injector, func(i do.Injector) (topicRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := topicRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize topic repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Greeting Repository
	do.Provide(injector, func(i do.Injector) (greetingRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := greetingRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize greeting repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Chat Gateway (bot client attached in the Bot provider)
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Gateway, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return telegramHandler.NewGateway(cfg.GatewayTimeout()), nil
	})
	do.Provide(injector, func(i do.Injector) (chat.Gateway, error) {
		return do.MustInvoke[*telegramHandler.Gateway](i), nil
	})

	// Register Admin Cache
	do.Provide(injector, func(i do.Injector) (*admin.Cache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		gw := do.MustInvoke[chat.Gateway](i)
		return admin.NewCache(gw, cfg.AdminCacheTTL()), nil
	})

	// Register Topic Service
	do.Provide(injector, func(i do.Injector) (*topicService.Service, error) {
		topics := do.MustInvoke[topicRepo.Repository](i)
		greetings := do.MustInvoke[greetingRepo.Repository](i)
		return topicService.New(topics, greetings), nil
	})

	// Register Greeting Service
	do.Provide(injector, func(i do.Injector) (*greetingService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		greetings := do.MustInvoke[greetingRepo.Repository](i)
		topics := do.MustInvoke[topicRepo.Repository](i)
		gw := do.MustInvoke[chat.Gateway](i)
		svc, err := greetingService.New(greetings, topics, gw, cfg.Location())
		if err != nil {
			return nil, oops.With("context", "failed to initialize greeting service").Wrap(err)
		}
		return svc, nil
	})

	// Register Cleanup Service
	do.Provide(injector, func(i do.Injector) (*cleanupService.Service, error) {
		gw := do.MustInvoke[chat.Gateway](i)
		admins := do.MustInvoke[*admin.Cache](i)
		return cleanupService.New(gw, admins), nil
	})

	// Register Moderation Service
	do.Provide(injector, func(i do.Injector) (*moderationService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		topics := do.MustInvoke[topicRepo.Repository](i)
		gw := do.MustInvoke[chat.Gateway](i)
		admins := do.MustInvoke[*admin.Cache](i)
		collector := do.MustInvoke[*cleanupService.Service](i)
		return moderationService.New(topics, gw, admins, collector, cfg.Location()), nil
	})

	// Register Scheduler
	do.Provide(injector, func(i do.Injector) (*scheduler.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return scheduler.New(cfg.Location()), nil
	})

	// Register Job Set
	do.Provide(injector, func(i do.Injector) (*scheduler.JobSet, error) {
		sched := do.MustInvoke[*scheduler.Scheduler](i)
		greetings := do.MustInvoke[*greetingService.Service](i)
		cleanup := do.MustInvoke[*cleanupService.Service](i)
		topics := do.MustInvoke[topicRepo.Repository](i)
		return scheduler.NewJobSet(sched, greetings, cleanup, topics), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		gw := do.MustInvoke[chat.Gateway](i)
		topics := do.MustInvoke[*topicService.Service](i)
		moderation := do.MustInvoke[*moderationService.Service](i)
		jobs := do.MustInvoke[*scheduler.JobSet](i)
		return telegramHandler.New(gw, topics, moderation, jobs), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		topics := do.MustInvoke[*topicService.Service](i)
		cleanup := do.MustInvoke[*cleanupService.Service](i)
		server := httpServer.New(cfg, topics, cleanup)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		// Attach bot client to the gateway
		gw := do.MustInvoke[*telegramHandler.Gateway](i)
		gw.SetBot(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	// Stop the scheduler, waiting for in-flight jobs
	if sched, err := do.Invoke[*scheduler.Scheduler](injector); err == nil && sched != nil {
		sched.Stop()
	}

	return nil
}
