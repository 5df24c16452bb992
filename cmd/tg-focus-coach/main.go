package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dmoreira/tg-focus-coach/pkg/bot/handlers"
	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/schedules"
	"github.com/dmoreira/tg-focus-coach/pkg/trigger"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
	"github.com/go-telegram/bot"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithDefaultHandler(handlers.DefaultHandler),
	}
	b, err := bot.New(config.AppConfig.Telegram.Token, opts...)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	sender := handlers.NewBotSender(b)
	scheduler := trigger.New(config.Location())
	tracker := window.NewTracker(nil)

	handlers.Configure(handlers.Deps{
		Scheduler: scheduler,
		Tracker:   tracker,
		Sender:    sender,
	})

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/leaderboard", bot.MatchTypeExact, handlers.HandleLeaderboard)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/pot", bot.MatchTypeExact, handlers.HandlePot)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/myschedules", bot.MatchTypeExact, handlers.HandleMySchedules)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/users", bot.MatchTypeExact, handlers.HandleUsers)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/setschedule", bot.MatchTypePrefix, handlers.HandleSetSchedule)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/removeschedule", bot.MatchTypePrefix, handlers.HandleRemoveSchedule)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/submissions", bot.MatchTypeExact, handlers.HandleSubmissions)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/debug_weekly", bot.MatchTypeExact, handlers.HandleDebugWeekly)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/debug_cycleend", bot.MatchTypeExact, handlers.HandleDebugCycleEnd)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/debug_jobs", bot.MatchTypeExact, handlers.HandleDebugJobs)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/debug_cycle", bot.MatchTypeExact, handlers.HandleDebugCycle)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "sub:", bot.MatchTypePrefix, handlers.HandleSubmissionsCallback)

	if err := schedules.SyncAll(schedules.Deps{
		Scheduler: scheduler,
		Sender:    sender,
		Tracker:   tracker,
		ChatID:    config.AppConfig.Challenge.GroupChatID,
	}); err != nil {
		logger.Error("failed to sync schedule triggers", "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	defer scheduler.Stop()
	go tracker.StartSweeper(ctx)

	logger.Info("Starting bot...")
	b.Start(ctx)
}
