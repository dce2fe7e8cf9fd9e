package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkline/studio-scheduler/config"
	"github.com/inkline/studio-scheduler/internal/consumer"
	"github.com/inkline/studio-scheduler/internal/handler"
	"github.com/inkline/studio-scheduler/internal/matching"
	"github.com/inkline/studio-scheduler/internal/middleware"
	"github.com/inkline/studio-scheduler/internal/notify"
	"github.com/inkline/studio-scheduler/internal/repository"
	"github.com/inkline/studio-scheduler/internal/scheduler"
	"github.com/inkline/studio-scheduler/internal/service"
	"github.com/inkline/studio-scheduler/pkg/database"
	"github.com/inkline/studio-scheduler/pkg/logger"
	"github.com/inkline/studio-scheduler/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	// RabbitMQ: session/slot events out, slot.released back in for the waitlist
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	notifier, err := newNotifier(cfg, publisher, log)
	if err != nil {
		log.Fatal("failed to set up notifier", zap.Error(err))
	}

	// Repositories
	repos := service.Repositories{
		Tx:          repository.NewTransactor(db),
		Bookings:    repository.NewBookingRepository(db),
		Slots:       repository.NewSlotRepository(db),
		Cities:      repository.NewCityRepository(db),
		Suggestions: repository.NewSuggestionRepository(db),
		Waitlist:    repository.NewWaitlistRepository(db),
		Activity:    repository.NewActivityRepository(db),
		Sessions:    repository.NewSessionEventRepository(db),
	}

	// Services
	opts := service.Options{
		StrictPipeline:  cfg.PipelineStrict,
		CallbackBaseURL: cfg.CallbackBaseURL,
		DiscountPercent: &cfg.WaitlistDiscountPercent,
	}
	engine := matching.NewEngine(matching.Options{
		ProximityDays: cfg.MatchProximityDays,
		DefaultTime:   cfg.MatchDefaultTime,
	})
	matchSvc := service.NewMatchService(repos, engine, log)
	suggestionSvc := service.NewSuggestionService(repos, notifier, publisher, opts, log)
	pipelineSvc := service.NewPipelineService(repos, publisher, opts, log)
	waitlistSvc := service.NewWaitlistService(repos, notifier, opts, log)

	slotConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.SlotQueueName, service.RouteSlotReleased, log)
	if err != nil {
		log.Fatal("failed to connect slot consumer", zap.Error(err))
	}
	defer slotConsumer.Close()

	msgs, err := slotConsumer.Consume()
	if err != nil {
		log.Fatal("failed to start consuming", zap.Error(err))
	}
	consumer.NewSlotConsumer(waitlistSvc, log).Start(msgs)

	sweeper, err := scheduler.NewSweeper(waitlistSvc, cfg.WaitlistSweepInterval, log)
	if err != nil {
		log.Fatal("failed to create waitlist sweeper", zap.Error(err))
	}
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start waitlist sweeper", zap.Error(err))
	}
	defer sweeper.Shutdown()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "studio-scheduler"})
	})

	api := e.Group("/api/v1")
	handler.NewMatchHandler(matchSvc).RegisterRoutes(api)
	handler.NewSuggestionHandler(suggestionSvc).RegisterRoutes(api)
	handler.NewBookingHandler(pipelineSvc).RegisterRoutes(api)
	handler.NewWaitlistHandler(waitlistSvc).RegisterRoutes(api)

	go func() {
		log.Info("studio scheduler starting", zap.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newNotifier(cfg *config.Config, pub notify.Publisher, log *zap.Logger) (notify.Dispatcher, error) {
	switch cfg.Notifier {
	case "smtp":
		return notify.NewSMTPDispatcher(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case "log":
		return notify.NewLogDispatcher(log), nil
	default:
		return notify.NewAMQPDispatcher(pub), nil
	}
}
