package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/cli"
	"github.com/shestoi/evstore/internal/config"
	kafkaevent "github.com/shestoi/evstore/internal/event/kafka"
	"github.com/shestoi/evstore/internal/repository"
	"github.com/shestoi/evstore/internal/repository/postgres"
	platformlogging "github.com/shestoi/evstore/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(openPostgres, watchKafka)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openPostgres подключается к той же базе, что и storefront в persistent режиме
func openPostgres(ctx context.Context) (repository.ReconciliationRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewReconciliationRepository(pool), pool.Close, nil
}

// watchKafka читает топик событий checkout до SIGINT/SIGTERM или до события, которое не удалось сохранить
func watchKafka(ctx context.Context, repo repository.ReconciliationRepository) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required for watch")
	}

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "reconcile",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return err
	}
	defer platformlogging.Sync(logger)

	logger.Info("Watching checkout events",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)

	consumer := kafkaevent.NewReconciliationConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, repo)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()
	return consumer.Start(ctx)
}
