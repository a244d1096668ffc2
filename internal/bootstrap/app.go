package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vortexkeep/internal/cache"
	"vortexkeep/internal/config"
	"vortexkeep/internal/model"
	mysqlClient "vortexkeep/internal/platform/mysql"
	rabbitmqClient "vortexkeep/internal/platform/rabbitmq"
	redisClient "vortexkeep/internal/platform/redis"
	"vortexkeep/internal/worker"
)

type App struct {
	Config             *config.Config
	MySQL              *gorm.DB
	Redis              *redis.Client
	MQConn             *amqp.Connection
	InvalidationWorker *worker.CacheInvalidationWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.TaskEventQueue)
	if err != nil {
		return nil, err
	}

	taskCache := cache.NewTaskListCache(
		redisCli,
		time.Duration(cfg.Redis.TaskTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.TaskDirtyTTLSeconds)*time.Second,
	)
	invalidationWorker := worker.NewCacheInvalidationWorker(mqConn, taskCache, cfg.RabbitMQ.TaskEventQueue)
	if err := invalidationWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start cache invalidation worker failed: %w", err)
	}

	return &App{
		Config:             cfg,
		MySQL:              mysqlDB,
		Redis:              redisCli,
		MQConn:             mqConn,
		InvalidationWorker: invalidationWorker,
		StartedAt:          time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.InvalidationWorker != nil {
		a.InvalidationWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
