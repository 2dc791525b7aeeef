package main

import (
	"context"

	"meridian/kudos_credit_ledger/configs"
	"meridian/kudos_credit_ledger/internal/app/router"
	"meridian/kudos_credit_ledger/internal/pkg/db"
	"meridian/kudos_credit_ledger/internal/pkg/kafka/producer"
	"meridian/kudos_credit_ledger/internal/pkg/logger"
	"meridian/kudos_credit_ledger/internal/pkg/otel"
	"meridian/kudos_credit_ledger/internal/pkg/redis"
	"meridian/kudos_credit_ledger/internal/pkg/utils/worker"

	goredis "github.com/redis/go-redis/v9"
)

func main() {

	err := configs.LoadEnv()
	if err != nil {
		logger.Debug("Error loading .env file: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = otel.Setup(ctx, configs.SERVICE_NAME, configs.OTEL_URL)
	if err != nil {
		logger.Error(ctx, "Error setting up OTLP: %v", err)
	}

	params, err := configs.LoadParams(configs.PARAMS_FILE)
	if err != nil {
		logger.Error(ctx, "Failed to load ledger params from %s: %v", configs.PARAMS_FILE, err)
		return
	}

	mdb, dbErr := db.NewMongoDB()
	if dbErr != nil {
		logger.Error(ctx, "Error connecting to MongoDB: %v", dbErr)
	}
	db.MDB = mdb
	if mdb != nil {
		defer mdb.Close()
	}

	var kafkaProducer *producer.Producer
	if configs.KAFKA_SERVER != "" {
		kafkaProducer, err = producer.NewKafkaProducer(configs.KAFKA_TOPIC)
		if err != nil {
			logger.Error(ctx, "failed to create Kafka Producer error: %v", err)
		} else {
			logger.Info(ctx, "Kafka Producer Created")
			producer.KafkaProducer = kafkaProducer
			defer kafkaProducer.Close()
		}
	}

	var redisConn *goredis.Client
	redisClient, err := redis.ConnectToRedis(ctx, configs.GetRedisConfig(), nil)
	if err != nil {
		logger.Error(ctx, "Failed to connect to Redis, price feed disabled: %v", err)
	} else {
		redisConn = redisClient.Client
		defer redis.Disconnect(redisConn)
	}

	workerPool := worker.NewWorkerPool(configs.WORKER_POOL)
	defer workerPool.Stop()

	r := router.SetupRouter(workerPool, redisConn, kafkaProducer, params)

	if err := r.Run(":" + configs.SERVER_PORT); err != nil {
		logger.Error(ctx, "Failed to run server: %v", err)
	}
}
