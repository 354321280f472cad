package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"examforge/internal/ai"
	appsvc "examforge/internal/app"
	"examforge/internal/cache"
	"examforge/internal/config"
	"examforge/internal/engine"
	"examforge/internal/model"
	mysqlClient "examforge/internal/platform/mysql"
	rabbitmqClient "examforge/internal/platform/rabbitmq"
	redisClient "examforge/internal/platform/redis"
	"examforge/internal/repository"
	"examforge/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	IngestService *appsvc.IngestService
	ExamService   *appsvc.ExamService
	AuthService   *appsvc.AuthService

	ExtractionPool   *worker.Pool
	ExtractionWorker *worker.ExtractionWorker

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
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.RawMaterial{},
		&model.Question{},
		&model.Embedding{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	materialRepo := repository.NewRawMaterialRepository(mysqlDB)
	questionRepo := repository.NewQuestionRepository(mysqlDB)
	embeddingRepo := repository.NewEmbeddingRepository(mysqlDB)
	userRepo := repository.NewUserRepository(mysqlDB)

	// One generative client per process, shared by the pipeline and the
	// exam engine.
	geminiClient := ai.NewGeminiClient(ai.GeminiConfig{
		BaseURL:        cfg.Gemini.BaseURL,
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
	})

	extractionService := appsvc.NewExtractionService(geminiClient, materialRepo, questionRepo, embeddingRepo)

	pool := worker.NewPool(cfg.Exam.ExtractionWorkers, cfg.Exam.ExtractionWorkers*2)
	extractionWorker := worker.NewExtractionWorker(
		mqConn,
		extractionService,
		pool,
		cfg.RabbitMQ.ExtractionQueue,
		time.Duration(cfg.Exam.ProcessTimeoutSec)*time.Second,
	)
	if err := extractionWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start extraction worker failed: %w", err)
	}

	publisher := rabbitmqClient.NewExtractionPublisher(mqConn, cfg.RabbitMQ.ExtractionQueue)
	ingestService := appsvc.NewIngestService(materialRepo, publisher)

	weakPoints := cache.NewWeakPointCache(redisCli, time.Duration(cfg.Exam.WeakPointTTLMinutes)*time.Minute)
	var personalization engine.PersonalizationEngine
	if cfg.Exam.PersonalizationStrategy == "static" {
		personalization = engine.NewStaticPersonalizationEngine(cfg.Exam.StaticWeakTopics)
	} else {
		personalization = engine.NewRedisPersonalizationEngine(weakPoints, 5)
	}
	examEngine := engine.NewGeminiExamEngine(geminiClient)
	accessor := engine.NewMySQLVectorAccessor(embeddingRepo, questionRepo)

	examService := appsvc.NewExamService(
		personalization,
		examEngine,
		accessor,
		geminiClient,
		weakPoints,
		appsvc.ExamServiceOptions{
			DefaultTopic: cfg.Exam.DefaultTopic,
			Difficulty:   cfg.Exam.DefaultDifficulty,
			SimilarLimit: cfg.Exam.SimilarLimit,
		},
	)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)

	return &App{
		Config:           cfg,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		IngestService:    ingestService,
		ExamService:      examService,
		AuthService:      authService,
		ExtractionPool:   pool,
		ExtractionWorker: extractionWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ExtractionWorker != nil {
		a.ExtractionWorker.Close()
	}
	if a.ExtractionPool != nil {
		a.ExtractionPool.Close()
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
