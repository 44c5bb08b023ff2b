package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/foliodoc/collabdoc/config"
	"github.com/foliodoc/collabdoc/internal/cache"
	"github.com/foliodoc/collabdoc/internal/collab"
	"github.com/foliodoc/collabdoc/internal/httpapi/handlers"
	"github.com/foliodoc/collabdoc/internal/httpapi/middleware"
	"github.com/foliodoc/collabdoc/internal/store"
	"github.com/foliodoc/collabdoc/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("init config failed: %v", err)
	}
	log.Printf("config: %+v", cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	db, err := sql.Open("mysql", cfg.Mysql.DSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer db.Close()

	gormDB, err := store.InitMySQL(cfg.Mysql.DSN)
	if err != nil {
		log.Fatalf("open gorm mysql: %v", err)
	}
	revisionStore, err := store.NewRevisionStore(gormDB)
	if err != nil {
		log.Fatalf("migrate revision store: %v", err)
	}

	kafkaCfg := sarama.NewConfig()
	kafkaCfg.Producer.Return.Successes = true
	kafkaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, kafkaCfg)
	if err != nil {
		log.Fatalf("connect kafka: %v", err)
	}
	defer producer.Close()

	presenceCache := cache.NewRedisPresence(rdb)
	hub := ws.NewHub(presenceCache)

	snapshotStore := store.NewSnapshotStore(db)
	documentStore := store.NewDocumentStore(db)
	userStore := store.NewUserStore(db)

	kafkaSem := collab.NewSemaphoreControl()
	wsSem := collab.NewSemaphoreControl()

	dispatcher := collab.NewKafkaDispatcher(
		producer,
		cfg.Kafka.Topic,
		kafkaSem,
		collab.KafkaDispatcherOptions{
			QueueSize:   10_000,
			Workers:     4,
			MaxRetry:    3,
			BaseBackoff: 50 * time.Millisecond,
			MaxBackoff:  time.Second,
		},
	)

	svc := collab.NewInMemoryService(snapshotStore, documentStore, userStore, revisionStore, dispatcher)
	manager := ws.NewManager(hub, svc, wsSem)

	docHandlers := handlers.NewDocuments(svc)
	authHandlers := handlers.NewAuth(userStore)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "docId"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1 := r.Group("/v1")
	v1.POST("/auth/login", authHandlers.Login)
	v1.POST("/auth/register", authHandlers.Register)
	v1.POST("/auth/refresh", authHandlers.Refresh)

	docs := v1.Group("/documents")
	docs.Use(middleware.AuthMiddleware())
	docs.POST("", docHandlers.Create)
	docs.GET("/:documentID", docHandlers.Get)

	collabGroup := r.Group("/collab")
	collabGroup.Use(middleware.AuthMiddleware())
	collabGroup.GET("/ws", manager.WebSocketConnect)

	r.GET("/healthz", docHandlers.Health)

	_ = r.Run(fmt.Sprintf(":%d", cfg.Running.Port))
}
