package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"tutor-service/configs"
	"tutor-service/internal/db"
	"tutor-service/internal/event"
	"tutor-service/internal/handlers"
	"tutor-service/internal/repository"
	"tutor-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configs.LoadConfig()
	cfg := configs.AppConfig

	gin.SetMode(cfg.GinMode)
	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDatabase)

	// Redis session cache (optional)
	var cache *repository.SessionCache
	if cfg.RedisAddr != "" {
		redisDB, _ := strconv.Atoi(cfg.RedisDB)
		ttlMinutes, _ := strconv.Atoi(cfg.SessionCacheTTL)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       redisDB,
		})
		cache = repository.NewSessionCache(client, time.Duration(ttlMinutes)*time.Minute)
	} else {
		log.Println("Redis not configured, session cache disabled")
	}

	// RabbitMQ event publisher (optional)
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	sessionRepo := repository.NewSessionRepository(database)
	sessionService := service.NewSessionService(sessionRepo, cache)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Protected routes mutate session state and require a user id.
	protected := r.Group("/protected/tutor/session")
	protected.Use(requireUserID())
	{
		protected.POST("/", func(c *gin.Context) {
			sessionHandler.CreateSession(c)
			if c.Writer.Status() == http.StatusCreated {
				publisher.Publish("tutor.session.created", gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		protected.POST("/:id/diagnostic", func(c *gin.Context) {
			sessionHandler.SubmitDiagnostic(c)
			if c.Writer.Status() == http.StatusOK {
				publisher.Publish("tutor.diagnostic.graded", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})
		protected.POST("/:id/exercise", func(c *gin.Context) {
			sessionHandler.SubmitExercise(c)
			if c.Writer.Status() == http.StatusOK {
				publisher.Publish("tutor.exercise.graded", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})
	}

	// Public routes are read-only projections.
	public := r.Group("/public/tutor/session")
	{
		public.GET("/:id", sessionHandler.GetSession)
		public.GET("/:id/progress", sessionHandler.GetProgress)
		public.GET("/:id/weakness-profile", sessionHandler.GetWeaknessProfile)
	}

	r.Run(":" + cfg.Port)
}

func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
