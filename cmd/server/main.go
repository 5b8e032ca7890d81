package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/secrethelper/api/internal/client"
	"github.com/secrethelper/api/internal/config"
	"github.com/secrethelper/api/internal/handler"
	"github.com/secrethelper/api/internal/helper"
	"github.com/secrethelper/api/internal/lyrics"
	"github.com/secrethelper/api/internal/middleware"
	"github.com/secrethelper/api/internal/orchestrator"
	"github.com/secrethelper/api/internal/service"
	"github.com/secrethelper/api/internal/worker"
	ws "github.com/secrethelper/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqRedis := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(asynqRedis)
	defer asynqClient.Close()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	ollamaClient := client.NewOllamaClient(&cfg.Ollama)
	musicClient := client.NewMusicClient(&cfg.Music)
	vocalClient := client.NewVocalClient(&cfg.Vocal)
	mixerClient := client.NewMixerClient(&cfg.Mixer)

	// Initialize services
	sessionService := service.NewSessionService(redisClient)
	jobService := service.NewJobService(redisClient, asynqClient)
	historyService := service.NewHistoryService(redisClient, cfg.History.MaxEntries)
	helperService := helper.NewService(ollamaClient)
	lyricsGenerator := lyrics.NewGenerator(ollamaClient)

	// Initialize handlers
	helperHandler := handler.NewHelperHandler(jobService, sessionService, helperService)
	songHandler := handler.NewSongHandler(jobService, sessionService)
	jobHandler := handler.NewJobHandler(jobService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	historyHandler := handler.NewHistoryHandler(historyService)
	authHandler := handler.NewAuthHandler()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check with text backend probe
	app.Get("/health", func(c *fiber.Ctx) error {
		probeCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		online, modelReady, message := false, false, "Ollama not configured"
		if ollamaClient.IsConfigured() {
			online, modelReady, message = ollamaClient.CheckModel(probeCtx)
		}

		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"ollama": fiber.Map{
					"online":      online,
					"model_ready": modelReady,
					"message":     message,
				},
				"music": musicClient.IsConfigured(),
				"vocal": vocalClient.IsConfigured(),
				"mixer": mixerClient.IsConfigured(),
				"redis": redisClient.Ping(c.Context()).Err() == nil,
			},
		})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	helperGroup := api.Group("/helper", rateLimiter.HelperLimit(cfg.RateLimit.HelperPerMin))
	helperGroup.Post("/generate", helperHandler.Generate)
	helperGroup.Post("/regenerate", helperHandler.Regenerate)

	songs := api.Group("/songs")
	songs.Post("/start", rateLimiter.SongLimit(cfg.RateLimit.SongPerHour), songHandler.Start)

	api.Get("/jobs/:jobId/status", jobHandler.Status)
	api.Get("/jobs/:jobId/result", jobHandler.Result)
	api.Get("/sessions/:sessionId", sessionHandler.Get)
	api.Get("/history", historyHandler.List)
	api.Delete("/history", historyHandler.Clear)
	api.Get("/auth/verify", authHandler.Verify)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, asynqRedis, jobService, sessionService, historyService,
		helperService, lyricsGenerator, musicClient, vocalClient, mixerClient, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(
	cfg *config.Config,
	asynqRedis asynq.RedisClientOpt,
	jobService *service.JobService,
	sessionService *service.SessionService,
	historyService *service.HistoryService,
	helperService *helper.Service,
	lyricsGenerator *lyrics.Generator,
	musicClient client.InstrumentalGenerator,
	vocalClient client.VocalGenerator,
	mixerClient client.AudioMixer,
	hub *ws.Hub,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynqRedis,
		asynq.Config{
			Concurrency: 8,
			Queues: map[string]int{
				service.QueueHelper: 6,
				service.QueueSong:   2,
			},
			LogLevel: asynqLogLevel,
		},
	)

	orch := orchestrator.New(cfg.Pipeline.PollInterval)
	helperWorker := worker.NewHelperWorker(jobService, sessionService, helperService, orch, hub)
	songWorker := worker.NewSongWorker(jobService, sessionService, historyService,
		lyricsGenerator, musicClient, vocalClient, mixerClient, orch, hub, &cfg.Pipeline)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeHelper, helperWorker.ProcessTask)
	mux.HandleFunc(service.TaskTypeSong, songWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
