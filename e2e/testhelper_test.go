package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/secrethelper/api/internal/auth"
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

const testJWTSecret = "test-secret-for-e2e"

// inlineDispatcher runs enqueued tasks synchronously in the request
// goroutine, so jobs are already finished when the 202 returns.
type inlineDispatcher struct {
	handlers map[string]asynq.HandlerFunc
}

func (d *inlineDispatcher) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	h, ok := d.handlers[task.Type()]
	if !ok {
		return nil, fmt.Errorf("no handler for task type %s", task.Type())
	}
	// Run after the job record hits queued state; errors surface through
	// the job status, same as the real worker server.
	go func() {
		_ = h(context.Background(), task)
	}()
	return &asynq.TaskInfo{ID: task.Type(), Type: task.Type()}, nil
}

// testApp holds all components needed for testing
type testApp struct {
	app      *fiber.App
	jobs     *service.JobService
	sessions *service.SessionService
}

// setupApp builds the app like main.go but in memory mode: no Redis, no
// external services, every client on its mock fallback.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dispatcher := &inlineDispatcher{handlers: map[string]asynq.HandlerFunc{}}

	jobService := service.NewJobService(nil, dispatcher)
	sessionService := service.NewSessionService(nil)
	historyService := service.NewHistoryService(nil, 100)

	hub := ws.NewHub()
	go hub.Run()

	ollamaClient := client.NewOllamaClient(&config.OllamaConfig{})
	helperService := helper.NewService(ollamaClient)
	lyricsGenerator := lyrics.NewGenerator(ollamaClient)

	orch := orchestrator.New(5 * time.Millisecond)
	helperWorker := worker.NewHelperWorker(jobService, sessionService, helperService, orch, hub)
	songWorker := worker.NewSongWorker(jobService, sessionService, historyService,
		lyricsGenerator,
		client.NewMusicClient(&config.MusicConfig{}),
		client.NewVocalClient(&config.VocalConfig{}),
		client.NewMixerClient(&config.MixerConfig{}),
		orch, hub, &config.PipelineConfig{Duration: 30})

	dispatcher.handlers[service.TaskTypeHelper] = helperWorker.ProcessTask
	dispatcher.handlers[service.TaskTypeSong] = songWorker.ProcessTask

	helperHandler := handler.NewHelperHandler(jobService, sessionService, helperService)
	songHandler := handler.NewSongHandler(jobService, sessionService)
	jobHandler := handler.NewJobHandler(jobService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	historyHandler := handler.NewHistoryHandler(historyService)
	authHandler := handler.NewAuthHandler()

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(nil) // nil client disables limiting

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", authMiddleware.Authenticate())

	helperGroup := api.Group("/helper", rateLimiter.HelperLimit(10000))
	helperGroup.Post("/generate", helperHandler.Generate)
	helperGroup.Post("/regenerate", helperHandler.Regenerate)

	songs := api.Group("/songs")
	songs.Post("/start", rateLimiter.SongLimit(10000), songHandler.Start)

	api.Get("/jobs/:jobId/status", jobHandler.Status)
	api.Get("/jobs/:jobId/result", jobHandler.Result)
	api.Get("/sessions/:sessionId", sessionHandler.Get)
	api.Get("/history", historyHandler.List)
	api.Delete("/history", historyHandler.Clear)
	api.Get("/auth/verify", authHandler.Verify)

	return &testApp{app: app, jobs: jobService, sessions: sessionService}
}

// waitForJob polls the status endpoint until the job leaves the running
// states or the timeout expires.
func waitForJob(t *testing.T, ta *testApp, jobID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := doAuthRequest(t, ta.app, "GET", "/api/jobs/"+jobID+"/status", "")
		if err != nil {
			t.Fatalf("status request: %v", err)
		}
		status := parseJSON(t, resp)
		if s, _ := status["status"].(string); s == "succeeded" || s == "failed" {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", jobID)
	return nil
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("test-user-123", "test@example.com", testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
