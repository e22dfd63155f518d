package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Skufu/GoMedic/internal/alert"
	"github.com/Skufu/GoMedic/internal/analyze"
	"github.com/Skufu/GoMedic/internal/config"
	"github.com/Skufu/GoMedic/internal/model"
	"github.com/Skufu/GoMedic/internal/report"
	"github.com/Skufu/GoMedic/internal/server"
	"github.com/Skufu/GoMedic/internal/session"
	"github.com/Skufu/GoMedic/internal/store"
	"github.com/Skufu/GoMedic/internal/triage"
)

const sweepInterval = 30 * time.Second

// app holds the wired components and whatever must be released on shutdown.
type app struct {
	router  *gin.Engine
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close error: %v", err)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.ModelTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s (model=%s, sessions=%s, idle=%s)",
		cfg.Port, cfg.ModelProvider, cfg.SessionBackend, cfg.SessionIdleTimeout)
	waitForShutdown(srv)
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	gen, err := model.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	checks := map[string]server.HealthChecker{}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warning: redis ping failed: %v", err)
		} else {
			log.Printf("redis ready (%s)", cfg.RedisAddr)
		}
		checks["redis"] = server.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		sessions = session.NewRedisStore(rdb, 2*cfg.SessionIdleTimeout)
	default:
		mem := session.NewMemoryStore()
		mem.StartSweeper(ctx, sweepInterval, cfg.SessionIdleTimeout)
		sessions = mem
	}

	var diagnosisLog store.Log
	if cfg.EnableDB {
		diagnosisLog, err = store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.closers = append(a.closers, diagnosisLog.Close)
		checks["db"] = diagnosisLog
	}

	var alerts alert.Publisher = alert.Nop{}
	if cfg.EnableAlerts {
		q := alert.NewRedisQueue(rdb, cfg.AlertQueue)
		log.Printf("critical alerts -> redis list %s", q.Name())
		alerts = q
	}

	svc := analyze.New(analyze.Deps{
		Model:     gen,
		Detector:  triage.NewDetector(cfg.CriticalKeywords),
		Chats:     session.NewManager(sessions, "chat", cfg.SessionIdleTimeout),
		Diagnoses: session.NewManager(sessions, "diagnosis", cfg.SessionIdleTimeout),
		Reports:   report.NewWriter(cfg.ReportDir),
		Log:       diagnosisLog,
		Alerts:    alerts,
	})

	a.router = server.NewRouter(server.Options{
		Service:        svc,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
		Checks:         checks,
		IdleTimeout:    cfg.SessionIdleTimeout,
	})
	return a, nil
}

// writeTimeout leaves room for the model call on top of the usual response budget.
func writeTimeout(modelTimeout time.Duration) time.Duration {
	if modelTimeout <= 0 {
		return 2 * time.Minute
	}
	return modelTimeout + 15*time.Second
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
