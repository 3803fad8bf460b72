package main

// @title           Bookstore API
// @version         1.0
// @description     CRUD API for books and authors with JSON Patch support.

// @contact.name   Sina Niyavarzi
// @contact.email  sinaniya@gmail.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/bookstore-api/internal/config"
	"github.com/snnyvrz/bookstore-api/internal/db"
	docs "github.com/snnyvrz/bookstore-api/internal/docs"
	"github.com/snnyvrz/bookstore-api/internal/handler"
	"github.com/snnyvrz/bookstore-api/internal/logging"
	"github.com/snnyvrz/bookstore-api/internal/middleware"
	"github.com/snnyvrz/bookstore-api/internal/repository"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/validation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const appVersion = "0.1.0"

type stores struct {
	books   repository.BookRepository
	authors repository.AuthorRepository
	ping    handler.Pinger
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	if cfg.DBDriver == config.DriverMemory {
		mem := repository.NewMemoryStore()
		log.Warn("using in-memory store, data is lost on restart")
		return &stores{
			books:   mem.Books(),
			authors: mem.Authors(),
			ping:    mem.Ping,
			close:   func() {},
		}, nil
	}

	database, err := db.ConnectWithRetry(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(database); err != nil {
		return nil, err
	}

	return &stores{
		books:   repository.NewGormBookRepository(database),
		authors: repository.NewAuthorRepository(database),
		ping:    func(ctx context.Context) error { return db.Ping(ctx, database) },
		close: func() {
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

func main() {
	startTime := time.Now()

	cfg := config.Load()

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	gin.SetMode(cfg.GinMode)
	validation.RegisterJSONFieldNames()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	e := gin.New()
	e.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	if err := e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	}); err != nil {
		log.Warn("failed to set trusted proxies", "error", err)
	}

	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Version = appVersion

	healthHandler := handler.NewHealthHandler(st.ping, startTime, appVersion)
	healthHandler.RegisterRoutes(e)

	api := e.Group("/api")
	{
		bookHandler := handler.NewBookHandler(service.NewBookService(st.books, st.authors), log)
		bookHandler.RegisterRoutes(api)

		authorHandler := handler.NewAuthorHandler(service.NewAuthorService(st.authors), log)
		authorHandler.RegisterRoutes(api)
	}

	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", srv.Addr, "driver", cfg.DBDriver, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
