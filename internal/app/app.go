package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchroom/server/internal/controller"
	catalogInmemory "github.com/watchroom/server/internal/repository/catalog/inmemory"
	catalogRedis "github.com/watchroom/server/internal/repository/catalog/redis"
	roomInmemory "github.com/watchroom/server/internal/repository/room/inmemory"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	subscriberInmemory "github.com/watchroom/server/internal/repository/subscriber/inmemory"
	"github.com/watchroom/server/internal/service/catalog"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type AppConfig struct {
	Secret           string        `json:"-"`
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	Storage          string        `json:"storage"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
	MembersLimit     int           `json:"members_limit"`
	ChatHistoryLimit int           `json:"chat_history_limit"`
	RoomGracePeriod  time.Duration `json:"room_grace_period"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	if cfg.ChatHistoryLimit < 1 {
		return fmt.Errorf("chat history limit must be greater than 0")
	}
	if cfg.RoomGracePeriod <= 0 {
		return fmt.Errorf("room grace period must be positive")
	}
	if cfg.Storage != StorageRedis && cfg.Storage != StorageMemory {
		return fmt.Errorf("unknown storage: %q", cfg.Storage)
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	var roomRepo room.RoomRepo
	var catalogRepo catalog.VideoRepo

	switch cfg.Storage {
	case StorageRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		roomRepo = roomRedis.NewRepo(rc, logger, cfg.ChatHistoryLimit)
		catalogRepo = catalogRedis.NewRepo(rc)
	case StorageMemory:
		roomRepo = roomInmemory.NewRepo(cfg.ChatHistoryLimit)
		catalogRepo = catalogInmemory.NewRepo()
	}

	subscriberRepo := subscriberInmemory.NewRepo()

	identityService := identity.NewService(cfg.Secret)

	catalogService := catalog.NewService(catalogRepo)
	if err := catalogService.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	roomService := room.NewService(roomRepo, subscriberRepo, catalogService, logger, &room.Config{
		MembersLimit:    cfg.MembersLimit,
		RoomGracePeriod: cfg.RoomGracePeriod,
	})

	gcInterval := cfg.RoomGracePeriod / 3
	if gcInterval < time.Second {
		gcInterval = time.Second
	}
	go roomService.RunGC(ctx, gcInterval)

	controller := controller.NewController(roomService, identityService, catalogService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
