package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(deviceID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": deviceID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}

// STORE_DRIVERに応じたKVと後始末
func openKVStore(ctx context.Context, cfg config.Config) (repo.KVStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewRedisKVStore(client, cfg.RedisPrefix), client.Close, nil

	case config.StoreDriverPostgres:
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewGormKVStore(gormDB), sqlDB.Close, nil

	default:
		return infraRepo.NewMemoryKVStore(), func() error { return nil }, nil
	}
}

func run() error {
	//.envは無くてもよい
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//KV（カートの保存先）
	kv, closeKV, err := openKVStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Warn("Failed to close store", slog.String("error", err.Error()))
		}
	}()

	//Repository
	productRepo := infraRepo.NewDefaultProductRepository()

	//Usecase
	carts := usecase.NewCartRegistry(kv,
		usecase.WithLogger(logger),
		usecase.WithMaxRetries(cfg.CartWriteRetries),
	)
	cartUC := usecase.NewCartUsecase(carts, productRepo, cfg.CartPollInterval)
	productUC := usecase.NewProductUsecase(productRepo)
	registerDeviceUC := auth.NewRegisterDeviceUsecase(
		&jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: cfg.TokenTTL},
		&uuidGenerator{},
		&realClock{},
	)

	//Handler
	e := server.New(cfg, server.Handlers{
		Auth:    handler.NewAuthHandler(registerDeviceUC, logger),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC, logger),
	}, logger)

	//Server起動
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting",
			slog.String("addr", cfg.Addr()),
			slog.String("store", cfg.StoreDriver),
			slog.String("env", cfg.GoEnv))
		return server.Start(gctx, e, cfg.Addr())
	})

	return g.Wait()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
