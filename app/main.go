package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"staffhub/internal/backend"
	"staffhub/internal/listeners"
	"staffhub/internal/repositories"
	"staffhub/internal/routes"
	"staffhub/internal/services"
	"staffhub/pkg/config"
	"staffhub/pkg/customvalidator"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/filestorage"
	applogger "staffhub/pkg/logger"
	"staffhub/pkg/middleware"
	"staffhub/pkg/phone"
	"staffhub/pkg/secretbox"
	"staffhub/pkg/service"
	"staffhub/pkg/telemetry"
	"staffhub/pkg/utils"
	"staffhub/pkg/websocket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	startedAt := time.Now()
	cfg := config.New()

	logger := applogger.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()
	loggers := applogger.NewLoggers(logger)

	if err := cfg.Validate(config.ContextServer); err != nil {
		logger.Fatal("Конфигурация неполная", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry, cfg.Build.Version, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil), logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	e.Use(echomw.BodyLimit(cfg.Server.BodyLimit))

	phones := phone.NewNormalizer(cfg.Phone.DefaultRegion)
	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v, phones); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	client, err := backend.New(ctx, cfg.Backend, logger.Named("backend"))
	if err != nil {
		logger.Fatal("Не удалось подключиться к сервису данных", zap.Error(err))
	}
	defer client.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("Не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	box, err := secretbox.New(cfg.Crypto.CredentialKey)
	if err != nil {
		logger.Fatal("Некорректный ключ шифрования токенов", zap.Error(err))
	}

	bus := eventbus.New(logger.Named("eventbus"))
	hub := websocket.NewHub(logger.Named("ws"))

	var archive filestorage.Storage
	if dir := cfg.Storage.ImportArchiveDir; dir != "" {
		local, err := filestorage.NewLocalFileStorage(dir)
		if err != nil {
			logger.Fatal("Не удалось подготовить архив импорта", zap.String("dir", dir), zap.Error(err))
		}
		archive = local
	}

	svc := routes.NewServices(routes.Dependencies{
		Client:  client,
		Archive: archive,
		Cache:   repositories.NewRedisCacheRepository(redisClient),
		Bus:     bus,
		Sealer:  box,
		Phones:  phones,
		Checks: map[string]services.Pinger{
			"database": client.Data,
			"redis":    services.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		},
		StartedAt: startedAt,
		Config:    cfg,
		Loggers:   loggers,
	})
	listeners.NewCommunicationListener(svc.Dashboard, hub, loggers.Communication).Register(bus)

	jwtSvc := service.NewJWTService(cfg.Backend.JWTSecret, cfg.Auth.TokenTTL, loggers.Auth)
	routes.InitRouter(e, svc, jwtSvc, hub, cfg, loggers)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(e, "staffhub"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", server.Addr), zap.String("version", cfg.Build.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка при остановке сервера", zap.Error(err))
		}
		bus.Wait()
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Сервер завершился с ошибкой", zap.Error(err))
		os.Exit(1)
	}
}
