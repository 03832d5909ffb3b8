package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/repositories"
	"staffhub/internal/services"
	"staffhub/pkg/channel"
	"staffhub/pkg/config"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/filestorage"
	"staffhub/pkg/logger"
	"staffhub/pkg/middleware"
	"staffhub/pkg/phone"
	"staffhub/pkg/service"
	"staffhub/pkg/telegram"
	"staffhub/pkg/websocket"
)

// Dependencies - всё, что создаётся в main и нужно для сборки сервисов.
type Dependencies struct {
	Client    *backend.Client
	Cache     repositories.CacheRepositoryInterface
	Bus       *eventbus.Bus
	Sealer    services.Sealer
	Checks    map[string]services.Pinger
	Archive   filestorage.Storage
	Phones    *phone.Normalizer
	StartedAt time.Time
	Config    *config.Config
	Loggers   *logger.Loggers
}

type Services struct {
	Auth          services.AuthServiceInterface
	Company       services.CompanyServiceInterface
	Employee      services.EmployeeServiceInterface
	Communication services.CommunicationServiceInterface
	Analysis      services.AnalysisServiceInterface
	Dashboard     services.DashboardServiceInterface
	Credential    services.CredentialServiceInterface
	Meta          *services.MetaService

	ImportArchive filestorage.Storage
}

// NewServices собирает репозитории и сервисы поверх клиента бэкенда.
func NewServices(deps Dependencies) *Services {
	loggers := deps.Loggers
	data := deps.Client.Data

	companyRepo := repositories.NewCompanyRepository(data, loggers.Company)
	employeeRepo := repositories.NewEmployeeRepository(data, loggers.Employee)
	commRepo := repositories.NewCommunicationRepository(data, loggers.Communication)
	analysisRepo := repositories.NewAnalysisRepository(data, loggers.Main)
	credentialRepo := repositories.NewCredentialRepository(data, loggers.Auth)

	dispatcher := newDispatcher(deps.Config.Telegram, loggers.Communication)

	return &Services{
		Auth:          services.NewAuthService(deps.Client.Auth, employeeRepo, companyRepo, deps.Cache, &deps.Config.Auth, loggers.Auth),
		Company:       services.NewCompanyService(companyRepo, employeeRepo, data, loggers.Company),
		Employee:      services.NewEmployeeService(employeeRepo, companyRepo, data, deps.Phones, loggers.Employee),
		Communication: services.NewCommunicationService(commRepo, employeeRepo, companyRepo, dispatcher, deps.Bus, loggers.Communication),
		Analysis:      services.NewAnalysisService(analysisRepo, companyRepo, loggers.Main),
		Dashboard:     services.NewDashboardService(companyRepo, employeeRepo, commRepo, deps.Cache, deps.Config.Cache.DashboardTTL, loggers.Main),
		Credential:    services.NewCredentialService(credentialRepo, deps.Sealer, loggers.Auth),
		Meta:          services.NewMetaService(deps.Config, deps.StartedAt, deps.Checks, loggers.Main),
		ImportArchive: deps.Archive,
	}
}

func InitRouter(e *echo.Echo, svc *Services, jwtSvc service.JWTService, hub *websocket.Hub, cfg *config.Config, loggers *logger.Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)
	adminGroup := secureGroup.Group("/admin", authMW.RequireAdmin)

	runMetaRouter(api, svc.Meta, loggers.Main)
	runAuthRouter(api, secureGroup, svc.Auth, loggers.Auth)
	runCompanyRouter(secureGroup, svc.Company, svc.Analysis, loggers.Company)
	runEmployeeRouter(secureGroup, svc.Employee, svc.Communication, svc.ImportArchive, loggers.Employee)
	runCommunicationRouter(secureGroup, svc.Communication, svc.Analysis, loggers.Communication)
	runDashboardRouter(secureGroup, svc.Dashboard, loggers.Main)
	runCredentialRouter(secureGroup, svc.Credential, loggers.Auth)
	runAdminRouter(adminGroup, svc.Auth, svc.Employee, loggers.Auth)
	runWebSocketRouter(api, hub, jwtSvc, cfg.Server.AllowedOrigins, loggers.Main)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено", zap.Int("routes", len(e.Routes())))
}

func newDispatcher(cfg config.TelegramConfig, logger *zap.Logger) services.Dispatcher {
	fallback := services.NewLogDispatcher(logger)
	if cfg.BotToken == "" {
		return fallback
	}
	bot := telegram.NewClient(cfg.BotToken, cfg.APIURL, &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
	logger.Info("Доставка в Telegram включена")
	return services.NewChannelDispatcher(fallback, map[string]services.Dispatcher{
		string(channel.Telegram): services.NewTelegramDispatcher(bot, logger),
	})
}
