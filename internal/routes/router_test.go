package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/config"
	"staffhub/pkg/customvalidator"
	"staffhub/pkg/logger"
	"staffhub/pkg/phone"
	"staffhub/pkg/service"
	"staffhub/pkg/types"
	"staffhub/pkg/utils"
	"staffhub/pkg/websocket"
)

const testSecret = "router-test-secret"

type stubCompanyService struct {
	services.CompanyServiceInterface
	lastRaw []byte
}

func (s *stubCompanyService) GetCompanies(_ context.Context, filter types.Filter) ([]dto.CompanyDTO, uint64, error) {
	return []dto.CompanyDTO{{ID: 1, Name: "Acme", Status: "active"}, {ID: 2, Name: "Globex", Status: "inactive"}}, 7, nil
}

func (s *stubCompanyService) UpdateCompany(_ context.Context, id uint64, payload dto.UpdateCompanyDTO, rawBody []byte) (*dto.CompanyDTO, error) {
	s.lastRaw = rawBody
	return &dto.CompanyDTO{ID: id, Name: "Acme", Status: "active"}, nil
}

type stubAuthService struct {
	services.AuthServiceInterface
}

func (s *stubAuthService) ListUsers(_ context.Context, page, perPage int) ([]dto.AuthUserDTO, error) {
	return []dto.AuthUserDTO{{ID: uuid.NewString(), Email: "admin@acme.test"}}, nil
}

type RouterTestSuite struct {
	suite.Suite
	Echo       *echo.Echo
	JWT        service.JWTService
	Companies  *stubCompanyService
	UserToken  string
	AdminToken string
}

func (suite *RouterTestSuite) SetupTest() {
	e := echo.New()
	v := validator.New()
	suite.Require().NoError(customvalidator.RegisterCustomValidations(v, phone.NewNormalizer(phone.DefaultRegion)))
	e.Validator = utils.NewValidator(v)

	loggers := logger.NewNopLoggers()
	cfg := config.Defaults()
	cfg.Backend.JWTSecret = testSecret

	suite.JWT = service.NewJWTService(testSecret, time.Hour, loggers.Auth)
	suite.Companies = &stubCompanyService{}

	svc := &Services{
		Auth:    &stubAuthService{},
		Company: suite.Companies,
		Meta:    services.NewMetaService(cfg, time.Now(), nil, loggers.Main),
	}
	InitRouter(e, svc, suite.JWT, websocket.NewHub(loggers.Main), cfg, loggers)
	suite.Echo = e

	var err error
	suite.UserToken, err = suite.JWT.GenerateToken(uuid.NewString(), "user@acme.test", "")
	suite.Require().NoError(err)
	suite.AdminToken, err = suite.JWT.GenerateToken(uuid.NewString(), "admin@acme.test", service.AppRoleAdmin)
	suite.Require().NoError(err)
}

func (suite *RouterTestSuite) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func (suite *RouterTestSuite) TestHealthIsPublic() {
	rec, resp := suite.do(http.MethodGet, "/api/health", "", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal(true, resp["status"])
}

func (suite *RouterTestSuite) TestSecureRouteRequiresToken() {
	rec, resp := suite.do(http.MethodGet, "/api/companies", "", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal(false, resp["status"])
}

func (suite *RouterTestSuite) TestCompaniesWithPagination() {
	rec, resp := suite.do(http.MethodGet, "/api/companies?withPagination=true&limit=2", suite.UserToken, "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	body := resp["body"].(map[string]interface{})
	suite.Len(body["list"], 2)
	pagination := body["pagination"].(map[string]interface{})
	suite.Equal(float64(7), pagination["total_count"])
	suite.Equal(float64(4), pagination["total_pages"])
}

func (suite *RouterTestSuite) TestUpdateCompanyPassesRawBody() {
	rec, _ := suite.do(http.MethodPut, "/api/company/5", suite.UserToken, `{"industry": null}`)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"industry": null}`, string(suite.Companies.lastRaw))
}

func (suite *RouterTestSuite) TestUpdateCompanyRejectsBadID() {
	rec, _ := suite.do(http.MethodPut, "/api/company/abc", suite.UserToken, `{}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *RouterTestSuite) TestCreateCompanyValidation() {
	rec, resp := suite.do(http.MethodPost, "/api/company", suite.UserToken, `{"fallback_order": ["fax"]}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(resp["message"], "Ошибка валидации")
}

func (suite *RouterTestSuite) TestAdminRoutesRequireAdminRole() {
	rec, _ := suite.do(http.MethodGet, "/api/admin/users", suite.UserToken, "")
	suite.Equal(http.StatusForbidden, rec.Code)

	rec, resp := suite.do(http.MethodGet, "/api/admin/users", suite.AdminToken, "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Len(resp["body"], 1)
}

func (suite *RouterTestSuite) TestWebSocketRequiresToken() {
	rec, _ := suite.do(http.MethodGet, "/api/ws", "", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
