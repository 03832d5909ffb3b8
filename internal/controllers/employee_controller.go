package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/constants"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/filestorage"
	"staffhub/pkg/utils"
)

const maxImportRows = 5000

var employeeExportHeaders = []string{
	"ID", "ФИО", "Компания", "Email", "Отдел", "Должность", "Телефон", "Telegram", "Подписка на email", "Активен", "Создан",
}

// Заголовки столбцов файла импорта, в нижнем регистре: русские, английские и испанские.
var employeeImportColumns = map[string]string{
	"фио":             "full_name",
	"full_name":       "full_name",
	"nombre":          "full_name",
	"nombre completo": "full_name",
	"email":           "email",
	"correo":          "email",
	"отдел":           "department",
	"department":      "department",
	"departamento":    "department",
	"área":            "department",
	"area":            "department",
	"должность":       "position",
	"position":        "position",
	"cargo":           "position",
	"телефон":         "phone",
	"phone":           "phone",
	"teléfono":        "phone",
	"telefono":        "phone",
	"celular":         "phone",
	"telegram":        "telegram_handle",
	"telegram_handle": "telegram_handle",
}

type EmployeeController struct {
	employeeService services.EmployeeServiceInterface
	archive         filestorage.Storage
	logger          *zap.Logger
}

// archive может быть nil, тогда исходные файлы импорта не сохраняются.
func NewEmployeeController(employeeService services.EmployeeServiceInterface, archive filestorage.Storage, logger *zap.Logger) *EmployeeController {
	return &EmployeeController{employeeService: employeeService, archive: archive, logger: logger}
}

func (c *EmployeeController) GetEmployees(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.employeeService.GetEmployees(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetEmployees: ошибка при получении списка сотрудников", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список сотрудников успешно получен", http.StatusOK, total)
}

func (c *EmployeeController) FindEmployee(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.employeeService.FindEmployee(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сотрудник успешно найден", http.StatusOK)
}

func (c *EmployeeController) CreateEmployee(ctx echo.Context) error {
	var payload dto.CreateEmployeeDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreateEmployee: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.employeeService.CreateEmployee(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateEmployee: ошибка при создании сотрудника", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сотрудник успешно создан", http.StatusCreated)
}

func (c *EmployeeController) UpdateEmployee(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEmployeeDTO
	raw, err := bindWithRaw(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.employeeService.UpdateEmployee(ctx.Request().Context(), id, payload, raw)
	if err != nil {
		c.logger.Error("UpdateEmployee: ошибка при обновлении сотрудника", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сотрудник успешно обновлён", http.StatusOK)
}

func (c *EmployeeController) SetActive(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SetActiveDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.employeeService.SetActive(ctx.Request().Context(), id, *payload.IsActive)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	message := "Сотрудник деактивирован"
	if res.IsActive {
		message = "Сотрудник активирован"
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}

// ExportEmployees выгружает всех сотрудников, подходящих под фильтр, в xlsx.
func (c *EmployeeController) ExportEmployees(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter.Limit = utils.MaxLimit
	filter.Page = 1
	filter.Offset = 0

	var rows [][]interface{}
	for {
		page, total, err := c.employeeService.GetEmployees(ctx.Request().Context(), filter)
		if err != nil {
			c.logger.Error("ExportEmployees: ошибка выборки сотрудников", zap.Error(err))
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		for _, e := range page {
			rows = append(rows, employeeToRow(e))
		}
		if len(page) == 0 || uint64(len(rows)) >= total {
			break
		}
		filter.Page++
		filter.Offset += filter.Limit
	}

	fileName := fmt.Sprintf("employees_%s.xlsx", time.Now().Format("2006-01-02"))
	return writeXLSX(ctx, "Сотрудники", employeeExportHeaders, rows, fileName)
}

func employeeToRow(e dto.EmployeeDTO) []interface{} {
	company := ""
	if e.Company != nil {
		company = e.Company.Name
	}
	yesNo := func(v bool) string {
		if v {
			return "да"
		}
		return "нет"
	}
	return []interface{}{
		e.ID, e.FullName, company, derefString(e.Email), derefString(e.Department), derefString(e.Position),
		derefString(e.Phone), derefString(e.TelegramHandle), yesNo(e.EmailSubscribed), yesNo(e.IsActive),
		e.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// ImportEmployees принимает xlsx (поле file) и создаёт сотрудников компании company_id.
func (c *EmployeeController) ImportEmployees(ctx echo.Context) error {
	companyID, err := strconv.ParseUint(ctx.FormValue("company_id"), 10, 64)
	if err != nil || companyID == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Не указан company_id"), c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Файл не передан"), c.logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Не удалось открыть файл"), c.logger)
	}
	defer src.Close()

	f, err := excelize.OpenReader(src)
	if err != nil {
		c.logger.Warn("ImportEmployees: файл не является xlsx", zap.String("file", fileHeader.Filename), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Файл должен быть в формате xlsx"), c.logger)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("В файле нет листов"), c.logger)
	}
	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Не удалось прочитать лист"), c.logger)
	}

	rows, err := parseEmployeeRows(sheetRows)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.employeeService.ImportRows(ctx.Request().Context(), companyID, rows)
	if err != nil {
		c.logger.Error("ImportEmployees: ошибка импорта", zap.Uint64("company_id", companyID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.archiveImport(fileHeader, companyID)
	c.logger.Info("Импорт сотрудников завершён",
		zap.Uint64("company_id", companyID),
		zap.Int("processed", res.Processed),
		zap.Int("failed", len(res.Failed)),
	)
	return utils.SuccessResponse(ctx, res, "Импорт сотрудников завершён", http.StatusOK)
}

// archiveImport сохраняет исходный файл. Ошибка архивации не отменяет импорт.
func (c *EmployeeController) archiveImport(fileHeader *multipart.FileHeader, companyID uint64) {
	if c.archive == nil {
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		c.logger.Warn("ImportEmployees: не удалось повторно открыть файл", zap.Error(err))
		return
	}
	defer src.Close()

	path, err := c.archive.Save(src, fileHeader.Filename, fmt.Sprintf("%s/company-%d", constants.UploadContextEmployeeImport, companyID))
	if err != nil {
		c.logger.Warn("ImportEmployees: файл не сохранён в архив", zap.Uint64("company_id", companyID), zap.Error(err))
		return
	}
	c.logger.Debug("ImportEmployees: файл сохранён", zap.String("path", path))
}

// parseEmployeeRows сопоставляет столбцы по заголовкам первой строки.
func parseEmployeeRows(sheetRows [][]string) ([]services.EmployeeRow, error) {
	if len(sheetRows) < 2 {
		return nil, apperrors.NewValidationError("файл не содержит данных")
	}
	if len(sheetRows)-1 > maxImportRows {
		return nil, apperrors.NewValidationError("слишком много строк: %d, максимум %d", len(sheetRows)-1, maxImportRows)
	}

	columns := make(map[string]int)
	for i, title := range sheetRows[0] {
		if field, ok := employeeImportColumns[strings.ToLower(strings.TrimSpace(title))]; ok {
			columns[field] = i
		}
	}
	if _, ok := columns["full_name"]; !ok {
		return nil, apperrors.NewValidationError("не найден столбец ФИО")
	}

	cell := func(row []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rows := make([]services.EmployeeRow, 0, len(sheetRows)-1)
	for i, row := range sheetRows[1:] {
		r := services.EmployeeRow{
			Line:           i + 2,
			FullName:       cell(row, "full_name"),
			Email:          cell(row, "email"),
			Department:     cell(row, "department"),
			Position:       cell(row, "position"),
			Phone:          cell(row, "phone"),
			TelegramHandle: cell(row, "telegram_handle"),
		}
		if r == (services.EmployeeRow{Line: r.Line}) {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}
