package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	apperrors "staffhub/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bindWithRaw привязывает тело запроса и возвращает его исходные байты:
// сервисам обновления нужно знать, какие поля были переданы явно.
func bindWithRaw(c echo.Context, dst interface{}) ([]byte, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Не удалось прочитать тело запроса")
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(raw))
	if err := c.Bind(dst); err != nil {
		return nil, apperrors.NewBadRequestError("Неверный формат данных в теле запроса")
	}
	return raw, nil
}

func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.NewBadRequestError("Неверный формат данных в теле запроса")
	}
	return c.Validate(dst)
}

func writeXLSX(c echo.Context, sheet string, headers []string, rows [][]interface{}, fileName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, style)

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", lastCol, 20)

	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", fileName))
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
